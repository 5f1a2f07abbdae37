package main

import (
	"github.com/spf13/cobra"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/collectors"
	"github.com/AndiBellstedt/WinEventLogCustomization/internal/manifest"
)

func newProviderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Inspect registered event providers",
	}
	cmd.AddCommand(newProviderListCmd(a), newProviderGetCmd(a), newProviderDefinitionsCmd(a))
	return cmd
}

func newProviderListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the names of matching providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFlag(cmd, "filter", a.cfg.Providers)
			if err != nil {
				return err
			}
			return a.withSession(func(s session) error {
				names, err := s.Providers(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd, nameTable(filter.Select(names)))
			})
		},
	}
	cmd.Flags().StringSlice("filter", nil, "Provider name patterns (repeatable)")
	return cmd
}

func newProviderGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show the metadata of a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s session) error {
				md, err := s.ProviderMetadata(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd, md)
			})
		},
	}
}

func newProviderDefinitionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "definitions NAME",
		Short: "Print the channels a provider owns as a definition file for 'manifest new'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s session) error {
				md, err := s.ProviderMetadata(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defs := collectors.DefinitionsFromProvider(md, manifest.Symbol)
				format, err := outputFormat(cmd)
				if err != nil {
					return err
				}
				if format == formatYAML {
					return manifest.WriteDefinitions(cmd.OutOrStdout(), defs)
				}
				return render(cmd.OutOrStdout(), format, definitionTable(defs))
			})
		},
	}
}
