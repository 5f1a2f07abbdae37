package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/collectors"
	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

func newChannelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Read and change event log channel configuration",
	}
	cmd.AddCommand(newChannelListCmd(a), newChannelGetCmd(a), newChannelSetCmd(a))
	return cmd
}

// filterFlag compiles the patterns of flag name, falling back to the
// configured ones.
func filterFlag(cmd *cobra.Command, name string, fallback []string) (collectors.Filter, error) {
	patterns := fallback
	if cmd.Flags().Changed(name) {
		patterns, _ = cmd.Flags().GetStringSlice(name)
	}
	return collectors.NewFilter(patterns...)
}

func newChannelListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configuration of matching channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFlag(cmd, "filter", a.cfg.Channels)
			if err != nil {
				return err
			}
			return a.withSession(func(s session) error {
				cfgs, err := collectors.ChannelConfigs(cmd.Context(), s, filter)
				if err != nil {
					return err
				}
				return a.print(cmd, configTable(cfgs))
			})
		},
	}
	cmd.Flags().StringSlice("filter", nil, "Channel name patterns, e.g. 'Corp-WEC-*' (repeatable)")
	return cmd
}

func newChannelGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME...",
		Short: "Show the full configuration of channels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s session) error {
				out := make([]welc.EventLogConfiguration, 0, len(args))
				for _, name := range args {
					cfg, err := s.ChannelConfiguration(cmd.Context(), name)
					if err != nil {
						return err
					}
					out = append(out, cfg)
				}
				return a.print(cmd, out)
			})
		},
	}
}

func newChannelSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Change the configuration of a channel",
		Long: `Change the configuration of a channel. Only the given flags are changed;
everything else keeps its current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s session) error {
				current, err := s.ChannelConfiguration(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cfg, err := mergeChannelFlags(cmd, collectors.ChannelConfigFromLog(current))
				if err != nil {
					return err
				}
				if err := s.SetChannelConfig(cmd.Context(), cfg); err != nil {
					return err
				}
				return a.print(cmd, configTable{cfg})
			})
		},
	}
	f := cmd.Flags()
	f.Bool("enabled", false, "Enable or disable the channel")
	f.Int64("max-size", 0, "Maximum size in bytes")
	f.String("log-mode", "", "Circular, AutoBackup or Retain")
	f.String("log-path", "", "Path of the .evtx file")
	return cmd
}

// mergeChannelFlags applies the flags that were set on cmd to cfg.
func mergeChannelFlags(cmd *cobra.Command, cfg welc.ChannelConfig) (welc.ChannelConfig, error) {
	f := cmd.Flags()
	changed := false
	if f.Changed("enabled") {
		cfg.Enabled, _ = f.GetBool("enabled")
		changed = true
	}
	if f.Changed("max-size") {
		cfg.MaxEventLogSize, _ = f.GetInt64("max-size")
		changed = true
	}
	if f.Changed("log-mode") {
		cfg.LogMode, _ = f.GetString("log-mode")
		changed = true
	}
	if f.Changed("log-path") {
		cfg.LogFullName, _ = f.GetString("log-path")
		changed = true
	}
	if !changed {
		return cfg, fmt.Errorf("nothing to change on %s: pass --enabled, --max-size, --log-mode or --log-path", cfg.ChannelName)
	}
	return cfg, nil
}

func newCollectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Print channel configuration and provider metadata of a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := filterFlag(cmd, "filter", a.cfg.Channels)
			if err != nil {
				return err
			}
			providers, err := filterFlag(cmd, "providers", a.cfg.Providers)
			if err != nil {
				return err
			}
			return a.withSession(func(s session) error {
				out, err := collectors.CollectEventLogChannel(cmd.Context(), s, channels, providers)
				if err != nil {
					return err
				}
				return a.print(cmd, out)
			})
		},
	}
	cmd.Flags().StringSlice("filter", nil, "Channel name patterns (repeatable)")
	cmd.Flags().StringSlice("providers", nil, "Provider name patterns (repeatable)")
	return cmd
}
