package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/manifest"
)

func newManifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Build, inspect and register custom channel manifests",
	}
	cmd.AddCommand(
		newManifestNewCmd(a),
		newManifestShowCmd(a),
		newManifestHeaderCmd(a),
		newManifestRegisterCmd(a),
		newManifestUnregisterCmd(a),
	)
	return cmd
}

func newManifestNewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write <name>.man and <name>.h from a channel definition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			defsPath, _ := f.GetString("definitions")
			outDir, _ := f.GetString("output-dir")
			opts := manifest.Options{}
			opts.Name, _ = f.GetString("name")
			opts.ResourceFile, _ = f.GetString("resource-file")
			opts.ChannelType, _ = f.GetString("channel-type")
			opts.Enabled, _ = f.GetBool("enabled")
			opts.MaxSize, _ = f.GetInt64("max-size")
			opts.StableGUIDs, _ = f.GetBool("stable-guids")

			in, err := os.Open(defsPath)
			if err != nil {
				return err
			}
			defer in.Close()
			defs, err := manifest.LoadDefinitions(in)
			if err != nil {
				return fmt.Errorf("%s: %w", defsPath, err)
			}

			m, err := manifest.Build(defs, opts)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			manPath := filepath.Join(outDir, m.Name()+".man")
			if err := writeFile(manPath, m.Encode); err != nil {
				return err
			}
			headerPath := filepath.Join(outDir, m.Name()+".h")
			if err := writeFile(headerPath, m.WriteHeader); err != nil {
				return err
			}
			log.Printf("Wrote %s and %s (%d providers)", manPath, headerPath, len(m.Providers))
			fmt.Fprintln(cmd.OutOrStdout(), manPath)
			fmt.Fprintln(cmd.OutOrStdout(), headerPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("definitions", "", "YAML or JSON file with channel definitions")
	f.String("name", manifest.DefaultName, "Base name of the manifest, header and resource DLL")
	f.String("output-dir", ".", "Directory to write the files to")
	f.String("resource-file", "", `Resource DLL path (default %SystemRoot%\System32\<name>.dll)`)
	f.String("channel-type", manifest.DefaultChannelType, "Channel type: Admin, Operational, Analytic or Debug")
	f.Bool("enabled", true, "Create the channels enabled")
	f.Int64("max-size", 0, "Maximum channel size in bytes (0 keeps the OS default)")
	f.Bool("stable-guids", false, "Derive provider GUIDs from provider names")
	_ = cmd.MarkFlagRequired("definitions")
	return cmd
}

func writeFile(path string, write func(w io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

func newManifestShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE.man",
		Short: "List the channel definitions of a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			m, err := manifest.Decode(in)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return a.print(cmd, definitionTable(m.Definitions()))
		},
	}
}

func newManifestHeaderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "header FILE.h",
		Short: "List the providers and channel values of a generated header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			providers, err := manifest.ParseHeader(in)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return a.print(cmd, headerTable(providers))
		},
	}
}

func newManifestRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register FILE.man",
		Short: "Install the providers and channels of a manifest with wevtutil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, _ := cmd.Flags().GetString("resource-file")
			return manifest.Register(cmd.Context(), args[0], rf)
		},
	}
	cmd.Flags().String("resource-file", "", "Override the resource, message and parameter file paths")
	return cmd
}

func newManifestUnregisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister FILE.man",
		Short: "Remove the providers and channels of a manifest with wevtutil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return manifest.Unregister(cmd.Context(), args[0])
		},
	}
}
