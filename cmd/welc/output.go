package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

// table is something that can render itself as rows.
type table interface {
	header() []string
	rows() [][]string
}

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("output")
	switch strings.ToLower(f) {
	case formatJSON, formatYAML, formatTable:
		return strings.ToLower(f), nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, yaml or table)", f)
}

// render writes v in the requested format. Values that are not a table fall
// back to YAML in table mode.
func render(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatTable:
		if t, ok := v.(table); ok {
			return writeTable(w, t)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, t table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.header(), "\t"))
	for _, row := range t.rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (a *app) print(cmd *cobra.Command, v any) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), format, v)
}
