package main

import (
	"fmt"
	"strconv"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/manifest"
	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

type nameTable []string

func (t nameTable) header() []string { return []string{"NAME"} }

func (t nameTable) rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, n := range t {
		out = append(out, []string{n})
	}
	return out
}

type configTable []welc.ChannelConfig

func (t configTable) header() []string {
	return []string{"CHANNEL", "ENABLED", "MODE", "MAX SIZE", "LOG FILE"}
}

func (t configTable) rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, c := range t {
		out = append(out, []string{
			c.ChannelName,
			strconv.FormatBool(c.Enabled),
			c.LogMode,
			strconv.FormatInt(c.MaxEventLogSize, 10),
			c.LogFullName,
		})
	}
	return out
}

type definitionTable []welc.ChannelDefinition

func (t definitionTable) header() []string {
	return []string{"PROVIDER", "PROVIDER SYMBOL", "CHANNEL", "CHANNEL SYMBOL"}
}

func (t definitionTable) rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, d := range t {
		out = append(out, []string{d.ProviderName, d.ProviderSymbol, d.ChannelName, d.ChannelSymbol})
	}
	return out
}

type headerTable []manifest.HeaderProvider

func (t headerTable) header() []string {
	return []string{"PROVIDER", "GUID", "SYMBOL", "CHANNEL", "VALUE"}
}

func (t headerTable) rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		for _, c := range p.Channels {
			rows = append(rows, []string{p.Name, p.GUID.String(), p.Symbol, c.Symbol, fmt.Sprintf("0x%x", c.Value)})
		}
	}
	return rows
}
