package manifest

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// definitionFile is the document a user hands to `welc manifest new`. JSON is
// valid YAML, so both work.
type definitionFile struct {
	Channels []definitionEntry `yaml:"channels"`
}

type definitionEntry struct {
	Provider       string `yaml:"provider"`
	ProviderSymbol string `yaml:"provider_symbol,omitempty"`
	Channel        string `yaml:"channel"`
	ChannelSymbol  string `yaml:"channel_symbol,omitempty"`
}

// LoadDefinitions reads channel definitions from a YAML or JSON document.
func LoadDefinitions(r io.Reader) ([]welc.ChannelDefinition, error) {
	var doc definitionFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoDefinitions
		}
		return nil, fmt.Errorf("reading channel definitions: %w", err)
	}

	defs := make([]welc.ChannelDefinition, 0, len(doc.Channels))
	for _, e := range doc.Channels {
		defs = append(defs, welc.ChannelDefinition{
			ProviderName:   e.Provider,
			ProviderSymbol: e.ProviderSymbol,
			ChannelName:    e.Channel,
			ChannelSymbol:  e.ChannelSymbol,
		})
	}
	if len(defs) == 0 {
		return nil, ErrNoDefinitions
	}
	return defs, nil
}

// WriteDefinitions writes defs in the format LoadDefinitions reads.
func WriteDefinitions(w io.Writer, defs []welc.ChannelDefinition) error {
	doc := definitionFile{Channels: make([]definitionEntry, 0, len(defs))}
	for _, d := range defs {
		doc.Channels = append(doc.Channels, definitionEntry{
			Provider:       d.ProviderName,
			ProviderSymbol: d.ProviderSymbol,
			Channel:        d.ChannelName,
			ChannelSymbol:  d.ChannelSymbol,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing channel definitions: %w", err)
	}
	return enc.Close()
}
