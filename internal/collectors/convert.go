package collectors

import (
	"strings"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// ChannelConfigFromLog keeps the settable part of an OS channel entry.
func ChannelConfigFromLog(cfg welc.EventLogConfiguration) welc.ChannelConfig {
	return welc.ChannelConfig{
		ChannelName:     cfg.LogName,
		LogFullName:     cfg.LogFilePath,
		LogMode:         cfg.LogMode,
		Enabled:         cfg.IsEnabled,
		MaxEventLogSize: cfg.MaximumSizeInBytes,
	}
}

// ConfigsFromChannel maps every channel entry of ch.
func ConfigsFromChannel(ch welc.EventLogChannel) []welc.ChannelConfig {
	out := make([]welc.ChannelConfig, 0, len(ch.WinEventLog))
	for _, cfg := range ch.WinEventLog {
		out = append(out, ChannelConfigFromLog(cfg))
	}
	return out
}

// DefinitionsFromProvider turns the channels a provider owns into channel
// definitions. Imported channels belong to another provider and are left
// out. symbol derives a C identifier from a name.
func DefinitionsFromProvider(md welc.ProviderMetadata, symbol func(string) string) []welc.ChannelDefinition {
	out := make([]welc.ChannelDefinition, 0, len(md.LogLinks))
	for _, link := range md.LogLinks {
		if link.IsImported || strings.TrimSpace(link.LogName) == "" {
			continue
		}
		out = append(out, welc.ChannelDefinition{
			ProviderName:   md.Name,
			ProviderSymbol: symbol(md.Name),
			ChannelName:    link.LogName,
			ChannelSymbol:  symbol(link.LogName),
		})
	}
	return out
}
