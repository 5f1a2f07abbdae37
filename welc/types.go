// Package welc holds the record types describing Windows Event Log channels:
// provider/channel name pairs, channel configuration and per-host snapshots.
package welc

// ChannelDefinition identifies a provider/channel pair.
type ChannelDefinition struct {
	ProviderName   string
	ProviderSymbol string
	ChannelName    string
	ChannelSymbol  string
}

// ChannelConfig is the runtime configuration of a single channel.
type ChannelConfig struct {
	ChannelName string
	LogFullName string
	// LogMode is free-form, see Circular, AutoBackup and Retain for the values
	// the OS reports.
	LogMode         string
	Enabled         bool
	MaxEventLogSize int64 // bytes
}

// EventLogChannel associates a host with the channel configurations and
// provider metadata collected from it.
type EventLogChannel struct {
	PSComputerName string
	WinEventLog    []EventLogConfiguration
	Provider       []ProviderMetadata
}

// NewEventLogChannel returns a snapshot for host with empty collections.
func NewEventLogChannel(host string) EventLogChannel {
	return EventLogChannel{
		PSComputerName: host,
		WinEventLog:    make([]EventLogConfiguration, 0),
		Provider:       make([]ProviderMetadata, 0),
	}
}
