package collectors

import (
	"context"
	"errors"
	"sort"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

type fakeReader struct {
	computer     string
	configs      map[string]welc.EventLogConfiguration
	providers    map[string]welc.ProviderMetadata
	badProviders map[string]bool
	channelsErr  error
	set          []welc.ChannelConfig

	providerLists int
	metadataReads int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		computer:     "wec01",
		configs:      map[string]welc.EventLogConfiguration{},
		providers:    map[string]welc.ProviderMetadata{},
		badProviders: map[string]bool{},
	}
}

func (f *fakeReader) Computer() string { return f.computer }

func (f *fakeReader) Channels(ctx context.Context) ([]string, error) {
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	return sortedKeys(f.configs), nil
}

func (f *fakeReader) ChannelConfiguration(ctx context.Context, name string) (welc.EventLogConfiguration, error) {
	cfg, ok := f.configs[name]
	if !ok {
		return welc.EventLogConfiguration{}, errors.New("channel not found")
	}
	return cfg, nil
}

func (f *fakeReader) Providers(ctx context.Context) ([]string, error) {
	f.providerLists++
	names := sortedKeys(f.providers)
	for n := range f.badProviders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeReader) ProviderMetadata(ctx context.Context, name string) (welc.ProviderMetadata, error) {
	f.metadataReads++
	if f.badProviders[name] {
		return welc.ProviderMetadata{Name: name}, errors.New("access denied")
	}
	md, ok := f.providers[name]
	if !ok {
		return welc.ProviderMetadata{}, errors.New("provider not found")
	}
	return md, nil
}

func (f *fakeReader) SetChannelConfig(ctx context.Context, cfg welc.ChannelConfig) error {
	f.set = append(f.set, cfg)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var _ Writer = (*fakeReader)(nil)

func sampleReader() *fakeReader {
	f := newFakeReader()
	f.configs["Security"] = welc.EventLogConfiguration{
		LogName:            "Security",
		LogType:            welc.LogTypeAdministrative,
		LogIsolation:       welc.IsolationCustom,
		IsEnabled:          true,
		LogFilePath:        `%SystemRoot%\System32\Winevt\Logs\Security.evtx`,
		MaximumSizeInBytes: 20971520,
		LogMode:            welc.Circular,
		OwningProviderName: "Microsoft-Windows-Eventlog",
		ProviderNames:      []string{"Microsoft-Windows-Security-Auditing"},
	}
	f.configs["Corp-WEC-Basic/Operational"] = welc.EventLogConfiguration{
		LogName:            "Corp-WEC-Basic/Operational",
		LogType:            welc.LogTypeOperational,
		LogIsolation:       welc.IsolationApplication,
		LogFilePath:        `D:\Logs\Corp-WEC-Basic%4Operational.evtx`,
		MaximumSizeInBytes: 1 << 30,
		LogMode:            welc.AutoBackup,
		OwningProviderName: "Corp-WEC-Basic",
		ProviderNames:      []string{"Corp-WEC-Basic"},
	}
	f.providers["Corp-WEC-Basic"] = welc.ProviderMetadata{
		Name: "Corp-WEC-Basic",
		Id:   "{CF27F07F-7013-483A-BC74-97A0F6AA32FC}",
		LogLinks: []welc.EventLogLink{
			{LogName: "Corp-WEC-Basic/Operational"},
			{LogName: "Corp-WEC-Basic/Domain Controllers"},
			{LogName: "Application", IsImported: true},
		},
	}
	f.badProviders["Microsoft-Windows-Broken"] = true
	return f
}
