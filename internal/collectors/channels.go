package collectors

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gobwas/glob"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// Reader is the read side of the event-log facility.
type Reader interface {
	Computer() string
	Channels(ctx context.Context) ([]string, error)
	ChannelConfiguration(ctx context.Context, name string) (welc.EventLogConfiguration, error)
	Providers(ctx context.Context) ([]string, error)
	ProviderMetadata(ctx context.Context, name string) (welc.ProviderMetadata, error)
}

// Writer can also change channel configuration.
type Writer interface {
	Reader
	SetChannelConfig(ctx context.Context, cfg welc.ChannelConfig) error
}

// Filter matches channel or provider names against glob patterns, ignoring
// case. The zero Filter matches everything.
type Filter struct {
	patterns []string
	globs    []glob.Glob
}

// NewFilter compiles patterns. Blank patterns are ignored.
func NewFilter(patterns ...string) (Filter, error) {
	var f Filter
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return Filter{}, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, p)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether name matches any pattern.
func (f Filter) Match(name string) bool {
	if len(f.globs) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, g := range f.globs {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no patterns.
func (f Filter) Empty() bool {
	return len(f.globs) == 0
}

func (f Filter) String() string {
	if len(f.patterns) == 0 {
		return "*"
	}
	return strings.Join(f.patterns, ",")
}

// Select returns the names that match, in input order.
func (f Filter) Select(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// CollectEventLogChannel gathers the configuration of every channel matched
// by channels and the metadata of every provider matched by providers.
// Providers whose metadata cannot be read are skipped.
func CollectEventLogChannel(ctx context.Context, r Reader, channels, providers Filter) (welc.EventLogChannel, error) {
	return collect(ctx, r, channels, providers, true)
}

// CollectConfigured is CollectEventLogChannel for repeated collection: provider
// metadata is only read when provider patterns are configured, since reading
// every provider on a host takes thousands of calls.
func CollectConfigured(ctx context.Context, r Reader, channels, providers Filter) (welc.EventLogChannel, error) {
	return collect(ctx, r, channels, providers, !providers.Empty())
}

func collect(ctx context.Context, r Reader, channels, providers Filter, withProviders bool) (welc.EventLogChannel, error) {
	out := welc.NewEventLogChannel(r.Computer())

	names, err := r.Channels(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to list channels on %s: %w", out.PSComputerName, err)
	}
	for _, name := range channels.Select(names) {
		cfg, err := r.ChannelConfiguration(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Printf("Skipping channel %s: %v", name, err)
			continue
		}
		out.WinEventLog = append(out.WinEventLog, cfg)
	}
	if !withProviders {
		return out, nil
	}

	names, err = r.Providers(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to list providers on %s: %w", out.PSComputerName, err)
	}
	for _, name := range providers.Select(names) {
		md, err := r.ProviderMetadata(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Printf("Skipping provider %s: %v", name, err)
			continue
		}
		out.Provider = append(out.Provider, md)
	}
	return out, nil
}

// ChannelConfigs reads the configuration of every matching channel and maps
// it to the short form.
func ChannelConfigs(ctx context.Context, r Reader, channels Filter) ([]welc.ChannelConfig, error) {
	names, err := r.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels on %s: %w", r.Computer(), err)
	}
	out := make([]welc.ChannelConfig, 0, len(names))
	for _, name := range channels.Select(names) {
		cfg, err := r.ChannelConfiguration(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Skipping channel %s: %v", name, err)
			continue
		}
		out = append(out, ChannelConfigFromLog(cfg))
	}
	return out, nil
}
