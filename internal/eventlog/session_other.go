//go:build !windows
// +build !windows

package eventlog

import (
	"context"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// Session is a placeholder on non-windows platforms.
type Session struct{}

// Open always fails on non-windows platforms.
func Open(opts Options) (*Session, error) {
	return nil, ErrNotSupported
}

func (s *Session) Close() error { return nil }

func (s *Session) Computer() string { return "" }

func (s *Session) Channels(ctx context.Context) ([]string, error) {
	return nil, ErrNotSupported
}

func (s *Session) ChannelConfiguration(ctx context.Context, name string) (welc.EventLogConfiguration, error) {
	return welc.EventLogConfiguration{}, ErrNotSupported
}

func (s *Session) SetChannelConfig(ctx context.Context, cfg welc.ChannelConfig) error {
	return ErrNotSupported
}

func (s *Session) Providers(ctx context.Context) ([]string, error) {
	return nil, ErrNotSupported
}

func (s *Session) ProviderMetadata(ctx context.Context, name string) (welc.ProviderMetadata, error) {
	return welc.ProviderMetadata{}, ErrNotSupported
}
