//go:build windows
// +build windows

package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/windows"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// Session is an open connection to the event-log service of one host. The
// zero handle is the local machine.
type Session struct {
	mu     sync.Mutex
	handle evtHandle
	opts   Options
	closed bool
}

// Open connects to the host named in opts.
func Open(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.IsLocal() {
		return s, nil
	}

	h, err := evtOpenSession(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session to %s: %w", opts.Computer, err)
	}
	s.handle = h
	return s, nil
}

// Close releases the session handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.handle == 0 {
		return nil
	}
	if err := evtClose(s.handle); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// Computer returns the host name the session reports in records.
func (s *Session) Computer() string {
	if s.opts.IsLocal() {
		name, err := windows.ComputerName()
		if err != nil {
			return "localhost"
		}
		return name
	}
	return s.opts.Computer
}

func (s *Session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Channels lists the names of every channel registered on the host, sorted.
func (s *Session) Channels(ctx context.Context) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	enum, err := evtOpenChannelEnum(s.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate channels: %w", err)
	}
	defer evtClose(enum)

	names := make([]string, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := evtNextString(nextChannelPathProc, enum)
		if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next channel: %w", err)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ChannelConfiguration reads the configuration of one channel.
func (s *Session) ChannelConfiguration(ctx context.Context, name string) (welc.EventLogConfiguration, error) {
	cfg := welc.EventLogConfiguration{LogName: name, ProviderNames: make([]string, 0)}
	if err := s.check(); err != nil {
		return cfg, err
	}
	if err := ctx.Err(); err != nil {
		return cfg, err
	}

	h, err := evtOpenChannelConfig(s.handle, name)
	if err != nil {
		return cfg, fmt.Errorf("failed to open channel %q: %w", name, err)
	}
	defer evtClose(h)

	prop := func(id uint32) *evtVariant {
		v, buf, err := evtGetChannelConfigProperty(h, id)
		if err != nil {
			return nil
		}
		runtime.KeepAlive(buf)
		return v
	}

	cfg.IsEnabled = prop(evtChannelConfigEnabled).bool()
	cfg.LogIsolation = isolationName(prop(evtChannelConfigIsolation).uint32())
	cfg.LogType = logTypeName(prop(evtChannelConfigType).uint32())
	cfg.OwningProviderName = prop(evtChannelConfigOwningPublisher).string()
	cfg.IsClassicLog = prop(evtChannelConfigClassicEventlog).bool()
	cfg.SecurityDescriptor = prop(evtChannelConfigAccess).string()
	cfg.LogFilePath = prop(evtChannelLoggingConfigLogFilePath).string()
	cfg.MaximumSizeInBytes = int64(prop(evtChannelLoggingConfigMaxSize).uint64())
	cfg.LogMode = LogMode(
		prop(evtChannelLoggingConfigRetention).bool(),
		prop(evtChannelLoggingConfigAutoBackup).bool(),
	)
	cfg.ProviderNames = prop(evtChannelPublisherList).stringArray()

	// publishing properties only exist on analytic and debug channels
	cfg.ProviderLevel = optionalUint32(prop(evtChannelPublishingConfigLevel))
	if v := prop(evtChannelPublishingConfigKeywords); !v.isNull() {
		kw := v.uint64()
		cfg.ProviderKeywords = &kw
	}
	cfg.ProviderBufferSize = optionalUint32(prop(evtChannelPublishingConfigBufferSize))
	cfg.ProviderMinimumNumberOfBuffers = optionalUint32(prop(evtChannelPublishingConfigMinBuffers))
	cfg.ProviderMaximumNumberOfBuffers = optionalUint32(prop(evtChannelPublishingConfigMaxBuffers))
	cfg.ProviderLatency = optionalUint32(prop(evtChannelPublishingConfigLatency))
	if g, ok := prop(evtChannelPublishingConfigControlGuid).guid(); ok && !g.IsZero() {
		cfg.ProviderControlGuid = g.String()
	}
	return cfg, nil
}

// isEnabledTraceChannel reports whether the channel behind h is an enabled
// analytic or debug channel.
func isEnabledTraceChannel(h evtHandle) bool {
	enabled, _, err := evtGetChannelConfigProperty(h, evtChannelConfigEnabled)
	if err != nil || !enabled.bool() {
		return false
	}
	typ, _, err := evtGetChannelConfigProperty(h, evtChannelConfigType)
	if err != nil {
		return false
	}
	switch typ.uint32() {
	case evtChannelTypeAnalytic, evtChannelTypeDebug:
		return true
	}
	return false
}

func optionalUint32(v *evtVariant) *uint32 {
	if v.isNull() {
		return nil
	}
	n := v.uint32()
	return &n
}

// SetChannelConfig applies cfg to the channel it names and saves it.
// Enabled is written first when false and last when true. An enabled
// analytic or debug channel only takes changes while it is disabled, so it is
// disabled and saved, changed, and then enabled again.
func (s *Session) SetChannelConfig(ctx context.Context, cfg welc.ChannelConfig) error {
	if err := s.check(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.ChannelName) == "" {
		return errors.New("channel name is empty")
	}
	if cfg.MaxEventLogSize < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, cfg.MaxEventLogSize)
	}
	var retention, autoBackup bool
	if cfg.LogMode != "" {
		var err error
		if retention, autoBackup, err = LogModeFlags(cfg.LogMode); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h, err := evtOpenChannelConfig(s.handle, cfg.ChannelName)
	if err != nil {
		return fmt.Errorf("failed to open channel %q: %w", cfg.ChannelName, err)
	}
	defer evtClose(h)

	set := func(id uint32, v evtVariant) error {
		if err := evtSetChannelConfigProperty(h, id, &v); err != nil {
			return fmt.Errorf("failed to set property %d on %q: %w", id, cfg.ChannelName, err)
		}
		return nil
	}

	changes := cfg.LogFullName != "" || cfg.MaxEventLogSize > 0 || cfg.LogMode != ""
	disabled := false
	if changes && cfg.Enabled && isEnabledTraceChannel(h) {
		if err := set(evtChannelConfigEnabled, boolVariant(false)); err != nil {
			return err
		}
		if err := evtSaveChannelConfig(h); err != nil {
			return fmt.Errorf("failed to disable channel %q: %w", cfg.ChannelName, err)
		}
		disabled = true
	}
	if !cfg.Enabled {
		if err := set(evtChannelConfigEnabled, boolVariant(false)); err != nil {
			return err
		}
	}
	if cfg.LogFullName != "" {
		path, err := windows.UTF16PtrFromString(cfg.LogFullName)
		if err != nil {
			return err
		}
		err = set(evtChannelLoggingConfigLogFilePath, stringVariant(path))
		runtime.KeepAlive(path)
		if err != nil {
			return err
		}
	}
	if cfg.MaxEventLogSize > 0 {
		if err := set(evtChannelLoggingConfigMaxSize, uint64Variant(uint64(cfg.MaxEventLogSize))); err != nil {
			return err
		}
	}
	if cfg.LogMode != "" {
		if err := set(evtChannelLoggingConfigRetention, boolVariant(retention)); err != nil {
			return err
		}
		if err := set(evtChannelLoggingConfigAutoBackup, boolVariant(autoBackup)); err != nil {
			return err
		}
	}
	if cfg.Enabled {
		if err := set(evtChannelConfigEnabled, boolVariant(true)); err != nil {
			if disabled {
				log.Printf("Channel %s was left disabled: %v", cfg.ChannelName, err)
			}
			return err
		}
	}

	if err := evtSaveChannelConfig(h); err != nil {
		return fmt.Errorf("failed to save channel %q: %w", cfg.ChannelName, err)
	}
	log.Printf("Channel %s saved on %s (enabled=%t, mode=%s, max size=%d)",
		cfg.ChannelName, s.Computer(), cfg.Enabled, cfg.LogMode, cfg.MaxEventLogSize)
	return nil
}
