// Package eventlog reads and writes channel configuration and provider
// metadata through the Windows Event Log API.
package eventlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

var (
	ErrNotSupported   = errors.New("event log access is not supported on non-windows platforms")
	ErrUnknownLogMode = errors.New("unknown log mode")
	ErrNegativeSize   = errors.New("maximum log size must not be negative")
	ErrClosed         = errors.New("session is closed")
)

// Options selects the host a Session talks to. An empty Computer is the
// local machine.
type Options struct {
	Computer string
	User     string
	Domain   string
	Password string
	// Locale is the LCID used for provider display names, 0 for the user
	// default.
	Locale uint32
}

// IsLocal reports whether opts point at the local machine.
func (o Options) IsLocal() bool {
	switch strings.ToLower(strings.TrimSpace(o.Computer)) {
	case "", ".", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// LogMode maps the retention and auto-backup switches of a channel onto its
// log mode name.
func LogMode(retention, autoBackup bool) string {
	switch {
	case retention && autoBackup:
		return welc.AutoBackup
	case retention:
		return welc.Retain
	default:
		return welc.Circular
	}
}

// LogModeFlags is the inverse of LogMode.
func LogModeFlags(mode string) (retention, autoBackup bool, err error) {
	switch {
	case strings.EqualFold(mode, welc.Circular):
		return false, false, nil
	case strings.EqualFold(mode, welc.AutoBackup):
		return true, true, nil
	case strings.EqualFold(mode, welc.Retain):
		return true, false, nil
	}
	return false, false, fmt.Errorf("%w: %q", ErrUnknownLogMode, mode)
}

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_channel_type
func logTypeName(t uint32) string {
	switch t {
	case 0:
		return welc.LogTypeAdministrative
	case 1:
		return welc.LogTypeOperational
	case 2:
		return welc.LogTypeAnalytical
	case 3:
		return welc.LogTypeDebug
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_channel_isolation_type
func isolationName(t uint32) string {
	switch t {
	case 0:
		return welc.IsolationApplication
	case 1:
		return welc.IsolationSystem
	case 2:
		return welc.IsolationCustom
	}
	return fmt.Sprintf("Unknown(%d)", t)
}
