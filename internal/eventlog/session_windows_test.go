//go:build windows
// +build windows

package eventlog

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

type mockProc struct {
	call func(a ...uintptr) (uintptr, uintptr, error)
}

func (m mockProc) Call(a ...uintptr) (uintptr, uintptr, error) {
	return m.call(a...)
}

func simpleMockProc(r1, r2 uintptr, err error) syscallProc {
	return mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		return r1, r2, err
	}}
}

// swap replaces *target for the duration of the test.
func swap(t *testing.T, target *syscallProc, p syscallProc) {
	old := *target
	*target = p
	t.Cleanup(func() { *target = old })
}

// argPtr reads argument i of a mocked call as a pointer without a
// uintptr-to-pointer conversion.
func argPtr(a []uintptr, i int) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&a[i]))
}

func uint32Var(n uint32) evtVariant {
	var v evtVariant
	v.Type = evtVarTypeUInt32
	*(*uint32)(unsafe.Pointer(&v.Value[0])) = n
	return v
}

// stringsProc serves names the way EvtNextChannelPath does.
func stringsProc(names ...string) syscallProc {
	i := 0
	return mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		if i >= len(names) {
			return 0, 0, windows.ERROR_NO_MORE_ITEMS
		}
		u := windows.StringToUTF16(names[i])
		*(*uint32)(argPtr(a, 3)) = uint32(len(u))
		if a[1] == 0 {
			return 0, 0, windows.ERROR_INSUFFICIENT_BUFFER
		}
		copy(unsafe.Slice((*uint16)(argPtr(a, 2)), a[1]), u)
		i++
		return 1, 0, nil
	}}
}

// variantProc serves channel properties from values.
func variantProc(values map[uintptr]evtVariant) syscallProc {
	return mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		v, ok := values[a[1]]
		if !ok {
			return 0, 0, windows.ERROR_NOT_FOUND
		}
		*(*uint32)(argPtr(a, 5)) = uint32(unsafe.Sizeof(v))
		if a[3] == 0 {
			return 0, 0, windows.ERROR_INSUFFICIENT_BUFFER
		}
		*(*evtVariant)(argPtr(a, 4)) = v
		return 1, 0, nil
	}}
}

func TestOpenLocal(t *testing.T) {
	s, err := Open(Options{Computer: "localhost"})
	require.NoError(t, err)
	require.Equal(t, evtHandle(0), s.handle)
	require.NoError(t, s.Close())
}

func TestOpenRemoteFailure(t *testing.T) {
	swap(t, &openSessionProc, simpleMockProc(0, 0, windows.ERROR_ACCESS_DENIED))
	_, err := Open(Options{Computer: "srv01", User: "admin"})
	require.ErrorIs(t, err, windows.ERROR_ACCESS_DENIED)
	require.Contains(t, err.Error(), "failed to open session to srv01")
}

func TestOpenRemoteAndClose(t *testing.T) {
	swap(t, &openSessionProc, simpleMockProc(7, 0, nil))
	closed := 0
	swap(t, &closeProc, mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		closed++
		require.Equal(t, uintptr(7), a[0])
		return 1, 0, nil
	}})

	s, err := Open(Options{Computer: "srv01"})
	require.NoError(t, err)
	require.Equal(t, "srv01", s.Computer())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, closed)

	_, err = s.Channels(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestChannels(t *testing.T) {
	swap(t, &openChannelEnumProc, simpleMockProc(3, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &nextChannelPathProc, stringsProc("System", "Application", "Corp-WEC-Basic/Operational"))

	s := &Session{}
	names, err := s.Channels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Application", "Corp-WEC-Basic/Operational", "System"}, names)
}

func TestChannelsCancelled(t *testing.T) {
	swap(t, &openChannelEnumProc, simpleMockProc(3, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &nextChannelPathProc, stringsProc("System"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Session{}).Channels(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestChannelConfiguration(t *testing.T) {
	path, err := windows.UTF16PtrFromString(`%SystemRoot%\System32\Winevt\Logs\Corp-WEC-Basic%4Operational.evtx`)
	require.NoError(t, err)

	swap(t, &openChannelConfigProc, simpleMockProc(9, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &getChannelConfigPropertyProc, variantProc(map[uintptr]evtVariant{
		evtChannelConfigEnabled:            boolVariant(true),
		evtChannelConfigType:               uint32Var(1),
		evtChannelLoggingConfigRetention:   boolVariant(true),
		evtChannelLoggingConfigAutoBackup:  boolVariant(true),
		evtChannelLoggingConfigMaxSize:     uint64Variant(20 << 20),
		evtChannelLoggingConfigLogFilePath: stringVariant(path),
	}))

	cfg, err := (&Session{}).ChannelConfiguration(context.Background(), "Corp-WEC-Basic/Operational")
	require.NoError(t, err)
	require.Equal(t, "Corp-WEC-Basic/Operational", cfg.LogName)
	require.True(t, cfg.IsEnabled)
	require.Equal(t, welc.LogTypeOperational, cfg.LogType)
	require.Equal(t, welc.IsolationApplication, cfg.LogIsolation)
	require.Equal(t, welc.AutoBackup, cfg.LogMode)
	require.Equal(t, int64(20<<20), cfg.MaximumSizeInBytes)
	require.Equal(t, `%SystemRoot%\System32\Winevt\Logs\Corp-WEC-Basic%4Operational.evtx`, cfg.LogFilePath)
	require.NotNil(t, cfg.ProviderNames)
	require.Nil(t, cfg.ProviderLevel)
	require.Nil(t, cfg.ProviderKeywords)
	runtime.KeepAlive(path)
}

func TestChannelConfigurationOpenFailure(t *testing.T) {
	swap(t, &openChannelConfigProc, simpleMockProc(0, 0, windows.ERROR_EVT_CHANNEL_NOT_FOUND))
	_, err := (&Session{}).ChannelConfiguration(context.Background(), "Nope")
	require.ErrorIs(t, err, windows.ERROR_EVT_CHANNEL_NOT_FOUND)
}

var propertyNames = map[uintptr]string{
	evtChannelConfigEnabled:            "enabled",
	evtChannelLoggingConfigRetention:   "retention",
	evtChannelLoggingConfigAutoBackup:  "autobackup",
	evtChannelLoggingConfigMaxSize:     "maxsize",
	evtChannelLoggingConfigLogFilePath: "path",
}

// setRecorder mocks a channel whose current properties are current and
// records every property write and save in order.
func setRecorder(t *testing.T, current map[uintptr]evtVariant) *[]string {
	var calls []string
	swap(t, &openChannelConfigProc, simpleMockProc(9, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &getChannelConfigPropertyProc, variantProc(current))
	swap(t, &saveChannelConfigProc, mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		calls = append(calls, "save")
		return 1, 0, nil
	}})
	swap(t, &setChannelConfigPropertyProc, mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		name := propertyNames[a[1]]
		if a[1] == evtChannelConfigEnabled {
			name = fmt.Sprintf("enabled=%t", (*evtVariant)(argPtr(a, 3)).bool())
		}
		calls = append(calls, name)
		return 1, 0, nil
	}})
	return &calls
}

var operationalChannel = map[uintptr]evtVariant{
	evtChannelConfigEnabled: boolVariant(true),
	evtChannelConfigType:    uint32Var(evtChannelTypeOperational),
}

var analyticChannel = map[uintptr]evtVariant{
	evtChannelConfigEnabled: boolVariant(true),
	evtChannelConfigType:    uint32Var(evtChannelTypeAnalytic),
}

func TestSetChannelConfigEnableLast(t *testing.T) {
	calls := setRecorder(t, operationalChannel)
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{
		ChannelName:     "Corp-WEC-Basic/Operational",
		LogFullName:     `D:\Logs\basic.evtx`,
		LogMode:         welc.Retain,
		Enabled:         true,
		MaxEventLogSize: 1 << 30,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"path", "maxsize", "retention", "autobackup", "enabled=true", "save"}, *calls)
}

func TestSetChannelConfigReenablesTraceChannel(t *testing.T) {
	calls := setRecorder(t, analyticChannel)
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{
		ChannelName:     "Corp-WEC-Trace/Analytic",
		LogMode:         welc.Circular,
		Enabled:         true,
		MaxEventLogSize: 64 << 20,
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"enabled=false", "save",
		"maxsize", "retention", "autobackup",
		"enabled=true", "save",
	}, *calls)
}

func TestSetChannelConfigEnableOnlyTraceChannel(t *testing.T) {
	calls := setRecorder(t, analyticChannel)
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{
		ChannelName: "Corp-WEC-Trace/Analytic",
		Enabled:     true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"enabled=true", "save"}, *calls)
}

func TestSetChannelConfigDisableFirst(t *testing.T) {
	calls := setRecorder(t, analyticChannel)
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{
		ChannelName:     "Corp-WEC-Trace/Analytic",
		MaxEventLogSize: 64 << 20,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"enabled=false", "maxsize", "save"}, *calls)
}

func TestSetChannelConfigRejects(t *testing.T) {
	calls := setRecorder(t, operationalChannel)
	s := &Session{}

	err := s.SetChannelConfig(context.Background(), welc.ChannelConfig{ChannelName: "A", MaxEventLogSize: -1})
	require.ErrorIs(t, err, ErrNegativeSize)

	err = s.SetChannelConfig(context.Background(), welc.ChannelConfig{ChannelName: "A", LogMode: "Overwrite"})
	require.ErrorIs(t, err, ErrUnknownLogMode)

	err = s.SetChannelConfig(context.Background(), welc.ChannelConfig{})
	require.Error(t, err)
	require.Empty(t, *calls)
}

func TestSetChannelConfigSaveFailure(t *testing.T) {
	setRecorder(t, operationalChannel)
	swap(t, &saveChannelConfigProc, simpleMockProc(0, 0, windows.ERROR_ACCESS_DENIED))
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{ChannelName: "A", Enabled: true})
	require.ErrorIs(t, err, windows.ERROR_ACCESS_DENIED)
	require.Contains(t, err.Error(), "failed to save channel")
}

func TestSetChannelConfigDisableSaveFailure(t *testing.T) {
	setRecorder(t, analyticChannel)
	swap(t, &saveChannelConfigProc, simpleMockProc(0, 0, windows.ERROR_ACCESS_DENIED))
	err := (&Session{}).SetChannelConfig(context.Background(), welc.ChannelConfig{
		ChannelName: "Corp-WEC-Trace/Analytic",
		LogMode:     welc.Retain,
		Enabled:     true,
	})
	require.ErrorIs(t, err, windows.ERROR_ACCESS_DENIED)
	require.Contains(t, err.Error(), "failed to disable channel")
}

func TestProviderMetadataOpenFailure(t *testing.T) {
	swap(t, &openPublisherMetadataProc, simpleMockProc(0, 0, windows.ERROR_FILE_NOT_FOUND))
	md, err := (&Session{}).ProviderMetadata(context.Background(), "Corp-WEC-Basic")
	require.ErrorIs(t, err, windows.ERROR_FILE_NOT_FOUND)
	require.Equal(t, "Corp-WEC-Basic", md.Name)
}

func TestProviderMetadataEmpty(t *testing.T) {
	swap(t, &openPublisherMetadataProc, simpleMockProc(4, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &getPublisherMetadataPropertyProc, simpleMockProc(0, 0, windows.ERROR_NOT_FOUND))

	md, err := (&Session{}).ProviderMetadata(context.Background(), "Corp-WEC-Basic")
	require.NoError(t, err)
	require.Equal(t, "Corp-WEC-Basic", md.Name)
	require.Empty(t, md.Id)
	require.NotNil(t, md.LogLinks)
	require.NotNil(t, md.Keywords)
}

func TestProviderMetadataDisplayName(t *testing.T) {
	swap(t, &openPublisherMetadataProc, simpleMockProc(4, 0, nil))
	swap(t, &closeProc, simpleMockProc(1, 0, nil))
	swap(t, &getPublisherMetadataPropertyProc, variantProc(map[uintptr]evtVariant{
		evtPublisherMetadataPublisherMessageID: uint32Var(42),
	}))
	swap(t, &formatMessageProc, mockProc{call: func(a ...uintptr) (uintptr, uintptr, error) {
		require.Equal(t, uintptr(42), a[2])
		require.Equal(t, uintptr(evtFormatMessageIDFlag), a[5])
		u := windows.StringToUTF16("Corp WEC Basic")
		*(*uint32)(argPtr(a, 8)) = uint32(len(u))
		if a[6] == 0 {
			return 0, 0, windows.ERROR_INSUFFICIENT_BUFFER
		}
		copy(unsafe.Slice((*uint16)(argPtr(a, 7)), a[6]), u)
		return 1, 0, nil
	}})

	md, err := (&Session{}).ProviderMetadata(context.Background(), "Corp-WEC-Basic")
	require.NoError(t, err)
	require.Equal(t, "Corp WEC Basic", md.DisplayName)
}
