//go:build windows
// +build windows

package eventlog

import (
	"errors"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

type evtHandle uintptr

const (
	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_login_class
	evtRPCLogin = 1

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_format_message_flags
	evtFormatMessageIDFlag = 8
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_channel_config_property_id
const (
	evtChannelConfigEnabled = iota
	evtChannelConfigIsolation
	evtChannelConfigType
	evtChannelConfigOwningPublisher
	evtChannelConfigClassicEventlog
	evtChannelConfigAccess
	evtChannelLoggingConfigRetention
	evtChannelLoggingConfigAutoBackup
	evtChannelLoggingConfigMaxSize
	evtChannelLoggingConfigLogFilePath
	evtChannelPublishingConfigLevel
	evtChannelPublishingConfigKeywords
	evtChannelPublishingConfigControlGuid
	evtChannelPublishingConfigBufferSize
	evtChannelPublishingConfigMinBuffers
	evtChannelPublishingConfigMaxBuffers
	evtChannelPublishingConfigLatency
	evtChannelPublishingConfigClockType
	evtChannelPublishingConfigSidType
	evtChannelPublisherList
	evtChannelPublishingConfigFileMax
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_publisher_metadata_property_id
const (
	evtPublisherMetadataPublisherGuid = iota
	evtPublisherMetadataResourceFilePath
	evtPublisherMetadataParameterFilePath
	evtPublisherMetadataMessageFilePath
	evtPublisherMetadataHelpLink
	evtPublisherMetadataPublisherMessageID
	evtPublisherMetadataChannelReferences
	evtPublisherMetadataChannelReferencePath
	evtPublisherMetadataChannelReferenceIndex
	evtPublisherMetadataChannelReferenceID
	evtPublisherMetadataChannelReferenceFlags
	evtPublisherMetadataChannelReferenceMessageID
	evtPublisherMetadataLevels
	evtPublisherMetadataLevelName
	evtPublisherMetadataLevelValue
	evtPublisherMetadataLevelMessageID
	evtPublisherMetadataTasks
	evtPublisherMetadataTaskName
	evtPublisherMetadataTaskEventGuid
	evtPublisherMetadataTaskValue
	evtPublisherMetadataTaskMessageID
	evtPublisherMetadataOpcodes
	evtPublisherMetadataOpcodeName
	evtPublisherMetadataOpcodeValue
	evtPublisherMetadataOpcodeMessageID
	evtPublisherMetadataKeywords
	evtPublisherMetadataKeywordName
	evtPublisherMetadataKeywordValue
	evtPublisherMetadataKeywordMessageID
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_channel_type
const (
	evtChannelTypeAdmin = iota
	evtChannelTypeOperational
	evtChannelTypeAnalytic
	evtChannelTypeDebug
)

const (
	evtChannelReferenceImported = 0x1
	noMessageID                 = 0xffffffff
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ns-winevt-evt_rpc_login
type evtRPCLoginInfo struct {
	Server   *uint16
	User     *uint16
	Domain   *uint16
	Password *uint16
	Flags    uint32
}

func toUTF16OrNil(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	return windows.UTF16PtrFromString(s)
}

func evtOpenSession(opts Options) (evtHandle, error) {
	var login evtRPCLoginInfo
	var err error
	if login.Server, err = windows.UTF16PtrFromString(opts.Computer); err != nil {
		return 0, err
	}
	if login.User, err = toUTF16OrNil(opts.User); err != nil {
		return 0, err
	}
	if login.Domain, err = toUTF16OrNil(opts.Domain); err != nil {
		return 0, err
	}
	if login.Password, err = toUTF16OrNil(opts.Password); err != nil {
		return 0, err
	}

	handle, _, err := openSessionProc.Call(evtRPCLogin, uintptr(unsafe.Pointer(&login)), 0, 0)
	if handle == 0 {
		return 0, err
	}
	return evtHandle(handle), nil
}

func evtClose(h evtHandle) error {
	r1, _, err := closeProc.Call(uintptr(h))
	if r1 == 0 {
		return err
	}
	return nil
}

func evtOpenChannelEnum(session evtHandle) (evtHandle, error) {
	handle, _, err := openChannelEnumProc.Call(uintptr(session), 0)
	if handle == 0 {
		return 0, err
	}
	return evtHandle(handle), nil
}

func evtOpenPublisherEnum(session evtHandle) (evtHandle, error) {
	handle, _, err := openPublisherEnumProc.Call(uintptr(session), 0)
	if handle == 0 {
		return 0, err
	}
	return evtHandle(handle), nil
}

// evtNextString drives EvtNextChannelPath and EvtNextPublisherId. It returns
// windows.ERROR_NO_MORE_ITEMS once the enumeration is exhausted.
func evtNextString(proc syscallProc, enum evtHandle) (string, error) {
	var used uint32
	r1, _, err := proc.Call(uintptr(enum), 0, 0, uintptr(unsafe.Pointer(&used)))
	if r1 == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		return "", err
	}
	if used == 0 {
		return "", nil
	}

	buf := make([]uint16, used)
	r1, _, err = proc.Call(uintptr(enum), uintptr(used), uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&used)))
	if r1 == 0 {
		return "", err
	}
	return windows.UTF16ToString(buf), nil
}

func evtOpenChannelConfig(session evtHandle, channel string) (evtHandle, error) {
	path, err := windows.UTF16PtrFromString(channel)
	if err != nil {
		return 0, err
	}
	handle, _, err := openChannelConfigProc.Call(uintptr(session), uintptr(unsafe.Pointer(path)), 0)
	if handle == 0 {
		return 0, err
	}
	return evtHandle(handle), nil
}

func evtOpenPublisherMetadata(session evtHandle, publisher string, locale uint32) (evtHandle, error) {
	id, err := windows.UTF16PtrFromString(publisher)
	if err != nil {
		return 0, err
	}
	handle, _, err := openPublisherMetadataProc.Call(uintptr(session), uintptr(unsafe.Pointer(id)), 0, uintptr(locale), 0)
	if handle == 0 {
		return 0, err
	}
	return evtHandle(handle), nil
}

// callWithBuffer probes proc for the buffer size it needs, then calls it again
// with a buffer of that size. The last three arguments of proc must be
// (BufferSize, Buffer, BufferUsed).
func callWithBuffer(proc syscallProc, args ...uintptr) (*evtVariant, []uint64, error) {
	var used uint32
	probe := append(args[:len(args):len(args)], 0, 0, uintptr(unsafe.Pointer(&used)))
	r1, _, err := proc.Call(probe...)
	if r1 == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		return nil, nil, err
	}
	if used < uint32(unsafe.Sizeof(evtVariant{})) {
		used = uint32(unsafe.Sizeof(evtVariant{}))
	}

	// uint64 words keep the variant aligned
	buf := make([]uint64, (used+7)/8)
	call := append(args[:len(args):len(args)], uintptr(used), uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&used)))
	r1, _, err = proc.Call(call...)
	if r1 == 0 {
		return nil, nil, err
	}
	return (*evtVariant)(unsafe.Pointer(&buf[0])), buf, nil
}

func evtGetChannelConfigProperty(config evtHandle, id uint32) (*evtVariant, []uint64, error) {
	return callWithBuffer(getChannelConfigPropertyProc, uintptr(config), uintptr(id), 0)
}

func evtSetChannelConfigProperty(config evtHandle, id uint32, v *evtVariant) error {
	r1, _, err := setChannelConfigPropertyProc.Call(uintptr(config), uintptr(id), 0, uintptr(unsafe.Pointer(v)))
	if r1 == 0 {
		return err
	}
	return nil
}

func evtSaveChannelConfig(config evtHandle) error {
	r1, _, err := saveChannelConfigProc.Call(uintptr(config), 0)
	if r1 == 0 {
		return err
	}
	return nil
}

func evtGetPublisherMetadataProperty(metadata evtHandle, id uint32) (*evtVariant, []uint64, error) {
	return callWithBuffer(getPublisherMetadataPropertyProc, uintptr(metadata), uintptr(id), 0)
}

func evtGetObjectArraySize(array evtHandle) (uint32, error) {
	var size uint32
	r1, _, err := getObjectArraySizeProc.Call(uintptr(array), uintptr(unsafe.Pointer(&size)))
	if r1 == 0 {
		return 0, err
	}
	return size, nil
}

func evtGetObjectArrayProperty(array evtHandle, id, index uint32) (*evtVariant, []uint64, error) {
	return callWithBuffer(getObjectArrayPropertyProc, uintptr(array), uintptr(id), uintptr(index), 0)
}

// evtFormatMessageID resolves a message id of the publisher into its text.
func evtFormatMessageID(metadata evtHandle, messageID uint32) (string, error) {
	var used uint32
	r1, _, err := formatMessageProc.Call(uintptr(metadata), 0, uintptr(messageID), 0, 0, evtFormatMessageIDFlag, 0, 0, uintptr(unsafe.Pointer(&used)))
	if r1 == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		return "", err
	}
	if used == 0 {
		return "", nil
	}

	buf := make([]uint16, used)
	r1, _, err = formatMessageProc.Call(uintptr(metadata), 0, uintptr(messageID), 0, 0, evtFormatMessageIDFlag, uintptr(used), uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&used)))
	if r1 == 0 {
		return "", err
	}
	runtime.KeepAlive(buf)
	return windows.UTF16ToString(buf), nil
}
