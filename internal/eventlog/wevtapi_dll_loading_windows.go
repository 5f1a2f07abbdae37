//go:build windows
// +build windows

package eventlog

import (
	"golang.org/x/sys/windows"
)

// syscallProc is satisfied by *windows.LazyProc and by the mocks in tests.
type syscallProc interface {
	Call(a ...uintptr) (r1, r2 uintptr, lastErr error)
}

var (
	wevtapi = windows.NewLazySystemDLL("wevtapi.dll")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtopensession
	openSessionProc syscallProc = wevtapi.NewProc("EvtOpenSession")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtclose
	closeProc syscallProc = wevtapi.NewProc("EvtClose")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtopenchannelenum
	openChannelEnumProc syscallProc = wevtapi.NewProc("EvtOpenChannelEnum")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtnextchannelpath
	nextChannelPathProc syscallProc = wevtapi.NewProc("EvtNextChannelPath")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtopenchannelconfig
	openChannelConfigProc syscallProc = wevtapi.NewProc("EvtOpenChannelConfig")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtgetchannelconfigproperty
	getChannelConfigPropertyProc syscallProc = wevtapi.NewProc("EvtGetChannelConfigProperty")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtsetchannelconfigproperty
	setChannelConfigPropertyProc syscallProc = wevtapi.NewProc("EvtSetChannelConfigProperty")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtsavechannelconfig
	saveChannelConfigProc syscallProc = wevtapi.NewProc("EvtSaveChannelConfig")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtopenpublisherenum
	openPublisherEnumProc syscallProc = wevtapi.NewProc("EvtOpenPublisherEnum")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtnextpublisherid
	nextPublisherIDProc syscallProc = wevtapi.NewProc("EvtNextPublisherId")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtopenpublishermetadata
	openPublisherMetadataProc syscallProc = wevtapi.NewProc("EvtOpenPublisherMetadata")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtgetpublishermetadataproperty
	getPublisherMetadataPropertyProc syscallProc = wevtapi.NewProc("EvtGetPublisherMetadataProperty")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtgetobjectarraysize
	getObjectArraySizeProc syscallProc = wevtapi.NewProc("EvtGetObjectArraySize")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtgetobjectarrayproperty
	getObjectArrayPropertyProc syscallProc = wevtapi.NewProc("EvtGetObjectArrayProperty")

	// https://learn.microsoft.com/en-us/windows/win32/api/winevt/nf-winevt-evtformatmessage
	formatMessageProc syscallProc = wevtapi.NewProc("EvtFormatMessage")
)
