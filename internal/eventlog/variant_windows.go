//go:build windows
// +build windows

package eventlog

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/winguid"
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ne-winevt-evt_variant_type
const (
	evtVarTypeNull      = 0
	evtVarTypeString    = 1
	evtVarTypeUInt32    = 8
	evtVarTypeUInt64    = 10
	evtVarTypeBoolean   = 13
	evtVarTypeGuid      = 15
	evtVarTypeHexInt32  = 20
	evtVarTypeHexInt64  = 21
	evtVarTypeEvtHandle = 32

	evtVariantTypeMask  = 0x7f
	evtVariantTypeArray = 128
)

// https://learn.microsoft.com/en-us/windows/win32/api/winevt/ns-winevt-evt_variant
type evtVariant struct {
	Value [8]byte
	Count uint32
	Type  uint32
}

func (v *evtVariant) kind() uint32 {
	return v.Type & evtVariantTypeMask
}

func (v *evtVariant) isNull() bool {
	return v == nil || v.kind() == evtVarTypeNull
}

func (v *evtVariant) isArray() bool {
	return v.Type&evtVariantTypeArray != 0
}

func (v *evtVariant) pointer() unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&v.Value[0]))
}

func (v *evtVariant) uint32() uint32 {
	if v.isNull() {
		return 0
	}
	return *(*uint32)(unsafe.Pointer(&v.Value[0]))
}

func (v *evtVariant) uint64() uint64 {
	if v.isNull() {
		return 0
	}
	switch v.kind() {
	case evtVarTypeUInt32, evtVarTypeHexInt32, evtVarTypeBoolean:
		return uint64(v.uint32())
	}
	return *(*uint64)(unsafe.Pointer(&v.Value[0]))
}

func (v *evtVariant) bool() bool {
	return v.uint32() != 0
}

func (v *evtVariant) string() string {
	if v.isNull() || v.kind() != evtVarTypeString || v.isArray() {
		return ""
	}
	p := (*uint16)(v.pointer())
	if p == nil {
		return ""
	}
	return windows.UTF16PtrToString(p)
}

func (v *evtVariant) stringArray() []string {
	out := make([]string, 0)
	if v.isNull() || v.kind() != evtVarTypeString || !v.isArray() || v.Count == 0 {
		return out
	}
	ptrs := unsafe.Slice((**uint16)(v.pointer()), v.Count)
	for _, p := range ptrs {
		if p == nil {
			continue
		}
		out = append(out, windows.UTF16PtrToString(p))
	}
	return out
}

func (v *evtVariant) guid() (winguid.GUID, bool) {
	if v.isNull() || v.kind() != evtVarTypeGuid {
		return winguid.GUID{}, false
	}
	p := (*winguid.GUID)(v.pointer())
	if p == nil {
		return winguid.GUID{}, false
	}
	return *p, true
}

func (v *evtVariant) handle() evtHandle {
	if v.isNull() || v.kind() != evtVarTypeEvtHandle {
		return 0
	}
	return evtHandle(*(*uintptr)(unsafe.Pointer(&v.Value[0])))
}

func boolVariant(b bool) evtVariant {
	v := evtVariant{Type: evtVarTypeBoolean}
	if b {
		*(*uint32)(unsafe.Pointer(&v.Value[0])) = 1
	}
	return v
}

func uint64Variant(n uint64) evtVariant {
	v := evtVariant{Type: evtVarTypeUInt64}
	*(*uint64)(unsafe.Pointer(&v.Value[0])) = n
	return v
}

// stringVariant stores p in the variant. The caller keeps p alive until the
// variant has been handed to the API.
func stringVariant(p *uint16) evtVariant {
	v := evtVariant{Type: evtVarTypeString}
	*(*uintptr)(unsafe.Pointer(&v.Value[0])) = uintptr(unsafe.Pointer(p))
	return v
}
