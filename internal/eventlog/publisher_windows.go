//go:build windows
// +build windows

package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sys/windows"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

// Providers lists the names of every provider registered on the host, sorted.
func (s *Session) Providers(ctx context.Context) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	enum, err := evtOpenPublisherEnum(s.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate providers: %w", err)
	}
	defer evtClose(enum)

	names := make([]string, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := evtNextString(nextPublisherIDProc, enum)
		if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next provider: %w", err)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type publisher struct {
	handle evtHandle
}

func (p publisher) property(id uint32) *evtVariant {
	v, _, err := evtGetPublisherMetadataProperty(p.handle, id)
	if err != nil {
		return nil
	}
	return v
}

func (p publisher) message(id uint32) string {
	if id == noMessageID {
		return ""
	}
	text, err := evtFormatMessageID(p.handle, id)
	if err != nil {
		return ""
	}
	return text
}

// array walks the object array behind property id and calls fn for each
// element index.
func (p publisher) array(id uint32, fn func(array evtHandle, i uint32)) {
	v := p.property(id)
	array := v.handle()
	if array == 0 {
		return
	}
	defer evtClose(array)

	n, err := evtGetObjectArraySize(array)
	if err != nil {
		return
	}
	for i := uint32(0); i < n; i++ {
		fn(array, i)
	}
}

func element(array evtHandle, id, i uint32) *evtVariant {
	v, _, err := evtGetObjectArrayProperty(array, id, i)
	if err != nil {
		return nil
	}
	return v
}

// ProviderMetadata reads the metadata of one provider. Only a failure to open
// the provider is an error; missing optional properties stay empty.
func (s *Session) ProviderMetadata(ctx context.Context, name string) (welc.ProviderMetadata, error) {
	md := welc.ProviderMetadata{
		Name:     name,
		LogLinks: make([]welc.EventLogLink, 0),
		Levels:   make([]welc.EventLevel, 0),
		Tasks:    make([]welc.EventTask, 0),
		Opcodes:  make([]welc.EventOpcode, 0),
		Keywords: make([]welc.EventKeyword, 0),
	}
	if err := s.check(); err != nil {
		return md, err
	}
	if err := ctx.Err(); err != nil {
		return md, err
	}

	h, err := evtOpenPublisherMetadata(s.handle, name, s.opts.Locale)
	if err != nil {
		return md, fmt.Errorf("failed to open provider %q: %w", name, err)
	}
	defer evtClose(h)
	p := publisher{handle: h}

	if g, ok := p.property(evtPublisherMetadataPublisherGuid).guid(); ok {
		md.Id = g.String()
	}
	md.ResourceFilePath = p.property(evtPublisherMetadataResourceFilePath).string()
	md.ParameterFilePath = p.property(evtPublisherMetadataParameterFilePath).string()
	md.MessageFilePath = p.property(evtPublisherMetadataMessageFilePath).string()
	md.HelpLink = p.property(evtPublisherMetadataHelpLink).string()
	if v := p.property(evtPublisherMetadataPublisherMessageID); !v.isNull() {
		md.DisplayName = p.message(v.uint32())
	}

	p.array(evtPublisherMetadataChannelReferences, func(a evtHandle, i uint32) {
		link := welc.EventLogLink{
			LogName:    element(a, evtPublisherMetadataChannelReferencePath, i).string(),
			IsImported: element(a, evtPublisherMetadataChannelReferenceFlags, i).uint32()&evtChannelReferenceImported != 0,
		}
		if v := element(a, evtPublisherMetadataChannelReferenceMessageID, i); !v.isNull() {
			link.DisplayName = p.message(v.uint32())
		}
		md.LogLinks = append(md.LogLinks, link)
	})

	p.array(evtPublisherMetadataLevels, func(a evtHandle, i uint32) {
		md.Levels = append(md.Levels, welc.EventLevel{
			Name:        element(a, evtPublisherMetadataLevelName, i).string(),
			Value:       element(a, evtPublisherMetadataLevelValue, i).uint32(),
			DisplayName: p.message(messageID(element(a, evtPublisherMetadataLevelMessageID, i))),
		})
	})

	p.array(evtPublisherMetadataTasks, func(a evtHandle, i uint32) {
		task := welc.EventTask{
			Name:        element(a, evtPublisherMetadataTaskName, i).string(),
			Value:       element(a, evtPublisherMetadataTaskValue, i).uint32(),
			DisplayName: p.message(messageID(element(a, evtPublisherMetadataTaskMessageID, i))),
		}
		if g, ok := element(a, evtPublisherMetadataTaskEventGuid, i).guid(); ok && !g.IsZero() {
			task.EventGuid = g.String()
		}
		md.Tasks = append(md.Tasks, task)
	})

	p.array(evtPublisherMetadataOpcodes, func(a evtHandle, i uint32) {
		md.Opcodes = append(md.Opcodes, welc.EventOpcode{
			Name: element(a, evtPublisherMetadataOpcodeName, i).string(),
			// the high word holds the opcode, the low word the task
			Value:       element(a, evtPublisherMetadataOpcodeValue, i).uint32() >> 16,
			DisplayName: p.message(messageID(element(a, evtPublisherMetadataOpcodeMessageID, i))),
		})
	})

	p.array(evtPublisherMetadataKeywords, func(a evtHandle, i uint32) {
		md.Keywords = append(md.Keywords, welc.EventKeyword{
			Name:        element(a, evtPublisherMetadataKeywordName, i).string(),
			Value:       element(a, evtPublisherMetadataKeywordValue, i).uint64(),
			DisplayName: p.message(messageID(element(a, evtPublisherMetadataKeywordMessageID, i))),
		})
	})

	return md, nil
}

func messageID(v *evtVariant) uint32 {
	if v.isNull() {
		return noMessageID
	}
	return v.uint32()
}
