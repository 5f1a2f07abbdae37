package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/winguid"
)

// HeaderProvider is a provider block of a message compiler header.
type HeaderProvider struct {
	Name       string
	EventCount int
	Symbol     string
	GUID       winguid.GUID
	Channels   []HeaderChannel
}

type HeaderChannel struct {
	Symbol string
	Value  uint32
}

var (
	headerProviderRe = regexp.MustCompile(`^// Provider (.+) Event Count (\d+)$`)
	headerGUIDRe     = regexp.MustCompile(`^EXTERN_C __declspec\(selectany\) const GUID (\w+) = (\{.*\});$`)
	headerDefineRe   = regexp.MustCompile(`^#define (\w+) (0[xX][0-9a-fA-F]+|\d+)$`)
	headerSectionRe  = regexp.MustCompile(`^// ([A-Z][A-Za-z ]+)$`)
)

// WriteHeader writes the C header that goes along with m, laid out the way
// the message compiler lays it out.
func (m *Manifest) WriteHeader(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "//**********************************************************************`")
	fmt.Fprintln(bw, "//* This is an include file generated by welc.                         *`")
	fmt.Fprintln(bw, "//**********************************************************************`")
	fmt.Fprintln(bw, "#pragma once")

	for _, p := range m.Providers {
		guid, err := winguid.Parse(p.GUID)
		if err != nil {
			return fmt.Errorf("provider %s: %w", p.Name, err)
		}

		fmt.Fprintln(bw, "//+")
		fmt.Fprintf(bw, "// Provider %s Event Count 0\n", p.Name)
		fmt.Fprintln(bw, "//+")
		fmt.Fprintf(bw, "EXTERN_C __declspec(selectany) const GUID %s = %s;\n", p.Symbol, guid.Initializer())
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "//")
		fmt.Fprintln(bw, "// Channel")
		fmt.Fprintln(bw, "//")
		for _, ch := range p.Channels {
			fmt.Fprintf(bw, "#define %s 0x%x\n", ch.Symbol, ch.Value)
		}
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "//")
		fmt.Fprintln(bw, "// Event Descriptors")
		fmt.Fprintln(bw, "//")
	}

	return bw.Flush()
}

// ParseHeader reads the providers and channel values out of a message
// compiler header.
func ParseHeader(r io.Reader) ([]HeaderProvider, error) {
	providers := make([]HeaderProvider, 0)
	current := -1
	section := ""

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))

		if m := headerProviderRe.FindStringSubmatch(line); m != nil {
			count, _ := strconv.Atoi(m[2])
			providers = append(providers, HeaderProvider{Name: m[1], EventCount: count})
			current = len(providers) - 1
			section = ""
			continue
		}

		if current < 0 {
			continue
		}

		if m := headerGUIDRe.FindStringSubmatch(line); m != nil {
			guid, err := winguid.ParseInitializer(m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			providers[current].Symbol = m[1]
			providers[current].GUID = guid
			continue
		}

		if m := headerSectionRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}

		if section != "Channel" {
			continue
		}
		if m := headerDefineRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseUint(m[2], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			providers[current].Channels = append(providers[current].Channels, HeaderChannel{Symbol: m[1], Value: uint32(v)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return providers, nil
}
