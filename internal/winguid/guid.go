// Package winguid handles GUIDs in the layout the Windows API and message
// compiler headers use.
package winguid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// https://learn.microsoft.com/en-us/windows/win32/api/guiddef/ns-guiddef-guid
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

var ErrBadFormat = errors.New("bad GUID format")

// namespace for name based provider GUIDs
var providerNamespace = uuid.MustParse("b0c3f9a6-4e5c-4f1e-9d6b-03a8c6d0e1f2")

var (
	guidRegex        = regexp.MustCompile(`^(\{[A-F0-9]{8}(-[A-F0-9]{4}){3}-[A-F0-9]{12}\}|[A-F0-9]{8}(-[A-F0-9]{4}){3}-[A-F0-9]{12})$`)
	initializerRegex = regexp.MustCompile(`^\{\s*(0x[0-9a-fA-F]{1,8})\s*,\s*(0x[0-9a-fA-F]{1,4})\s*,\s*(0x[0-9a-fA-F]{1,4})\s*,\s*\{([^}]*)\}\s*\}$`)
)

func MustParse(sguid string) GUID {
	guid, err := Parse(sguid)
	if err != nil {
		panic(err)
	}
	return guid
}

// Parse reads the registry form, with or without curly brackets.
func Parse(guid string) (GUID, error) {
	var out GUID

	guid = strings.ToUpper(strings.TrimSpace(guid))
	if !guidRegex.MatchString(guid) {
		return out, fmt.Errorf("%w: %q", ErrBadFormat, guid)
	}

	digitsGroups := strings.Split(strings.Trim(guid, "{}"), "-")

	// the regexp guarantees every group is valid hex of the right width
	data1, _ := strconv.ParseUint(digitsGroups[0], 16, 32)
	data2, _ := strconv.ParseUint(digitsGroups[1], 16, 16)
	data3, _ := strconv.ParseUint(digitsGroups[2], 16, 16)
	data4hi, _ := strconv.ParseUint(digitsGroups[3], 16, 16)
	data4lo, _ := strconv.ParseUint(digitsGroups[4], 16, 64)

	out.Data1 = uint32(data1)
	out.Data2 = uint16(data2)
	out.Data3 = uint16(data3)
	out.Data4[0] = uint8(data4hi >> 8)
	out.Data4[1] = uint8(data4hi & 0xff)
	for i := 0; i < 6; i++ {
		out.Data4[2+i] = uint8(data4lo >> (40 - 8*uint(i)))
	}

	return out, nil
}

// ParseInitializer reads the C initializer form found in generated headers,
// e.g. {0xcf27f07f, 0x7013, 0x483a, {0xbc, 0x74, 0x97, 0xa0, 0xf6, 0xaa, 0x32, 0xfc}}.
func ParseInitializer(s string) (GUID, error) {
	var out GUID

	m := initializerRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return out, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}

	data1, err := strconv.ParseUint(m[1], 0, 32)
	if err != nil {
		return out, err
	}
	data2, err := strconv.ParseUint(m[2], 0, 16)
	if err != nil {
		return out, err
	}
	data3, err := strconv.ParseUint(m[3], 0, 16)
	if err != nil {
		return out, err
	}

	bytes := strings.Split(m[4], ",")
	if len(bytes) != 8 {
		return out, fmt.Errorf("%w: expected 8 trailing bytes, got %d", ErrBadFormat, len(bytes))
	}
	for i, b := range bytes {
		v, err := strconv.ParseUint(strings.TrimSpace(b), 0, 8)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}
		out.Data4[i] = uint8(v)
	}

	out.Data1 = uint32(data1)
	out.Data2 = uint16(data2)
	out.Data3 = uint16(data3)
	return out, nil
}

// FromUUID converts RFC 4122 byte order into the mixed-endian GUID layout.
func FromUUID(u uuid.UUID) GUID {
	var g GUID
	g.Data1 = uint32(u[0])<<24 | uint32(u[1])<<16 | uint32(u[2])<<8 | uint32(u[3])
	g.Data2 = uint16(u[4])<<8 | uint16(u[5])
	g.Data3 = uint16(u[6])<<8 | uint16(u[7])
	copy(g.Data4[:], u[8:])
	return g
}

// New returns a random GUID.
func New() GUID {
	return FromUUID(uuid.New())
}

// NewFromName returns the same GUID every time it is called with name.
func NewFromName(name string) GUID {
	return FromUUID(uuid.NewSHA1(providerNamespace, []byte(strings.ToLower(name))))
}

var nullGUID = GUID{}

func (g GUID) IsZero() bool {
	return g.Equals(nullGUID)
}

func (g GUID) String() string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		g.Data1,
		g.Data2,
		g.Data3,
		g.Data4[0], g.Data4[1],
		g.Data4[2], g.Data4[3], g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7],
	)
}

// Initializer formats g the way mc.exe writes it into headers.
func (g GUID) Initializer() string {
	return fmt.Sprintf("{0x%08x, 0x%04x, 0x%04x, {0x%02x, 0x%02x, 0x%02x, 0x%02x, 0x%02x, 0x%02x, 0x%02x, 0x%02x}}",
		g.Data1,
		g.Data2,
		g.Data3,
		g.Data4[0], g.Data4[1], g.Data4[2], g.Data4[3],
		g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7],
	)
}

func (g GUID) Equals(other GUID) bool {
	return g == other
}

func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
