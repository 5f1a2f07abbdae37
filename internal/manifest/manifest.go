// Package manifest builds instrumentation manifests that declare custom event
// channels, and reads back manifests and the headers generated from them.
package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/winguid"
	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

const (
	eventsNamespace = "http://schemas.microsoft.com/win/2004/08/events"

	DefaultName        = "CustomEventChannels"
	DefaultChannelType = "Operational"
	DefaultCulture     = "en-US"

	// MaxChannelsPerProvider is the number of channels a single provider can
	// own.
	MaxChannelsPerProvider = 8
	firstChannelValue      = 0x10
)

var (
	ErrEmptyProviderName  = errors.New("provider name is empty")
	ErrEmptyChannelName   = errors.New("channel name is empty")
	ErrDuplicateChannel   = errors.New("channel is defined more than once")
	ErrTooManyChannels    = fmt.Errorf("provider defines more than %d channels", MaxChannelsPerProvider)
	ErrInvalidChannelType = errors.New("channel type must be one of Admin, Operational, Analytic, Debug")
	ErrNoDefinitions      = errors.New("no channel definitions")
)

var channelTypes = []string{"Admin", "Operational", "Analytic", "Debug"}

// Options controls how Build lays out providers and channels.
type Options struct {
	// Name is the base name of the manifest, header and resource DLL.
	Name string
	// ResourceFile is used as resource, message and parameter file of every
	// provider. Defaults to %SystemRoot%\System32\<Name>.dll.
	ResourceFile string
	ChannelType  string
	Enabled      bool
	// MaxSize in bytes, 0 leaves the OS default.
	MaxSize int64
	// StableGUIDs derives the provider GUID from the provider name instead
	// of generating a random one.
	StableGUIDs bool
}

type Manifest struct {
	XMLName      xml.Name     `xml:"http://schemas.microsoft.com/win/2004/08/events instrumentationManifest"`
	Providers    []Provider   `xml:"instrumentation>events>provider"`
	Localization Localization `xml:"localization"`

	name string
}

type Provider struct {
	Name              string    `xml:"name,attr"`
	GUID              string    `xml:"guid,attr"`
	Symbol            string    `xml:"symbol,attr"`
	ResourceFileName  string    `xml:"resourceFileName,attr"`
	MessageFileName   string    `xml:"messageFileName,attr"`
	ParameterFileName string    `xml:"parameterFileName,attr,omitempty"`
	Channels          []Channel `xml:"channels>channel"`
}

type Channel struct {
	Name    string   `xml:"name,attr"`
	ChID    string   `xml:"chid,attr"`
	Symbol  string   `xml:"symbol,attr"`
	Type    string   `xml:"type,attr"`
	Enabled bool     `xml:"enabled,attr"`
	Value   int      `xml:"value,attr"`
	Logging *Logging `xml:"logging,omitempty"`
}

type Logging struct {
	MaxSize int64 `xml:"maxSize"`
}

type Localization struct {
	Resources []Resources `xml:"resources"`
}

type Resources struct {
	Culture     string      `xml:"culture,attr"`
	StringTable StringTable `xml:"stringTable"`
}

type StringTable struct {
	Strings []String `xml:"string"`
}

type String struct {
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.ResourceFile == "" {
		o.ResourceFile = `%SystemRoot%\System32\` + o.Name + ".dll"
	}
	if o.ChannelType == "" {
		o.ChannelType = DefaultChannelType
	}
	return o
}

func validChannelType(t string) (string, bool) {
	for _, ct := range channelTypes {
		if strings.EqualFold(ct, t) {
			return ct, true
		}
	}
	return "", false
}

// Build groups the definitions by provider, in the order the providers first
// appear, and numbers each provider's channels.
func Build(defs []welc.ChannelDefinition, opts Options) (*Manifest, error) {
	if len(defs) == 0 {
		return nil, ErrNoDefinitions
	}

	opts = opts.withDefaults()
	channelType, ok := validChannelType(opts.ChannelType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannelType, opts.ChannelType)
	}

	m := &Manifest{
		Localization: Localization{Resources: []Resources{{Culture: DefaultCulture}}},
		name:         opts.Name,
	}

	index := make(map[string]int)
	seen := make(map[string]bool)

	for i, def := range defs {
		providerName := strings.TrimSpace(def.ProviderName)
		channelName := strings.TrimSpace(def.ChannelName)
		if providerName == "" {
			return nil, fmt.Errorf("definition %d: %w", i, ErrEmptyProviderName)
		}
		if channelName == "" {
			return nil, fmt.Errorf("definition %d (%s): %w", i, providerName, ErrEmptyChannelName)
		}

		key := strings.ToLower(channelName)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChannel, channelName)
		}
		seen[key] = true

		pi, ok := index[strings.ToLower(providerName)]
		if !ok {
			m.Providers = append(m.Providers, newProvider(providerName, def.ProviderSymbol, opts))
			pi = len(m.Providers) - 1
			index[strings.ToLower(providerName)] = pi
		}
		p := &m.Providers[pi]
		if len(p.Channels) == MaxChannelsPerProvider {
			return nil, fmt.Errorf("%s: %w", providerName, ErrTooManyChannels)
		}

		symbol := def.ChannelSymbol
		if symbol == "" {
			symbol = Symbol(channelName)
		}
		ch := Channel{
			Name:    channelName,
			ChID:    symbol,
			Symbol:  symbol,
			Type:    channelType,
			Enabled: opts.Enabled,
			Value:   firstChannelValue + len(p.Channels),
		}
		if opts.MaxSize > 0 {
			ch.Logging = &Logging{MaxSize: opts.MaxSize}
		}
		p.Channels = append(p.Channels, ch)
	}

	return m, nil
}

func newProvider(name, symbol string, opts Options) Provider {
	guid := winguid.New()
	if opts.StableGUIDs {
		guid = winguid.NewFromName(name)
	}
	if symbol == "" {
		symbol = Symbol(name)
	}
	return Provider{
		Name:              name,
		GUID:              guid.String(),
		Symbol:            symbol,
		ResourceFileName:  opts.ResourceFile,
		MessageFileName:   opts.ResourceFile,
		ParameterFileName: opts.ResourceFile,
	}
}

// Name is the base name the manifest was built with, empty for decoded
// manifests.
func (m *Manifest) Name() string {
	return m.name
}

// Encode writes m as an indented instrumentation manifest.
func (m *Manifest) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads an instrumentation manifest.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Definitions flattens the manifest back into one definition per channel.
func (m *Manifest) Definitions() []welc.ChannelDefinition {
	defs := make([]welc.ChannelDefinition, 0)
	for _, p := range m.Providers {
		for _, ch := range p.Channels {
			defs = append(defs, welc.ChannelDefinition{
				ProviderName:   p.Name,
				ProviderSymbol: p.Symbol,
				ChannelName:    ch.Name,
				ChannelSymbol:  ch.Symbol,
			})
		}
	}
	return defs
}
