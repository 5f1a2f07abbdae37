package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

func TestLoadDefinitionsYAML(t *testing.T) {
	doc := `
channels:
  - provider: Corp-WEC-Basic
    provider_symbol: WEC_EVENTS_Basic
    channel: WEC-Basic/Domain Controllers
    channel_symbol: WEC_Basic_Domain_Controllers
  - provider: Corp-WEC-Basic
    channel: WEC-Basic/Clients
`
	defs, err := LoadDefinitions(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []welc.ChannelDefinition{
		{ProviderName: "Corp-WEC-Basic", ProviderSymbol: "WEC_EVENTS_Basic", ChannelName: "WEC-Basic/Domain Controllers", ChannelSymbol: "WEC_Basic_Domain_Controllers"},
		{ProviderName: "Corp-WEC-Basic", ChannelName: "WEC-Basic/Clients"},
	}, defs)
}

func TestLoadDefinitionsJSON(t *testing.T) {
	doc := `{"channels": [{"provider": "P", "channel": "P/Ops"}]}`
	defs, err := LoadDefinitions(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "P/Ops", defs[0].ChannelName)
}

func TestLoadDefinitionsEmpty(t *testing.T) {
	_, err := LoadDefinitions(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoDefinitions)

	_, err = LoadDefinitions(strings.NewReader("channels: []\n"))
	assert.ErrorIs(t, err, ErrNoDefinitions)
}

func TestLoadDefinitionsMalformed(t *testing.T) {
	_, err := LoadDefinitions(strings.NewReader("channels: {provider: [\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDefinitions)
}

func TestRegistrationArgs(t *testing.T) {
	assert.Equal(t, []string{"im", `C:\m.man`}, installArgs(`C:\m.man`, ""))
	assert.Equal(t,
		[]string{"im", `C:\m.man`, `/rf:C:\m.dll`, `/mf:C:\m.dll`, `/pf:C:\m.dll`},
		installArgs(`C:\m.man`, `C:\m.dll`))
	assert.Equal(t, []string{"um", `C:\m.man`}, uninstallArgs(`C:\m.man`))
}

func TestWriteDefinitionsRoundTrip(t *testing.T) {
	defs := []welc.ChannelDefinition{
		{ProviderName: "Corp-WEC-Basic", ProviderSymbol: "WEC_EVENTS_Basic", ChannelName: "WEC-Basic/Clients", ChannelSymbol: "WEC_Basic_Clients"},
		{ProviderName: "Corp-WEC-Basic", ChannelName: "WEC-Basic/Servers"},
	}
	var sb strings.Builder
	require.NoError(t, WriteDefinitions(&sb, defs))
	assert.Contains(t, sb.String(), "provider: Corp-WEC-Basic")
	assert.NotContains(t, sb.String(), "channel_symbol: \"\"")

	got, err := LoadDefinitions(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, defs, got)
}
