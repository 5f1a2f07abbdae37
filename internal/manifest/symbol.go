package manifest

import (
	"strings"
	"unicode"
)

// Symbol turns a provider or channel name into a C identifier, e.g.
// "WEC-Basic/Domain Controllers" becomes "WEC_Basic_Domain_Controllers".
func Symbol(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}

	s := strings.Trim(sb.String(), "_")
	if s == "" {
		return "_"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
