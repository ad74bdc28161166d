package riffbox

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Style is a musical style drawn from a closed enumeration. Its value is the
// display name, which is also how it is persisted and indexed.
type Style string

const (
	StyleRock         Style = "Rock"
	StyleHardRock     Style = "Hard Rock"
	StyleMetal        Style = "Metal"
	StyleBlues        Style = "Blues"
	StyleJazz         Style = "Jazz"
	StyleFunk         Style = "Funk"
	StylePop          Style = "Pop"
	StyleCountryFolk  Style = "Country / Folk"
	StyleReggaeSka    Style = "Reggae / Ska"
	StyleAmbientPost  Style = "Ambient / Post-Rock"
	StyleNeoClassical Style = "Neo-Classical"
)

// Styles lists every known style in display order.
var Styles = []Style{
	StyleRock,
	StyleHardRock,
	StyleMetal,
	StyleBlues,
	StyleJazz,
	StyleFunk,
	StylePop,
	StyleCountryFolk,
	StyleReggaeSka,
	StyleAmbientPost,
	StyleNeoClassical,
}

// ParseStyle resolves a style by display name, ignoring case and
// surrounding whitespace.
func ParseStyle(name string) (Style, error) {
	name = strings.TrimSpace(name)
	for _, s := range Styles {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, name)
}

func (s Style) String() string { return string(s) }

func (s *Style) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decoding style: %w", err)
	}
	parsed, err := ParseStyle(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
