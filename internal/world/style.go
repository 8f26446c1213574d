package world

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStyle = errors.New("unknown world style")

type Style int

const (
	StyleSciFi Style = iota
	StyleCyberZen
	StyleNoir
	StyleCartoon
	StyleFantasy
)

var styleNames = [...]string{
	StyleSciFi:    "sci-fi",
	StyleCyberZen: "cyber-zen",
	StyleNoir:     "noir",
	StyleCartoon:  "cartoon",
	StyleFantasy:  "fantasy",
}

func Styles() []Style {
	return []Style{StyleCyberZen, StyleNoir, StyleCartoon, StyleSciFi, StyleFantasy}
}

func ParseStyle(name string) (Style, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, styleName := range styleNames {
		if styleName == key {
			return Style(i), nil
		}
	}
	return StyleSciFi, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return styleNames[StyleSciFi]
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Palette is the presentation hint attached to a style: the card gradient
// and accent classes used by the web client, and a terminal colour.
type Palette struct {
	Gradient string `json:"gradient"`
	Accent   string `json:"accent"`
	Color    string `json:"color"`
}

// PaletteFor is total: out-of-range values get the sci-fi palette.
func PaletteFor(s Style) Palette {
	switch s {
	case StyleCyberZen:
		return Palette{
			Gradient: "from-cyan-400/20 via-purple-400/10 to-indigo-400/20",
			Accent:   "bg-gradient-to-r from-cyan-400 to-purple-400",
			Color:    "#22d3ee",
		}
	case StyleNoir:
		return Palette{
			Gradient: "from-slate-300/20 via-gray-300/10 to-zinc-400/20",
			Accent:   "bg-gradient-to-r from-slate-500 to-gray-600",
			Color:    "#64748b",
		}
	case StyleCartoon:
		return Palette{
			Gradient: "from-yellow-300/20 via-orange-200/10 to-pink-300/20",
			Accent:   "bg-gradient-to-r from-yellow-400 to-orange-400",
			Color:    "#facc15",
		}
	case StyleFantasy:
		return Palette{
			Gradient: "from-emerald-400/20 via-teal-300/10 to-cyan-400/20",
			Accent:   "bg-gradient-to-r from-emerald-400 to-teal-500",
			Color:    "#34d399",
		}
	default:
		return Palette{
			Gradient: "from-blue-400/20 via-indigo-300/10 to-violet-400/20",
			Accent:   "bg-gradient-to-r from-blue-500 to-indigo-500",
			Color:    "#3b82f6",
		}
	}
}
