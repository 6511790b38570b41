package particles

import (
	"regexp"
	"strconv"

	"github.com/jakebf/folio/internal/canvas"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Tokens are theme colors in CSS custom-property form: "H S% L%".
type Tokens struct {
	Primary         string `mapstructure:"primary" yaml:"primary"`
	Accent          string `mapstructure:"accent" yaml:"accent"`
	MutedForeground string `mapstructure:"muted_foreground" yaml:"muted_foreground"`
	Background      string `mapstructure:"background" yaml:"background"`
}

var (
	DarkTokens = Tokens{
		Primary:         "217 91% 60%",
		Accent:          "160 84% 39%",
		MutedForeground: "215 20% 65%",
		Background:      "222 47% 11%",
	}
	LightTokens = Tokens{
		Primary:         "221 83% 53%",
		Accent:          "160 84% 39%",
		MutedForeground: "215 16% 47%",
		Background:      "0 0% 100%",
	}
)

// Palette is the set of colors the field draws with.
type Palette struct {
	Particle   canvas.RGB
	Line       canvas.RGB
	Aura       canvas.RGB
	Background canvas.RGB
	Dark       bool
}

var hslPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)%\s+(\d+(?:\.\d+)?)%`)

// ParseHSL converts an "H S% L%" token. Unparsable tokens yield white and
// false.
func ParseHSL(token string) (canvas.RGB, bool) {
	m := hslPattern.FindStringSubmatch(token)
	if m == nil {
		return canvas.White, false
	}
	h, _ := strconv.ParseFloat(m[1], 64)
	s, _ := strconv.ParseFloat(m[2], 64)
	l, _ := strconv.ParseFloat(m[3], 64)
	r, g, b := colorful.Hsl(h, s/100, l/100).Clamped().RGB255()
	return canvas.RGB{R: r, G: g, B: b}, true
}

func color(token string) canvas.RGB {
	c, _ := ParseHSL(token)
	return c
}

// PaletteFromTokens derives the field colors for a theme. Light themes use
// the accent color for the cursor aura.
func PaletteFromTokens(t Tokens, dark bool) Palette {
	p := Palette{
		Particle:   color(t.Primary),
		Line:       color(t.MutedForeground),
		Aura:       color(t.Primary),
		Background: color(t.Background),
		Dark:       dark,
	}
	if !dark {
		p.Aura = color(t.Accent)
	}
	return p
}

// DefaultPalette is the built-in palette for the dark or light theme.
func DefaultPalette(dark bool) Palette {
	if dark {
		return PaletteFromTokens(DarkTokens, true)
	}
	return PaletteFromTokens(LightTokens, false)
}
