package particles

import (
	"testing"

	"github.com/jakebf/folio/internal/canvas"
)

func TestParseHSL(t *testing.T) {
	tests := []struct {
		token string
		want  canvas.RGB
		ok    bool
	}{
		{"0 0% 100%", canvas.RGB{R: 255, G: 255, B: 255}, true},
		{"0 0% 0%", canvas.RGB{}, true},
		{"0 100% 50%", canvas.RGB{R: 255}, true},
		{"120 100% 25%", canvas.RGB{G: 128}, true},
		{"220 70% 50%", canvas.RGB{R: 38, G: 98, B: 217}, true},
		{"  220   70%   50%  ", canvas.RGB{R: 38, G: 98, B: 217}, true},
		{"hsl(220, 70%, 50%)", canvas.White, false},
		{"", canvas.White, false},
		{"#ff0000", canvas.White, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseHSL(tt.token)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseHSL(%q) = %v, %v; want %v, %v", tt.token, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPaletteFromTokens(t *testing.T) {
	tokens := Tokens{
		Primary:         "0 100% 50%",
		Accent:          "240 100% 50%",
		MutedForeground: "0 0% 50%",
		Background:      "0 0% 0%",
	}
	red := canvas.RGB{R: 255}
	blue := canvas.RGB{B: 255}

	dark := PaletteFromTokens(tokens, true)
	if dark.Particle != red || dark.Aura != red || !dark.Dark {
		t.Errorf("dark palette = %+v", dark)
	}
	if dark.Line != (canvas.RGB{R: 128, G: 128, B: 128}) {
		t.Errorf("dark line = %v", dark.Line)
	}

	light := PaletteFromTokens(tokens, false)
	if light.Particle != red || light.Aura != blue || light.Dark {
		t.Errorf("light palette = %+v", light)
	}
}

func TestPaletteFallsBackToWhite(t *testing.T) {
	p := PaletteFromTokens(Tokens{Primary: "oops"}, true)
	if p.Particle != canvas.White || p.Line != canvas.White || p.Background != canvas.White {
		t.Errorf("palette = %+v, want white fallback", p)
	}
}
