package particles

import "math"

// Config tunes the field. Distances and sizes are in pixels; Density is the
// area in square pixels that yields one particle.
type Config struct {
	Density            float64 `mapstructure:"density" yaml:"density"`
	ConnectionDistance float64 `mapstructure:"connection_distance" yaml:"connection_distance"`
	AuraRadius         float64 `mapstructure:"aura_radius" yaml:"aura_radius"`
	DriftSpeed         float64 `mapstructure:"drift_speed" yaml:"drift_speed"`
	CursorSmoothing    float64 `mapstructure:"cursor_smoothing" yaml:"cursor_smoothing"`
	MinOpacity         float64 `mapstructure:"min_opacity" yaml:"min_opacity"`
	MaxOpacity         float64 `mapstructure:"max_opacity" yaml:"max_opacity"`
	BaseSize           float64 `mapstructure:"base_size" yaml:"base_size"`
	HoverSize          float64 `mapstructure:"hover_size" yaml:"hover_size"`
	LineOpacity        float64 `mapstructure:"line_opacity" yaml:"line_opacity"`
	Attraction         float64 `mapstructure:"attraction" yaml:"attraction"`
	Easing             float64 `mapstructure:"easing" yaml:"easing"`

	// MaxParticles caps the particle count when positive. The connection
	// pass is quadratic in the count.
	MaxParticles int `mapstructure:"max_particles" yaml:"max_particles"`
}

// MinDensity is the smallest accepted Density. Denser fields are too slow to
// link every frame.
const MinDensity = 1000

// maxCount bounds Count before the float is converted.
const maxCount = 1 << 20

func DefaultConfig() Config {
	return Config{
		Density:            15000,
		ConnectionDistance: 150,
		AuraRadius:         200,
		DriftSpeed:         0.2,
		CursorSmoothing:    0.15,
		MinOpacity:         0.2,
		MaxOpacity:         0.8,
		BaseSize:           2,
		HoverSize:          4,
		LineOpacity:        0.15,
		Attraction:         0.5,
		Easing:             0.1,
	}
}

// Count returns how many particles a w x h viewport holds.
func (c Config) Count(w, h float64) int {
	if w <= 0 || h <= 0 || c.Density <= 0 {
		return 0
	}
	f := w * h / c.Density
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	n := maxCount
	if f < maxCount {
		n = int(f)
	}
	if c.MaxParticles > 0 {
		n = min(n, c.MaxParticles)
	}
	return n
}

// Normalize returns c with unusable values replaced by their defaults:
// easing factors outside [0,1], inverted opacity or size bounds, and a
// Density below MinDensity.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if !(c.Density >= MinDensity) {
		c.Density = d.Density
	}
	if !(c.Easing >= 0 && c.Easing <= 1) {
		c.Easing = d.Easing
	}
	if !(c.CursorSmoothing >= 0 && c.CursorSmoothing <= 1) {
		c.CursorSmoothing = d.CursorSmoothing
	}
	if !(c.MinOpacity >= 0 && c.MinOpacity <= c.MaxOpacity && c.MaxOpacity <= 1) {
		c.MinOpacity, c.MaxOpacity = d.MinOpacity, d.MaxOpacity
	}
	if !(c.BaseSize >= 0 && c.BaseSize <= c.HoverSize) {
		c.BaseSize, c.HoverSize = d.BaseSize, d.HoverSize
	}
	if c.MaxParticles < 0 {
		c.MaxParticles = 0
	}
	return c
}
