// Package particles simulates a field of drifting points that are drawn
// toward a smoothed pointer, linked to their neighbours, and lit by a glow
// around the cursor.
//
// Simulation and drawing are separate: Step advances the state by one frame
// and Render draws the current state onto a canvas.Surface.
package particles

import (
	"math/rand/v2"

	"github.com/jakebf/folio/internal/canvas"
)

// Particle is a snapshot of one point in the field.
type Particle struct {
	Position      canvas.Vec
	Velocity      canvas.Vec
	Size          float64
	Opacity       float64
	TargetSize    float64
	TargetOpacity float64
}

// Cursor holds the last pointer position and the eased position the field
// reacts to.
type Cursor struct {
	Raw      canvas.Vec
	Smoothed canvas.Vec
}

// Field owns the particles of one mounted background. It is not safe for
// concurrent use; the host drives it from a single goroutine.
type Field struct {
	cfg     Config
	rng     *rand.Rand
	palette Palette

	width, height float64
	reduced       bool
	particles     []Particle
	cursor        Cursor
}

// NewField returns an empty field. A nil src seeds from the runtime's
// random source.
func NewField(cfg Config, src rand.Source) *Field {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Field{
		cfg:     cfg.Normalize(),
		rng:     rand.New(src),
		palette: DefaultPalette(true),
	}
}

func (f *Field) Config() Config { return f.cfg }

// SetConfig swaps tuning values. Particle count changes take effect on the
// next Resize.
func (f *Field) SetConfig(cfg Config) { f.cfg = cfg.Normalize() }

// Initialize regenerates the particle set for a w x h viewport and centers
// the cursor.
func (f *Field) Initialize(w, h float64, reducedMotion bool) {
	f.width, f.height = max(w, 0), max(h, 0)
	f.reduced = reducedMotion

	n := f.cfg.Count(f.width, f.height)
	f.particles = make([]Particle, n)
	for i := range f.particles {
		p := &f.particles[i]
		p.Position = canvas.Vec{X: f.rng.Float64() * f.width, Y: f.rng.Float64() * f.height}
		if !reducedMotion {
			p.Velocity = f.drift()
		}
		p.Size, p.TargetSize = f.cfg.BaseSize, f.cfg.BaseSize
		p.Opacity, p.TargetOpacity = f.cfg.MinOpacity, f.cfg.MinOpacity
	}

	center := canvas.Vec{X: f.width / 2, Y: f.height / 2}
	f.cursor = Cursor{Raw: center, Smoothed: center}
}

func (f *Field) drift() canvas.Vec {
	return canvas.Vec{
		X: (f.rng.Float64() - 0.5) * f.cfg.DriftSpeed,
		Y: (f.rng.Float64() - 0.5) * f.cfg.DriftSpeed,
	}
}

// Resize rebuilds the field for new viewport dimensions.
func (f *Field) Resize(w, h float64) {
	f.Initialize(w, h, f.reduced)
}

// PointerMove records the pointer. The field reacts on the next Step.
func (f *Field) PointerMove(x, y float64) {
	f.cursor.Raw = canvas.Vec{X: x, Y: y}
}

func (f *Field) SetPalette(p Palette) { f.palette = p }

func (f *Field) Palette() Palette { return f.palette }

// SetReducedMotion stops or resumes drift. The flag is read at the start of
// every Step.
func (f *Field) SetReducedMotion(on bool) {
	if on == f.reduced {
		return
	}
	f.reduced = on
	for i := range f.particles {
		if on {
			f.particles[i].Velocity = canvas.Vec{}
		} else {
			f.particles[i].Velocity = f.drift()
		}
	}
}

func (f *Field) ReducedMotion() bool { return f.reduced }

func (f *Field) Size() (w, h float64) { return f.width, f.height }

func (f *Field) Cursor() Cursor { return f.cursor }

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Step advances the simulation by one frame. Every particle sees the same
// cursor position.
func (f *Field) Step() {
	reduced := f.reduced
	c := &f.cursor
	c.Smoothed.X = lerp(c.Smoothed.X, c.Raw.X, f.cfg.CursorSmoothing)
	c.Smoothed.Y = lerp(c.Smoothed.Y, c.Raw.Y, f.cfg.CursorSmoothing)
	cursor := c.Smoothed

	for i := range f.particles {
		p := &f.particles[i]
		if !reduced {
			p.Position.X += p.Velocity.X
			p.Position.Y += p.Velocity.Y
			p.Position.X = wrap(p.Position.X, f.width)
			p.Position.Y = wrap(p.Position.Y, f.height)
		}

		d := cursor.Dist(p.Position)
		if d < f.cfg.AuraRadius && !reduced {
			force := (f.cfg.AuraRadius - d) / f.cfg.AuraRadius
			if d > 0 {
				pull := force * f.cfg.Attraction
				p.Position.X += (cursor.X - p.Position.X) / d * pull
				p.Position.Y += (cursor.Y - p.Position.Y) / d * pull
			}
			p.TargetOpacity = min(f.cfg.MaxOpacity, f.cfg.MinOpacity+force*(f.cfg.MaxOpacity-f.cfg.MinOpacity))
			p.TargetSize = f.cfg.BaseSize + force*(f.cfg.HoverSize-f.cfg.BaseSize)
		} else {
			p.TargetOpacity = f.cfg.MinOpacity
			p.TargetSize = f.cfg.BaseSize
		}

		p.Opacity = lerp(p.Opacity, p.TargetOpacity, f.cfg.Easing)
		p.Size = lerp(p.Size, p.TargetSize, f.cfg.Easing)
	}
}

// wrap moves a coordinate that left [0, limit] to the opposite edge.
func wrap(v, limit float64) float64 {
	switch {
	case v < 0:
		return limit
	case v > limit:
		return 0
	}
	return v
}

// Render draws connections, particle glows and the cursor aura onto s.
func (f *Field) Render(s canvas.Surface) {
	s.Clear()
	if len(f.particles) == 0 {
		return
	}

	maxDist := f.cfg.ConnectionDistance
	for i := range f.particles {
		a := f.particles[i].Position
		for j := i + 1; j < len(f.particles); j++ {
			b := f.particles[j].Position
			d := a.Dist(b)
			if d < maxDist {
				s.Line(a, b, f.palette.Line, f.cfg.LineOpacity*(1-d/maxDist))
			}
		}
	}

	for _, p := range f.particles {
		alpha := p.Opacity
		if !f.palette.Dark {
			alpha *= 0.6
		}
		s.Fill(p.Position, p.Size, canvas.Gradient{
			Radius: p.Size * 2,
			Color:  f.palette.Particle,
			Stops:  []canvas.Stop{{Offset: 0, Alpha: alpha}, {Offset: 0.5, Alpha: 0.3}, {Offset: 1, Alpha: 0}},
		})
	}

	if f.reduced {
		return
	}
	core := 0.15
	if f.palette.Dark {
		core = 0.25
	}
	s.Fill(f.cursor.Smoothed, f.cfg.AuraRadius, canvas.Gradient{
		Radius: f.cfg.AuraRadius,
		Color:  f.palette.Aura,
		Stops: []canvas.Stop{
			{Offset: 0, Alpha: core},
			{Offset: 0.3, Alpha: 0.1},
			{Offset: 0.6, Alpha: 0.05},
			{Offset: 1, Alpha: 0},
		},
	})
}

// Tick steps the simulation and draws the result.
func (f *Field) Tick(s canvas.Surface) {
	f.Step()
	f.Render(s)
}
