package particles

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jakebf/folio/internal/canvas"
)

type strokedLine struct {
	a, b  canvas.Vec
	c     canvas.RGB
	alpha float64
}

type filledDisc struct {
	center canvas.Vec
	radius float64
	g      canvas.Gradient
}

// recorder is a canvas.Surface that keeps every draw call.
type recorder struct {
	clears int
	lines  []strokedLine
	fills  []filledDisc
}

func (r *recorder) Clear() {
	r.clears++
	r.lines, r.fills = nil, nil
}

func (r *recorder) Line(a, b canvas.Vec, c canvas.RGB, alpha float64) {
	r.lines = append(r.lines, strokedLine{a, b, c, alpha})
}

func (r *recorder) Fill(center canvas.Vec, radius float64, g canvas.Gradient) {
	r.fills = append(r.fills, filledDisc{center, radius, g})
}

func newTestField(cfg Config) *Field {
	return NewField(cfg, rand.NewPCG(1, 2))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCount(t *testing.T) {
	capped := DefaultConfig()
	capped.MaxParticles = 50
	subnormal := capped
	subnormal.MaxParticles = 400
	subnormal.Density = 1e-320
	uncapped := DefaultConfig()
	uncapped.Density = 1e-320
	tests := []struct {
		name string
		cfg  Config
		w, h float64
		want int
	}{
		{"desktop", DefaultConfig(), 800, 600, 32},
		{"wide", DefaultConfig(), 1920, 1080, 138},
		{"mobile", DefaultConfig(), 375, 667, 16},
		{"tiny", DefaultConfig(), 100, 100, 0},
		{"zero width", DefaultConfig(), 0, 600, 0},
		{"negative", DefaultConfig(), -10, 600, 0},
		{"capped", capped, 1920, 1080, 50},
		{"under cap", capped, 800, 600, 32},
		{"no density", Config{}, 800, 600, 0},
		{"subnormal density", subnormal, 800, 600, 400},
		{"subnormal uncapped", uncapped, 800, 600, maxCount},
		{"nan density", Config{Density: math.NaN()}, 800, 600, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Count(tt.w, tt.h); got != tt.want {
				t.Errorf("Count(%v, %v) = %d, want %d", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	cfg := DefaultConfig()
	f := newTestField(cfg)
	f.Initialize(800, 600, false)

	ps := f.Particles()
	if len(ps) != 32 {
		t.Fatalf("particles = %d, want 32", len(ps))
	}
	moving := 0
	for i, p := range ps {
		if p.Position.X < 0 || p.Position.X > 800 || p.Position.Y < 0 || p.Position.Y > 600 {
			t.Errorf("particle %d out of bounds: %v", i, p.Position)
		}
		if math.Abs(p.Velocity.X) > cfg.DriftSpeed/2 || math.Abs(p.Velocity.Y) > cfg.DriftSpeed/2 {
			t.Errorf("particle %d velocity %v exceeds drift speed", i, p.Velocity)
		}
		if p.Velocity != (canvas.Vec{}) {
			moving++
		}
		if p.Size != cfg.BaseSize || p.Opacity != cfg.MinOpacity {
			t.Errorf("particle %d starts at size %v opacity %v", i, p.Size, p.Opacity)
		}
	}
	if moving == 0 {
		t.Error("no particle drifts")
	}
	if c := f.Cursor(); c.Raw != (canvas.Vec{X: 400, Y: 300}) || c.Smoothed != c.Raw {
		t.Errorf("cursor = %+v, want centered", c)
	}
}

func TestInitializeReducedMotion(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, true)
	for i, p := range f.Particles() {
		if p.Velocity != (canvas.Vec{}) {
			t.Errorf("particle %d velocity %v, want zero", i, p.Velocity)
		}
	}
}

func TestZeroArea(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(0, 0, false)
	if n := len(f.Particles()); n != 0 {
		t.Fatalf("particles = %d, want 0", n)
	}
	r := &recorder{}
	for range 3 {
		f.Tick(r)
	}
	if len(r.lines) != 0 || len(r.fills) != 0 {
		t.Errorf("empty field drew %d lines and %d fills", len(r.lines), len(r.fills))
	}
	if r.clears != 3 {
		t.Errorf("clears = %d, want 3", r.clears)
	}
}

func TestPointerMoveIsDeferred(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, false)
	before := f.Particles()
	f.PointerMove(10, 20)

	if c := f.Cursor(); c.Raw != (canvas.Vec{X: 10, Y: 20}) || c.Smoothed != (canvas.Vec{X: 400, Y: 300}) {
		t.Errorf("cursor after move = %+v", c)
	}
	after := f.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed before the next step", i)
		}
	}

	f.Step()
	want := canvas.Vec{X: 400 + (10-400)*0.15, Y: 300 + (20-300)*0.15}
	if got := f.Cursor().Smoothed; !approx(got.X, want.X) || !approx(got.Y, want.Y) {
		t.Errorf("smoothed = %v, want %v", got, want)
	}
}

func TestEasingStaysInBounds(t *testing.T) {
	checkEasingBounds(t, DefaultConfig())
}

func TestEasingStaysInBoundsWithBadConfig(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"easing above one", func(c *Config) { c.Easing = 1.8 }},
		{"negative easing", func(c *Config) { c.Easing = -0.5 }},
		{"smoothing above one", func(c *Config) { c.CursorSmoothing = 3 }},
		{"inverted opacity", func(c *Config) { c.MinOpacity, c.MaxOpacity = 0.9, 0.1 }},
		{"opacity above one", func(c *Config) { c.MaxOpacity = 4 }},
		{"inverted size", func(c *Config) { c.BaseSize, c.HoverSize = 6, 1 }},
		{"tiny density", func(c *Config) { c.Density = 1e-320 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			checkEasingBounds(t, cfg)
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := DefaultConfig().Normalize(); got != DefaultConfig() {
		t.Errorf("defaults changed by Normalize: %+v", got)
	}
	cfg := DefaultConfig()
	cfg.Easing = 1.8
	cfg.CursorSmoothing = math.NaN()
	cfg.MinOpacity, cfg.MaxOpacity = 0.9, 0.1
	cfg.BaseSize, cfg.HoverSize = 6, 1
	cfg.Density = 10
	cfg.MaxParticles = -3
	if got := cfg.Normalize(); got != DefaultConfig() {
		t.Errorf("Normalize = %+v, want defaults", got)
	}

	// Values in range are kept.
	cfg = DefaultConfig()
	cfg.Easing = 1
	cfg.MinOpacity, cfg.MaxOpacity = 0.5, 0.5
	cfg.Density = MinDensity
	if got := cfg.Normalize(); got != cfg {
		t.Errorf("Normalize = %+v, want %+v", got, cfg)
	}
}

func TestSetConfigNormalizes(t *testing.T) {
	f := newTestField(DefaultConfig())
	cfg := DefaultConfig()
	cfg.Easing = 2
	f.SetConfig(cfg)
	if got := f.Config().Easing; got != DefaultConfig().Easing {
		t.Errorf("Easing = %v, want default", got)
	}
}

// checkEasingBounds moves the pointer around a field built from cfg and
// fails if any particle leaves the normalized opacity or size range.
func checkEasingBounds(t *testing.T, cfg Config) {
	t.Helper()
	f := newTestField(cfg)
	cfg = f.Config()
	f.Initialize(800, 600, false)
	rng := rand.New(rand.NewPCG(3, 4))
	const eps = 1e-9

	for frame := range 600 {
		if frame%20 == 0 {
			f.PointerMove(rng.Float64()*800, rng.Float64()*600)
		}
		f.Step()
		for i, p := range f.Particles() {
			if p.Opacity < cfg.MinOpacity-eps || p.Opacity > cfg.MaxOpacity+eps {
				t.Fatalf("frame %d particle %d opacity %v out of range", frame, i, p.Opacity)
			}
			if p.Size < cfg.BaseSize-eps || p.Size > cfg.HoverSize+eps {
				t.Fatalf("frame %d particle %d size %v out of range", frame, i, p.Size)
			}
		}
	}
}

func TestEasingIsGradual(t *testing.T) {
	cfg := DefaultConfig()
	f := newTestField(cfg)
	f.Initialize(400, 400, false)
	f.particles = f.particles[:1]
	f.particles[0].Position = canvas.Vec{X: 200, Y: 200}
	f.particles[0].Velocity = canvas.Vec{}

	f.Step()
	p := f.Particles()[0]
	// The cursor sits on the particle, so the target is the maximum.
	if !approx(p.TargetOpacity, cfg.MaxOpacity) || !approx(p.TargetSize, cfg.HoverSize) {
		t.Fatalf("targets = %v/%v, want max", p.TargetOpacity, p.TargetSize)
	}
	wantOpacity := cfg.MinOpacity + (cfg.MaxOpacity-cfg.MinOpacity)*cfg.Easing
	if !approx(p.Opacity, wantOpacity) {
		t.Errorf("opacity after one frame = %v, want %v", p.Opacity, wantOpacity)
	}
}

func TestAttraction(t *testing.T) {
	cfg := DefaultConfig()
	f := newTestField(cfg)
	f.Initialize(800, 600, false)
	f.particles = f.particles[:2]
	f.particles[0] = Particle{Position: canvas.Vec{X: 300, Y: 300}, Size: 2, Opacity: 0.2}
	f.particles[1] = Particle{Position: canvas.Vec{X: 750, Y: 50}, Size: 2, Opacity: 0.2}

	f.Step()
	ps := f.Particles()
	// 100px from the cursor: force 0.5, pulled 0.25px to the right.
	if got := ps[0].Position.X; !approx(got, 300.25) {
		t.Errorf("near particle x = %v, want 300.25", got)
	}
	if want := 0.2 + 0.5*0.6; !approx(ps[0].TargetOpacity, want) {
		t.Errorf("near target opacity = %v, want %v", ps[0].TargetOpacity, want)
	}
	if ps[1].Position != (canvas.Vec{X: 750, Y: 50}) {
		t.Errorf("far particle moved to %v", ps[1].Position)
	}
	if ps[1].TargetOpacity != cfg.MinOpacity || ps[1].TargetSize != cfg.BaseSize {
		t.Errorf("far particle targets = %v/%v, want baseline", ps[1].TargetOpacity, ps[1].TargetSize)
	}
}

func TestWrap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuraRadius = 0
	f := newTestField(cfg)
	f.Initialize(800, 600, false)
	f.particles = f.particles[:2]
	f.particles[0].Position = canvas.Vec{X: 799.95, Y: 10}
	f.particles[0].Velocity = canvas.Vec{X: 0.1}
	f.particles[1].Position = canvas.Vec{X: 10, Y: 0.05}
	f.particles[1].Velocity = canvas.Vec{Y: -0.1}

	f.Step()
	ps := f.Particles()
	if ps[0].Position.X != 0 {
		t.Errorf("right edge wrap: x = %v, want 0", ps[0].Position.X)
	}
	if ps[1].Position.Y != 600 {
		t.Errorf("top edge wrap: y = %v, want 600", ps[1].Position.Y)
	}
}

func TestReducedMotionFreezesField(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, true)
	before := f.Particles()
	f.PointerMove(before[0].Position.X+1, before[0].Position.Y)
	for range 30 {
		f.Step()
	}
	after := f.Particles()
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("particle %d moved under reduced motion", i)
		}
		if after[i].TargetOpacity != f.cfg.MinOpacity {
			t.Errorf("particle %d highlighted under reduced motion", i)
		}
	}

	r := &recorder{}
	f.Render(r)
	for _, d := range r.fills {
		if d.radius == f.cfg.AuraRadius {
			t.Error("aura drawn under reduced motion")
		}
	}
}

func TestSetReducedMotionLive(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, false)
	f.SetReducedMotion(true)
	for i, p := range f.Particles() {
		if p.Velocity != (canvas.Vec{}) {
			t.Fatalf("particle %d still drifting", i)
		}
	}
	before := f.Particles()
	f.Step()
	for i, p := range f.Particles() {
		if p.Position != before[i].Position {
			t.Fatalf("particle %d moved on the first reduced frame", i)
		}
	}

	f.SetReducedMotion(false)
	moving := 0
	for _, p := range f.Particles() {
		if p.Velocity != (canvas.Vec{}) {
			moving++
		}
	}
	if moving == 0 {
		t.Error("drift did not resume")
	}
}

// Resizing from 800x600 to 400x300 mid-animation regenerates the particles
// for the new area and re-centers the cursor.
func TestResizeRegenerates(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, false)
	f.PointerMove(50, 50)
	for range 10 {
		f.Step()
	}

	f.Resize(400, 300)
	ps := f.Particles()
	if len(ps) != 8 {
		t.Fatalf("particles after resize = %d, want 8", len(ps))
	}
	for i, p := range ps {
		if p.Position.X > 400 || p.Position.Y > 300 {
			t.Errorf("particle %d outside the new viewport: %v", i, p.Position)
		}
		if p.Size != f.cfg.BaseSize || p.Opacity != f.cfg.MinOpacity {
			t.Errorf("particle %d kept eased state", i)
		}
	}
	center := canvas.Vec{X: 200, Y: 150}
	if c := f.Cursor(); c.Raw != center || c.Smoothed != center {
		t.Errorf("cursor = %+v, want %v", c, center)
	}
	if w, h := f.Size(); w != 400 || h != 300 {
		t.Errorf("Size = %vx%v", w, h)
	}
	if f.ReducedMotion() {
		t.Error("resize changed the motion preference")
	}
}

func TestRenderConnections(t *testing.T) {
	cfg := DefaultConfig()
	f := newTestField(cfg)
	f.Initialize(800, 600, false)
	f.particles = []Particle{
		{Position: canvas.Vec{X: 100, Y: 100}, Size: 2, Opacity: 0.2},
		{Position: canvas.Vec{X: 200, Y: 100}, Size: 2, Opacity: 0.2},
		{Position: canvas.Vec{X: 600, Y: 500}, Size: 2, Opacity: 0.2},
	}
	pal := DefaultPalette(true)
	f.SetPalette(pal)

	r := &recorder{}
	f.Render(r)
	if len(r.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(r.lines))
	}
	l := r.lines[0]
	if want := cfg.LineOpacity * (1 - 100.0/150); !approx(l.alpha, want) {
		t.Errorf("line alpha = %v, want %v", l.alpha, want)
	}
	if l.c != pal.Line {
		t.Errorf("line color = %v, want %v", l.c, pal.Line)
	}

	// Three particle glows and the aura.
	if len(r.fills) != 4 {
		t.Fatalf("fills = %d, want 4", len(r.fills))
	}
	glow := r.fills[0]
	if glow.g.Radius != 4 || glow.g.Color != pal.Particle || glow.g.Stops[0].Alpha != 0.2 {
		t.Errorf("glow = %+v", glow)
	}
	aura := r.fills[3]
	if aura.center != f.Cursor().Smoothed || aura.radius != cfg.AuraRadius || aura.g.Stops[0].Alpha != 0.25 {
		t.Errorf("aura = %+v", aura)
	}
}

func TestRenderLightTheme(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, false)
	f.particles = []Particle{{Position: canvas.Vec{X: 100, Y: 100}, Size: 2, Opacity: 0.5}}
	pal := DefaultPalette(false)
	f.SetPalette(pal)

	r := &recorder{}
	f.Render(r)
	if got := r.fills[0].g.Stops[0].Alpha; !approx(got, 0.3) {
		t.Errorf("light glow alpha = %v, want 0.3", got)
	}
	aura := r.fills[len(r.fills)-1]
	if aura.g.Color != pal.Aura || aura.g.Stops[0].Alpha != 0.15 {
		t.Errorf("light aura = %+v", aura.g)
	}
}

func TestPaletteDoesNotTouchPhysics(t *testing.T) {
	f := newTestField(DefaultConfig())
	f.Initialize(800, 600, false)
	before := f.Particles()
	f.SetPalette(DefaultPalette(false))
	after := f.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("palette change altered particle %d", i)
		}
	}
}
