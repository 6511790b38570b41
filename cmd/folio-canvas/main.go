//go:build ebiten

// Command folio-canvas shows the hero particle field in a desktop window
// instead of the terminal. It draws the same simulation with real pixels.
//
// Usage:
//
//	go run -tags ebiten ./cmd/folio-canvas [flags]
//
// Controls:
//
//	Mouse    - Move the cursor aura
//	T        - Toggle dark / light palette
//	M        - Toggle reduced motion
//	Q/Escape - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakebf/folio/internal/canvas"
	"github.com/jakebf/folio/internal/particles"
)

const (
	screenWidth  = 1024
	screenHeight = 640
)

var (
	reducedFlag = flag.Bool("reduced-motion", false, "start with drift disabled")
	lightFlag   = flag.Bool("light", false, "start with the light palette")
	maxFlag     = flag.Int("max-particles", 400, "particle cap (0 for none)")
	debugFlag   = flag.Bool("debug", false, "print particle count and FPS")
)

var errQuit = errors.New("quit requested")

// gradientRings is how many concentric discs approximate a radial gradient.
const gradientRings = 6

// imageSurface draws onto an ebiten image.
type imageSurface struct {
	dst        *ebiten.Image
	background canvas.RGB
}

func (s imageSurface) Clear() {
	s.dst.Fill(rgba(s.background, 1))
}

func (s imageSurface) Line(a, b canvas.Vec, c canvas.RGB, alpha float64) {
	vector.StrokeLine(s.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, rgba(c, alpha), true)
}

// Fill paints outer rings first so the brighter center lands on top.
func (s imageSurface) Fill(center canvas.Vec, radius float64, g canvas.Gradient) {
	if radius <= 0 {
		return
	}
	for i := gradientRings; i >= 1; i-- {
		r := radius * float64(i) / gradientRings
		a := g.AlphaAt(r)
		if a <= 0 {
			continue
		}
		vector.DrawFilledCircle(s.dst, float32(center.X), float32(center.Y), float32(r), rgba(g.Color, a/gradientRings*2), true)
	}
}

func rgba(c canvas.RGB, alpha float64) color.NRGBA {
	alpha = min(max(alpha, 0), 1)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha * 255)}
}

// fieldGame implements ebiten.Game around one particle field.
type fieldGame struct {
	field  *particles.Field
	dark   bool
	width  int
	height int
}

func newFieldGame(cfg particles.Config, dark, reduced bool) *fieldGame {
	f := particles.NewField(cfg, nil)
	f.SetPalette(particles.DefaultPalette(dark))
	f.SetReducedMotion(reduced)
	return &fieldGame{field: f, dark: dark}
}

func (g *fieldGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.dark = !g.dark
		g.field.SetPalette(particles.DefaultPalette(g.dark))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.field.SetReducedMotion(!g.field.ReducedMotion())
	}

	x, y := ebiten.CursorPosition()
	g.field.PointerMove(float64(x), float64(y))
	g.field.Step()
	return nil
}

func (g *fieldGame) Draw(screen *ebiten.Image) {
	g.field.Render(imageSurface{dst: screen, background: g.field.Palette().Background})
	if *debugFlag {
		ebitenutil.DebugPrintAt(screen, debugLine(g), 10, 10)
	}
}

// Layout resizes the field to the window; a resize regenerates particles.
func (g *fieldGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.field.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func debugLine(g *fieldGame) string {
	motion := "motion"
	if g.field.ReducedMotion() {
		motion = "reduced motion"
	}
	return fmt.Sprintf("%d particles  %.0f fps  %s", len(g.field.Particles()), ebiten.ActualFPS(), motion)
}

func main() {
	flag.Parse()

	cfg := particles.DefaultConfig()
	cfg.MaxParticles = *maxFlag
	game := newFieldGame(cfg, !*lightFlag, *reducedFlag)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("folio")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}
