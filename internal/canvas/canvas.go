// Package canvas holds the drawing vocabulary shared by the particle field
// and its rendering backends: points, colors, radial gradients and the
// Surface interface a backend implements.
package canvas

import "math"

// Vec is a point or offset in pixel space.
type Vec struct {
	X, Y float64
}

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// RGB is an opaque 8-bit color. Opacity travels separately so a palette
// color can be reused at any alpha.
type RGB struct {
	R, G, B uint8
}

var White = RGB{255, 255, 255}

// Blend composites c over dst with alpha a in [0,1].
func Blend(dst, c RGB, a float64) RGB {
	a = clamp01(a)
	mix := func(d, s uint8) uint8 {
		return uint8(math.Round(float64(d)*(1-a) + float64(s)*a))
	}
	return RGB{mix(dst.R, c.R), mix(dst.G, c.G), mix(dst.B, c.B)}
}

// Stop is one color stop of a radial gradient. Offset is a fraction of the
// gradient radius.
type Stop struct {
	Offset float64
	Alpha  float64
}

// Gradient is a single-color radial gradient whose alpha is interpolated
// linearly between stops and is zero past the last stop.
type Gradient struct {
	Radius float64
	Color  RGB
	Stops  []Stop
}

// AlphaAt returns the gradient alpha at distance d from its center.
func (g Gradient) AlphaAt(d float64) float64 {
	if len(g.Stops) == 0 || g.Radius <= 0 {
		return 0
	}
	t := d / g.Radius
	if t > 1 {
		return 0
	}
	if t <= g.Stops[0].Offset {
		return g.Stops[0].Alpha
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Alpha
			}
			return a.Alpha + (b.Alpha-a.Alpha)*(t-a.Offset)/span
		}
	}
	return g.Stops[len(g.Stops)-1].Alpha
}

// Surface is anything the particle field can draw on.
type Surface interface {
	// Clear resets the surface to its background.
	Clear()
	// Line strokes a one pixel line from a to b.
	Line(a, b Vec, c RGB, alpha float64)
	// Fill paints the disc of the given radius around center with g.
	Fill(center Vec, radius float64, g Gradient)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
