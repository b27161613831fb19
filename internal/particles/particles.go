// Package particles simulates the decorative particle field drawn behind
// every page.
package particles

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
)

// Shape is how a particle is drawn.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeDiamond
)

var shapeNames = [...]string{"circle", "square", "diamond"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the field parameters. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	BaseCount          int      `json:"baseCount"`
	MobileCount        int      `json:"mobileCount"`
	MobileBreakpoint   float64  `json:"mobileBreakpoint"`
	Density            float64  `json:"density"`
	ConnectionDistance float64  `json:"connectionDistance"`
	PointerRadius      float64  `json:"pointerRadius"`
	MaxPull            float64  `json:"maxPull"`
	Speed              float64  `json:"speed"`
	MinRadius          float64  `json:"minRadius"`
	RadiusRange        float64  `json:"radiusRange"`
	LinkOpacity        float64  `json:"linkOpacity"`
	PointerBoost       float64  `json:"pointerBoost"`
	LineWidth          float64  `json:"lineWidth"`
	Palette            []string `json:"palette"`
}

// DefaultConfig returns the stock field parameters.
func DefaultConfig() Config {
	return Config{
		BaseCount:          150,
		MobileCount:        70,
		MobileBreakpoint:   768,
		Density:            1.0,
		ConnectionDistance: 160,
		PointerRadius:      180,
		MaxPull:            1.0,
		Speed:              0.3,
		MinRadius:          1.5,
		RadiusRange:        1.2,
		LinkOpacity:        0.2,
		PointerBoost:       1.5,
		LineWidth:          0.8,
		Palette: []string{
			"rgba(59, 130, 246, 0.6)",
			"rgba(147, 197, 253, 0.4)",
			"rgba(14, 165, 233, 0.7)",
			"rgba(6, 182, 212, 0.6)",
			"rgba(2, 132, 199, 0.65)",
		},
	}
}

// Count returns the population for a viewport of the given width.
func (c Config) Count(width float64) int {
	base := c.BaseCount
	if width < c.MobileBreakpoint {
		base = c.MobileCount
	}
	n := int(math.Floor(float64(base) * c.Density))
	return max(n, 0)
}

// Particle is one moving point.
type Particle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"r"`
	Color  string  `json:"color"`
	Shape  Shape   `json:"shape"`
}

// Link is a line between two particles closer than the connection
// distance. A and B index into Particles.
type Link struct {
	A       int     `json:"a"`
	B       int     `json:"b"`
	Opacity float64 `json:"opacity"`
	ColorA  string  `json:"colorA"`
	ColorB  string  `json:"colorB"`
}

// Field is a particle population inside a width by height viewport. It is
// not safe for concurrent use.
type Field struct {
	cfg       Config
	width     float64
	height    float64
	particles []Particle

	pointerX, pointerY float64
	pointerActive      bool
}

// New seeds a field for the viewport. rng drives all randomness; pass a
// seeded source for reproducible frames.
func New(cfg Config, width, height float64, rng *rand.Rand) *Field {
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultConfig().Palette
	}
	f := &Field{cfg: cfg, width: math.Max(width, 0), height: math.Max(height, 0)}

	n := cfg.Count(width)
	f.particles = make([]Particle, n)
	for i := range f.particles {
		f.particles[i] = Particle{
			X:      rng.Float64() * f.width,
			Y:      rng.Float64() * f.height,
			VX:     (rng.Float64() - 0.5) * cfg.Speed,
			VY:     (rng.Float64() - 0.5) * cfg.Speed,
			Radius: cfg.MinRadius + rng.Float64()*cfg.RadiusRange,
			Color:  cfg.Palette[rng.IntN(len(cfg.Palette))],
			Shape:  Shape(rng.IntN(len(shapeNames))),
		}
	}
	return f
}

// Config returns the field parameters.
func (f *Field) Config() Config { return f.cfg }

// Size returns the viewport extents.
func (f *Field) Size() (width, height float64) { return f.width, f.height }

// Particles returns a copy of the population.
func (f *Field) Particles() []Particle {
	return append([]Particle(nil), f.particles...)
}

// SetPointer activates attraction toward (x, y).
func (f *Field) SetPointer(x, y float64) {
	f.pointerX, f.pointerY = x, y
	f.pointerActive = true
}

// ClearPointer disables attraction.
func (f *Field) ClearPointer() {
	f.pointerActive = false
}

// Step advances every particle by one frame.
func (f *Field) Step() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X += p.VX
		p.Y += p.VY

		if f.pointerActive {
			dx := f.pointerX - p.X
			dy := f.pointerY - p.Y
			d := math.Hypot(dx, dy)
			if d > 0 && d < f.cfg.PointerRadius {
				force := (f.cfg.PointerRadius - d) / f.cfg.PointerRadius * f.cfg.MaxPull
				p.X += dx / d * force
				p.Y += dy / d * force
			}
		}

		f.bounce(p)
	}
}

// bounce reflects velocity on an edge and clamps the particle inside.
func (f *Field) bounce(p *Particle) {
	if p.X <= 0 || p.X >= f.width {
		p.VX = -p.VX
		p.X = clamp(p.X, 0, f.width)
	}
	if p.Y <= 0 || p.Y >= f.height {
		p.VY = -p.VY
		p.Y = clamp(p.Y, 0, f.height)
	}
}

// Resize changes the viewport and pulls particles back inside.
func (f *Field) Resize(width, height float64) {
	f.width = math.Max(width, 0)
	f.height = math.Max(height, 0)
	for i := range f.particles {
		p := &f.particles[i]
		p.X = clamp(p.X, 0, f.width)
		p.Y = clamp(p.Y, 0, f.height)
	}
}

// Links returns every pair closer than the connection distance.
func (f *Field) Links() []Link {
	var links []Link
	maxD := f.cfg.ConnectionDistance
	for i := range f.particles {
		a := f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			b := f.particles[j]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d >= maxD {
				continue
			}
			opacity := f.cfg.LinkOpacity * (1 - d/maxD)
			if f.pointerActive {
				mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
				if math.Hypot(f.pointerX-mx, f.pointerY-my) < f.cfg.PointerRadius {
					opacity *= f.cfg.PointerBoost
				}
			}
			links = append(links, Link{A: i, B: j, Opacity: opacity, ColorA: a.Color, ColorB: b.Color})
		}
	}
	return links
}

var rgbaPattern = regexp.MustCompile(`(?i)rgba?\((\d+),\s*(\d+),\s*(\d+)(?:,\s*[\d.]+)?\)`)

// WithAlpha replaces the alpha channel of an rgb()/rgba() color. Other
// color forms are returned unchanged.
func WithAlpha(color string, alpha float64) string {
	m := rgbaPattern.FindStringSubmatch(color)
	if m == nil {
		return color
	}
	return fmt.Sprintf("rgba(%s, %s, %s, %.3f)", m[1], m[2], m[3], alpha)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
