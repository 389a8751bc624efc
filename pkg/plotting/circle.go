package plotting

import (
	"maps"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultRadius is used when NewCircle is called without WithRadius.
const DefaultRadius = 5.0

// Patch is a shape that can be attached to an Axes.
type Patch interface {
	Kind() string
	Bounds() (min, max r2.Vec)
}

// CircleStyle holds the drawing options of a circle. Keys the backend
// does not know about travel in Extra untouched.
type CircleStyle struct {
	Color     string         `yaml:"color" toml:"color"`
	EdgeColor string         `yaml:"edge_color" toml:"edge_color"`
	FaceColor string         `yaml:"face_color" toml:"face_color"`
	LineWidth *float64       `yaml:"line_width" toml:"line_width"`
	Fill      *bool          `yaml:"fill" toml:"fill"`
	Alpha     *float64       `yaml:"alpha" toml:"alpha"`
	Label     string         `yaml:"label" toml:"label"`
	ZOrder    float64        `yaml:"zorder" toml:"zorder"`
	Extra     map[string]any `yaml:"extra" toml:"extra"`
}

// Filled reports whether the interior is painted. Defaults to true.
func (s CircleStyle) Filled() bool {
	return s.Fill == nil || *s.Fill
}

// Opacity returns Alpha, defaulting to 1.
func (s CircleStyle) Opacity() float64 {
	if s.Alpha == nil {
		return 1
	}
	return *s.Alpha
}

// Width returns LineWidth, defaulting to 1. Zero means no outline.
func (s CircleStyle) Width() float64 {
	if s.LineWidth == nil {
		return 1
	}
	return *s.LineWidth
}

// Edge returns the stroke colour: EdgeColor, else Color, else "black".
func (s CircleStyle) Edge() string {
	switch {
	case s.EdgeColor != "":
		return s.EdgeColor
	case s.Color != "":
		return s.Color
	}
	return "black"
}

// Face returns the fill colour: FaceColor, else Color, else "#1f77b4".
func (s CircleStyle) Face() string {
	switch {
	case s.FaceColor != "":
		return s.FaceColor
	case s.Color != "":
		return s.Color
	}
	return "#1f77b4"
}

func (s CircleStyle) validate() error {
	if w := s.Width(); !(w >= 0) || math.IsInf(w, 0) {
		return invalidf("line width must be a non-negative real, got %v", w)
	}
	if a := s.Opacity(); !(a >= 0 && a <= 1) {
		return invalidf("alpha must be in [0, 1], got %v", a)
	}
	return nil
}

func (s CircleStyle) clone() CircleStyle {
	out := s
	if s.Fill != nil {
		f := *s.Fill
		out.Fill = &f
	}
	if s.Alpha != nil {
		a := *s.Alpha
		out.Alpha = &a
	}
	if s.LineWidth != nil {
		w := *s.LineWidth
		out.LineWidth = &w
	}
	out.Extra = maps.Clone(s.Extra)
	return out
}

// CircleOption configures NewCircle.
type CircleOption func(*circleOptions)

type circleOptions struct {
	radius float64
	style  CircleStyle
}

// WithRadius sets the radius. It must be positive.
func WithRadius(r float64) CircleOption {
	return func(o *circleOptions) {
		o.radius = r
	}
}

// WithStyle replaces the whole style. Later options still apply on top.
func WithStyle(s CircleStyle) CircleOption {
	return func(o *circleOptions) {
		o.style = s.clone()
	}
}

// WithColor sets both edge and face colour.
func WithColor(c string) CircleOption {
	return func(o *circleOptions) {
		o.style.Color = c
	}
}

// WithLineWidth sets the stroke width in points. Zero disables the outline.
func WithLineWidth(w float64) CircleOption {
	return func(o *circleOptions) {
		o.style.LineWidth = &w
	}
}

// WithFill toggles interior painting.
func WithFill(fill bool) CircleOption {
	return func(o *circleOptions) {
		o.style.Fill = &fill
	}
}

// WithAlpha sets the opacity in [0, 1].
func WithAlpha(a float64) CircleOption {
	return func(o *circleOptions) {
		o.style.Alpha = &a
	}
}

// WithExtra forwards a backend-specific option verbatim.
func WithExtra(key string, value any) CircleOption {
	return func(o *circleOptions) {
		if o.style.Extra == nil {
			o.style.Extra = make(map[string]any)
		}
		o.style.Extra[key] = value
	}
}

// Circle describes a circular region to be drawn later. It is immutable.
type Circle struct {
	center r2.Vec
	radius float64
	style  CircleStyle
}

var _ Patch = (*Circle)(nil)

// NewCircle validates its inputs and returns a circle descriptor.
// Nothing is drawn until the circle is added to an Axes.
//
//	c, err := plotting.NewCircle([]float64{0, 0}, plotting.WithRadius(2.5))
func NewCircle(center any, opts ...CircleOption) (*Circle, error) {
	o := circleOptions{radius: DefaultRadius}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := AsPoint2(center)
	if err != nil {
		return nil, err
	}
	if !(o.radius > 0) || math.IsInf(o.radius, 0) {
		return nil, invalidf("radius must be a positive real, got %v", o.radius)
	}
	if err := o.style.validate(); err != nil {
		return nil, err
	}

	return &Circle{center: c, radius: o.radius, style: o.style}, nil
}

// Center returns the center coordinates.
func (c *Circle) Center() r2.Vec {
	return c.center
}

// Radius returns the radius.
func (c *Circle) Radius() float64 {
	return c.radius
}

// Style returns a copy of the drawing options.
func (c *Circle) Style() CircleStyle {
	return c.style.clone()
}

// Kind implements Patch.
func (c *Circle) Kind() string {
	return "circle"
}

// Bounds returns the axis-aligned bounding box.
func (c *Circle) Bounds() (min, max r2.Vec) {
	d := r2.Vec{X: c.radius, Y: c.radius}
	return r2.Sub(c.center, d), r2.Add(c.center, d)
}
