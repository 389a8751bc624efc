package plotting

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Figure is a drawing surface owned by the caller. Its axes share its
// lifetime: once Close is called every Axes of the figure is released.
type Figure struct {
	mu      sync.Mutex
	opts    FigureOptions
	backend string
	surface Surface
	axes    []*Axes
	closed  bool
}

var _ io.Closer = (*Figure)(nil)

// NewFigure allocates a figure with no axes.
//
//	fig, err := plotting.NewFigure(plotting.WithFigSize(4, 4))
func NewFigure(opts ...FigureOption) (*Figure, error) {
	o := defaultFigureOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	if err := o.checkPixels(); err != nil {
		return nil, err
	}
	w, h := o.pixels()

	b, err := lookupBackend(o.Backend)
	if err != nil {
		return nil, err
	}

	surface, err := b.NewSurface(SurfaceSpec{
		Width:     w,
		Height:    h,
		DPI:       o.DPI,
		FaceColor: o.FaceColor,
		Extra:     maps.Clone(o.Extra),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrEnvironment) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: backend %s: %w", ErrEnvironment, b.Name(), err)
	}

	Logger().Debug("figure allocated",
		zap.String("backend", b.Name()),
		zap.Int("width", w),
		zap.Int("height", h))

	return &Figure{opts: o, backend: b.Name(), surface: surface}, nil
}

// Subplots allocates a figure together with its regions and returns the
// top-left one. With a single-cell layout (the default) that is the only
// region; for larger grids use Figure.Axes or SubplotGrid.
func Subplots(opts ...SubplotsOption) (*Figure, *Axes, error) {
	fig, grid, err := SubplotGrid(opts...)
	if err != nil {
		return nil, nil, err
	}
	return fig, grid.axes[0], nil
}

// SubplotGrid allocates a figure with an NRows x NCols grid of regions.
// On failure nothing is left allocated.
func SubplotGrid(opts ...SubplotsOption) (*Figure, *AxesGrid, error) {
	o := SubplotsOptions{Layout: Layout{NRows: 1, NCols: 1}}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Layout.validate(); err != nil {
		return nil, nil, err
	}

	fig, err := NewFigure(o.Figure...)
	if err != nil {
		return nil, nil, err
	}

	grid, err := fig.addGrid(o.Layout)
	if err != nil {
		if cerr := fig.Close(); cerr != nil {
			Logger().Warn("release after failed subplots", zap.Error(cerr))
		}
		return nil, nil, err
	}
	return fig, grid, nil
}

func (f *Figure) addGrid(l Layout) (*AxesGrid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrReleased
	}

	var sharedX, sharedY *axisLimits
	if l.ShareX {
		sharedX = newAxisLimits()
	}
	if l.ShareY {
		sharedY = newAxisLimits()
	}

	grid := &AxesGrid{rows: l.NRows, cols: l.NCols, axes: make([]*Axes, 0, l.NRows*l.NCols)}
	for r := range l.NRows {
		for c := range l.NCols {
			cell := Cell{Row: r, Col: c, NRows: l.NRows, NCols: l.NCols}
			region, err := f.surface.AddRegion(cell)
			if err != nil {
				if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrEnvironment) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: region %d,%d: %w", ErrEnvironment, r, c, err)
			}

			ax := &Axes{fig: f, cell: cell, region: region, x: sharedX, y: sharedY}
			if ax.x == nil {
				ax.x = newAxisLimits()
			}
			if ax.y == nil {
				ax.y = newAxisLimits()
			}
			ax.x.members = append(ax.x.members, ax)
			ax.y.members = append(ax.y.members, ax)
			grid.axes = append(grid.axes, ax)
		}
	}
	f.axes = append(f.axes, grid.axes...)
	return grid, nil
}

// Size returns the figure size in inches.
func (f *Figure) Size() (width, height float64) {
	return f.opts.FigSize[0], f.opts.FigSize[1]
}

// DPI returns the resolution.
func (f *Figure) DPI() float64 {
	return f.opts.DPI
}

// PixelSize returns the surface size in pixels.
func (f *Figure) PixelSize() (width, height int) {
	return f.opts.pixels()
}

// FaceColor returns the background colour.
func (f *Figure) FaceColor() string {
	return f.opts.FaceColor
}

// Backend returns the name of the backend holding the surface.
func (f *Figure) Backend() string {
	return f.backend
}

// Surface returns the backend surface, for callers that need the bound
// library directly. It is nil once the figure is closed.
func (f *Figure) Surface() Surface {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	return f.surface
}

// Axes returns the regions attached to the figure, row-major.
func (f *Figure) Axes() []*Axes {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*Axes(nil), f.axes...)
}

// Closed reports whether Close has been called.
func (f *Figure) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// Close releases the surface. Close is idempotent.
func (f *Figure) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	s := f.surface
	f.surface = nil

	Logger().Debug("figure released", zap.String("backend", f.backend), zap.Int("axes", len(f.axes)))
	return s.Close()
}

// Draw repaints the surface and hands every attached patch to the
// backend, in insertion order, using the current data ranges.
func (f *Figure) Draw() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrReleased
	}
	if err := f.surface.Clear(); err != nil {
		return err
	}

	drawn := 0
	for _, ax := range f.axes {
		view := ax.view()
		for _, p := range ax.patches {
			c, ok := p.(*Circle)
			if !ok {
				continue
			}
			if err := ax.region.DrawCircle(c, view); err != nil {
				return fmt.Errorf("axes %d,%d: %w", ax.cell.Row, ax.cell.Col, err)
			}
			drawn++
		}
	}

	Logger().Debug("figure drawn", zap.String("backend", f.backend), zap.Int("patches", drawn))
	return nil
}

// AxesGrid is the structured result of SubplotGrid.
type AxesGrid struct {
	rows, cols int
	axes       []*Axes
}

// Rows returns the number of grid rows.
func (g *AxesGrid) Rows() int {
	return g.rows
}

// Cols returns the number of grid columns.
func (g *AxesGrid) Cols() int {
	return g.cols
}

// At returns the region at row, col.
func (g *AxesGrid) At(row, col int) (*Axes, error) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil, invalidf("cell %d,%d outside %dx%d grid", row, col, g.rows, g.cols)
	}
	return g.axes[row*g.cols+col], nil
}

// Flat returns all regions row-major.
func (g *AxesGrid) Flat() []*Axes {
	return append([]*Axes(nil), g.axes...)
}

type axisLimits struct {
	min, max float64
	members  []*Axes
}

func newAxisLimits() *axisLimits {
	return &axisLimits{min: 0, max: 1}
}

// Axes is a plotting region scoped to its Figure.
type Axes struct {
	fig     *Figure
	cell    Cell
	region  Region
	x, y    *axisLimits
	patches []Patch
}

// Figure returns the owning figure.
func (a *Axes) Figure() *Figure {
	return a.fig
}

// Cell returns the grid placement.
func (a *Axes) Cell() Cell {
	return a.cell
}

// AddPatch attaches p to the region. Nothing is drawn until Figure.Draw.
func (a *Axes) AddPatch(p Patch) error {
	a.fig.mu.Lock()
	defer a.fig.mu.Unlock()

	if a.fig.closed {
		return ErrReleased
	}

	switch v := p.(type) {
	case *Circle:
		if v == nil {
			return invalidf("nil circle")
		}
	case nil:
		return invalidf("nil patch")
	default:
		return invalidf("unsupported patch kind %q", p.Kind())
	}

	a.patches = append(a.patches, p)
	return nil
}

// Patches returns the attached patches in insertion order.
func (a *Axes) Patches() ([]Patch, error) {
	a.fig.mu.Lock()
	defer a.fig.mu.Unlock()

	if a.fig.closed {
		return nil, ErrReleased
	}
	return append([]Patch(nil), a.patches...), nil
}

// SetXLim sets the x data range. min must be below max.
func (a *Axes) SetXLim(min, max float64) error {
	return a.setLim(a.x, "x", min, max)
}

// SetYLim sets the y data range. min must be below max.
func (a *Axes) SetYLim(min, max float64) error {
	return a.setLim(a.y, "y", min, max)
}

// XLim returns the x data range.
func (a *Axes) XLim() (min, max float64, err error) {
	return a.lim(a.x)
}

// YLim returns the y data range.
func (a *Axes) YLim() (min, max float64, err error) {
	return a.lim(a.y)
}

func (a *Axes) lim(l *axisLimits) (min, max float64, err error) {
	a.fig.mu.Lock()
	defer a.fig.mu.Unlock()

	if a.fig.closed {
		return 0, 0, ErrReleased
	}
	return l.min, l.max, nil
}

func (a *Axes) setLim(lim *axisLimits, axis string, min, max float64) error {
	a.fig.mu.Lock()
	defer a.fig.mu.Unlock()

	if a.fig.closed {
		return ErrReleased
	}
	if err := checkRange(axis, min, max); err != nil {
		return err
	}
	lim.min, lim.max = min, max
	return nil
}

// Autoscale fits the data ranges to the attached patches, padded by
// margin times the extent on each side. Shared ranges cover the patches
// of every sharing region. Regions without patches are left unchanged.
// An extent too small to represent at its magnitude is widened first.
// If either resulting range is not finite, neither range changes.
func (a *Axes) Autoscale(margin float64) error {
	a.fig.mu.Lock()
	defer a.fig.mu.Unlock()

	if a.fig.closed {
		return ErrReleased
	}
	if !(margin >= 0) || math.IsInf(margin, 1) {
		return invalidf("margin must be a non-negative real, got %v", margin)
	}

	xmin, xmax, xok := fitRange(extents(a.x.members, true), margin)
	ymin, ymax, yok := fitRange(extents(a.y.members, false), margin)
	if xok {
		if err := checkRange("x", xmin, xmax); err != nil {
			return fmt.Errorf("margin %v: %w", margin, err)
		}
	}
	if yok {
		if err := checkRange("y", ymin, ymax); err != nil {
			return fmt.Errorf("margin %v: %w", margin, err)
		}
	}

	if xok {
		a.x.min, a.x.max = xmin, xmax
	}
	if yok {
		a.y.min, a.y.max = ymin, ymax
	}
	return nil
}

func fitRange(vs []float64, margin float64) (min, max float64, ok bool) {
	if len(vs) == 0 {
		return 0, 0, false
	}
	lo, hi := nonsingular(floats.Min(vs), floats.Max(vs))
	pad := (hi - lo) * margin
	return lo - pad, hi + pad, true
}

// nonsingular widens a range whose width is lost in rounding at its
// magnitude by 5% of that magnitude on each side.
func nonsingular(lo, hi float64) (float64, float64) {
	const expander, tiny = 0.05, 1e-15

	if hi-lo > math.Max(math.Abs(lo), math.Abs(hi))*tiny {
		return lo, hi
	}
	if lo == 0 && hi == 0 {
		return -expander, expander
	}
	return lo - expander*math.Abs(lo), hi + expander*math.Abs(hi)
}

func extents(members []*Axes, xAxis bool) []float64 {
	var vs []float64
	for _, m := range members {
		for _, p := range m.patches {
			lo, hi := p.Bounds()
			if xAxis {
				vs = append(vs, lo.X, hi.X)
			} else {
				vs = append(vs, lo.Y, hi.Y)
			}
		}
	}
	return vs
}

func (a *Axes) view() View {
	return View{XMin: a.x.min, XMax: a.x.max, YMin: a.y.min, YMax: a.y.max}
}

func checkRange(axis string, min, max float64) error {
	if !floats.HasNaN([]float64{min, max}) && min < max && max-min < 1e308 {
		return nil
	}
	return invalidf("%s range [%v, %v] is empty or not finite", axis, min, max)
}
