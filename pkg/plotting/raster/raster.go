// Package raster binds the plotting contract to the gg software renderer.
//
// Importing the package registers a backend named "raster":
//
//	import _ "spatial-plot/pkg/plotting/raster"
//
//	fig, ax, err := plotting.Subplots()
//
// Each figure owns one gg.Context sized FigSize*DPI. Regions are cells of
// a uniform grid with a fixed inner margin.
package raster

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"spatial-plot/pkg/plotting"
)

// Name is the registry key of the backend.
const Name = "raster"

// MaxPixels bounds the surface area a single figure may allocate.
const MaxPixels = 1 << 26

// maxCoord bounds the pixel geometry handed to gg; the stroke flattener
// recurses with the curve length.
const maxCoord = 1 << 24

// cellMargin is the fraction of a grid cell left empty on each side.
const cellMargin = 0.1

func init() {
	plotting.RegisterBackend(Backend{})
}

// Backend allocates gg-backed surfaces.
type Backend struct{}

var _ plotting.Backend = Backend{}

// Name implements plotting.Backend.
func (Backend) Name() string {
	return Name
}

// NewSurface implements plotting.Backend.
func (Backend) NewSurface(spec plotting.SurfaceSpec) (plotting.Surface, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, plotting.InvalidArgument("surface %dx%d has no pixels", spec.Width, spec.Height)
	}
	if spec.Width > MaxPixels || spec.Height > MaxPixels/spec.Width {
		return nil, plotting.EnvironmentError("surface %dx%d exceeds %d pixels", spec.Width, spec.Height, MaxPixels)
	}

	face, err := ParseColor(spec.FaceColor)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(spec.Width, spec.Height)
	dc.ClearWithColor(face)

	plotting.Logger().Debug("raster surface allocated",
		zap.Int("width", spec.Width),
		zap.Int("height", spec.Height),
		zap.Any("extra", spec.Extra))

	dpi := spec.DPI
	if dpi <= 0 {
		dpi = 72
	}
	return &Surface{dc: dc, face: face, dpi: dpi}, nil
}

// Surface is a gg.Context plus the face colour it was created with.
type Surface struct {
	mu     sync.Mutex
	dc     *gg.Context
	face   gg.RGBA
	dpi    float64
	closed bool
}

var _ plotting.Surface = (*Surface)(nil)

// Image returns a snapshot of the surface pixels.
func (s *Surface) Image() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, plotting.ErrReleased
	}
	return s.dc.Image(), nil
}

// AddRegion implements plotting.Surface.
func (s *Surface) AddRegion(cell plotting.Cell) (plotting.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, plotting.ErrReleased
	}
	if cell.NRows <= 0 || cell.NCols <= 0 ||
		cell.Row < 0 || cell.Row >= cell.NRows ||
		cell.Col < 0 || cell.Col >= cell.NCols {
		return nil, plotting.InvalidArgument("cell %d,%d outside %dx%d grid", cell.Row, cell.Col, cell.NRows, cell.NCols)
	}

	cw := float64(s.dc.Width()) / float64(cell.NCols)
	ch := float64(s.dc.Height()) / float64(cell.NRows)
	return &Region{
		s: s,
		x: float64(cell.Col)*cw + cw*cellMargin,
		y: float64(cell.Row)*ch + ch*cellMargin,
		w: cw * (1 - 2*cellMargin),
		h: ch * (1 - 2*cellMargin),
	}, nil
}

// Clear implements plotting.Surface.
func (s *Surface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return plotting.ErrReleased
	}
	s.dc.ClearWithColor(s.face)
	return nil
}

// Close implements plotting.Surface.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.dc.Close()
}

// Region is a pixel rectangle of a Surface.
type Region struct {
	s          *Surface
	x, y, w, h float64
}

var _ plotting.Region = (*Region)(nil)

// Bounds returns the pixel rectangle of the region.
func (r *Region) Bounds() (x, y, w, h float64) {
	return r.x, r.y, r.w, r.h
}

// DrawCircle implements plotting.Region. The circle is mapped from the
// view's data range to the region and clipped to it; unequal x and y
// scales turn it into an ellipse, as in any plot without equal aspect.
func (r *Region) DrawCircle(c *plotting.Circle, view plotting.View) error {
	style := c.Style()
	face, err := ParseColor(style.Face())
	if err != nil {
		return err
	}
	edge, err := ParseColor(style.Edge())
	if err != nil {
		return err
	}
	alpha := style.Opacity()
	face.A *= alpha
	edge.A *= alpha

	sx := r.w / (view.XMax - view.XMin)
	sy := r.h / (view.YMax - view.YMin)
	if !finite(sx, sy) || sx <= 0 || sy <= 0 {
		return plotting.InvalidArgument("view %s cannot be mapped to the region", view)
	}
	center := c.Center()
	px := r.x + (center.X-view.XMin)*sx
	py := r.y + r.h - (center.Y-view.YMin)*sy
	rx, ry := c.Radius()*sx, c.Radius()*sy
	if !finite(px, py, rx, ry) {
		return plotting.InvalidArgument("circle at %v r=%g does not map into view %s", center, c.Radius(), view)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.closed {
		return plotting.ErrReleased
	}
	if px+rx < r.x || px-rx > r.x+r.w || py+ry < r.y || py-ry > r.y+r.h {
		return nil
	}
	if math.Abs(px) > maxCoord || math.Abs(py) > maxCoord || rx > maxCoord || ry > maxCoord {
		if !r.coveredBy(px, py, rx, ry) {
			return plotting.InvalidArgument("circle at %v r=%g is too large for view %s", center, c.Radius(), view)
		}
		// Only the interior is visible.
		if style.Filled() {
			r.s.dc.DrawRectangle(r.x, r.y, r.w, r.h)
			r.s.dc.SetColor(face.Color())
			return r.s.dc.Fill()
		}
		return nil
	}

	dc := r.s.dc
	dc.Push()
	defer dc.Pop()
	dc.ClipRect(r.x, r.y, r.w, r.h)

	if style.Filled() {
		dc.DrawEllipse(px, py, rx, ry)
		dc.SetColor(face.Color())
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	if style.Width() == 0 {
		return nil
	}
	dc.DrawEllipse(px, py, rx, ry)
	dc.SetColor(edge.Color())
	dc.SetLineWidth(style.Width() * r.s.dpi / 72)
	return dc.Stroke()
}

// coveredBy reports whether every corner of the region lies inside the
// ellipse centered at px, py.
func (r *Region) coveredBy(px, py, rx, ry float64) bool {
	for _, x := range [2]float64{r.x, r.x + r.w} {
		for _, y := range [2]float64{r.y, r.y + r.h} {
			dx, dy := (x-px)/rx, (y-py)/ry
			if dx*dx+dy*dy > 1 {
				return false
			}
		}
	}
	return true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
