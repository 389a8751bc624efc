package plotting

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

type fakeBackend struct {
	name       string
	surfaceErr error
	regionErr  error
	failAfter  int
	surfaces   []*fakeSurface
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) NewSurface(spec SurfaceSpec) (Surface, error) {
	if b.surfaceErr != nil {
		return nil, b.surfaceErr
	}
	s := &fakeSurface{backend: b, spec: spec}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

type fakeSurface struct {
	backend *fakeBackend
	spec    SurfaceSpec
	regions []*fakeRegion
	clears  int
	closed  bool
}

func (s *fakeSurface) AddRegion(cell Cell) (Region, error) {
	if s.backend.regionErr != nil && len(s.regions) == s.backend.failAfter {
		return nil, s.backend.regionErr
	}
	r := &fakeRegion{cell: cell}
	s.regions = append(s.regions, r)
	return r, nil
}

func (s *fakeSurface) Clear() error {
	s.clears++
	return nil
}

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

type fakeRegion struct {
	cell  Cell
	drawn []*Circle
	views []View
}

func (r *fakeRegion) DrawCircle(c *Circle, view View) error {
	r.drawn = append(r.drawn, c)
	r.views = append(r.views, view)
	return nil
}

func registerFake(t *testing.T) *fakeBackend {
	t.Helper()
	SetLogger(zaptest.NewLogger(t))
	b := &fakeBackend{name: "fake/" + t.Name()}
	RegisterBackend(b)
	if err := SetDefaultBackend(b.name); err != nil {
		t.Fatalf("SetDefaultBackend: %v", err)
	}
	t.Cleanup(func() {
		unregisterBackend(b.name)
		SetLogger(nil)
	})
	return b
}

func mustCircle(t *testing.T, x, y, r float64) *Circle {
	t.Helper()
	c, err := NewCircle([]float64{x, y}, WithRadius(r))
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	return c
}

func TestNewFigure(t *testing.T) {
	b := registerFake(t)

	fig, err := NewFigure(WithFigSize(4, 4), WithFigureExtra("tight", true))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}
	defer fig.Close()

	if w, h := fig.Size(); w != 4 || h != 4 {
		t.Errorf("Size = %vx%v, want 4x4", w, h)
	}
	if w, h := fig.PixelSize(); w != 400 || h != 400 {
		t.Errorf("PixelSize = %dx%d, want 400x400", w, h)
	}
	if len(fig.Axes()) != 0 {
		t.Errorf("len(Axes) = %d, want 0", len(fig.Axes()))
	}
	if fig.Backend() != b.name {
		t.Errorf("Backend = %q, want %q", fig.Backend(), b.name)
	}
	if len(b.surfaces) != 1 {
		t.Fatalf("surfaces allocated = %d, want 1", len(b.surfaces))
	}
	spec := b.surfaces[0].spec
	if spec.FaceColor != "white" || spec.DPI != 100 {
		t.Errorf("spec = %+v, want white face at 100 dpi", spec)
	}
	if spec.Extra["tight"] != true {
		t.Errorf("Extra not forwarded: %+v", spec.Extra)
	}
}

func TestNewFigureDefaults(t *testing.T) {
	registerFake(t)

	fig, err := NewFigure()
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}
	defer fig.Close()

	if w, h := fig.PixelSize(); w != 640 || h != 480 {
		t.Errorf("PixelSize = %dx%d, want 640x480", w, h)
	}
	if fig.FaceColor() != "white" {
		t.Errorf("FaceColor = %q, want white", fig.FaceColor())
	}
}

func TestNewFigureInvalid(t *testing.T) {
	b := registerFake(t)

	tests := []struct {
		name string
		opts []FigureOption
	}{
		{"zero width", []FigureOption{WithFigSize(0, 4)}},
		{"negative height", []FigureOption{WithFigSize(4, -1)}},
		{"zero dpi", []FigureOption{WithDPI(0)}},
		{"sub-pixel", []FigureOption{WithFigSize(0.001, 0.001), WithDPI(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFigure(tt.opts...); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
	if len(b.surfaces) != 0 {
		t.Errorf("surfaces allocated = %d, want 0", len(b.surfaces))
	}
}

func TestNewFigureEnvironment(t *testing.T) {
	b := registerFake(t)

	if _, err := NewFigure(WithBackend("missing")); !errors.Is(err, ErrEnvironment) {
		t.Errorf("unknown backend: err = %v, want ErrEnvironment", err)
	}

	cause := errors.New("no display")
	b.surfaceErr = cause
	_, err := NewFigure()
	if !errors.Is(err, ErrEnvironment) {
		t.Errorf("err = %v, want ErrEnvironment", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want cause preserved", err)
	}
}

func TestNewFigurePixelBounds(t *testing.T) {
	tests := []struct {
		name    string
		opts    []FigureOption
		wantErr error
		wantW   int
	}{
		{"widest surface", []FigureOption{WithFigSize(math.MaxInt32, 1), WithDPI(1)}, nil, math.MaxInt32},
		{"one pixel too wide", []FigureOption{WithFigSize(math.MaxInt32+1, 1), WithDPI(1)}, ErrEnvironment, 0},
		{"both sides beyond int32", []FigureOption{WithFigSize(42949672.96, 42949672.96), WithDPI(100)}, ErrEnvironment, 0},
		{"beyond int64", []FigureOption{WithFigSize(1e300, 1)}, ErrEnvironment, 0},
		{"huge dpi", []FigureOption{WithDPI(math.MaxFloat64)}, ErrEnvironment, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := registerFake(t)

			fig, err := NewFigure(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(b.surfaces) != 0 {
					t.Errorf("surfaces allocated = %d, want 0", len(b.surfaces))
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFigure: %v", err)
			}
			defer fig.Close()
			if w, h := fig.PixelSize(); w != tt.wantW || h != 1 {
				t.Errorf("PixelSize = %dx%d, want %dx1", w, h, tt.wantW)
			}
			if got := b.surfaces[0].spec.Width; got != tt.wantW {
				t.Errorf("surface width = %d, want %d", got, tt.wantW)
			}
		})
	}
}

func TestNoBackendRegistered(t *testing.T) {
	b := registerFake(t)
	unregisterBackend(b.name)

	if len(Backends()) != 0 {
		t.Skipf("other backends registered: %v", Backends())
	}
	if _, err := NewFigure(); !errors.Is(err, ErrEnvironment) {
		t.Errorf("err = %v, want ErrEnvironment", err)
	}
	if _, _, err := Subplots(); !errors.Is(err, ErrEnvironment) {
		t.Errorf("Subplots err = %v, want ErrEnvironment", err)
	}
}

func TestSubplots(t *testing.T) {
	b := registerFake(t)

	fig, ax, err := Subplots(WithGrid(1, 1))
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	defer fig.Close()

	if ax.Figure() != fig {
		t.Error("axes not owned by the returned figure")
	}
	if axes := fig.Axes(); len(axes) != 1 || axes[0] != ax {
		t.Errorf("Axes = %v, want [ax]", axes)
	}
	if got := len(b.surfaces[0].regions); got != 1 {
		t.Errorf("regions = %d, want 1", got)
	}
	if xmin, xmax, _ := ax.XLim(); xmin != 0 || xmax != 1 {
		t.Errorf("XLim = [%v, %v], want [0, 1]", xmin, xmax)
	}
}

func TestSubplotGrid(t *testing.T) {
	b := registerFake(t)

	fig, grid, err := SubplotGrid(WithGrid(2, 3), WithFigure(WithDPI(50)))
	if err != nil {
		t.Fatalf("SubplotGrid: %v", err)
	}
	defer fig.Close()

	if grid.Rows() != 2 || grid.Cols() != 3 || len(grid.Flat()) != 6 {
		t.Fatalf("grid = %dx%d with %d axes", grid.Rows(), grid.Cols(), len(grid.Flat()))
	}
	ax, err := grid.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if want := (Cell{Row: 1, Col: 2, NRows: 2, NCols: 3}); ax.Cell() != want {
		t.Errorf("Cell = %+v, want %+v", ax.Cell(), want)
	}
	if _, err := grid.At(2, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("At(2, 0) err = %v, want ErrInvalidArgument", err)
	}
	if fig.DPI() != 50 {
		t.Errorf("DPI = %v, want 50", fig.DPI())
	}

	fig2, first, err := Subplots(WithGrid(2, 2))
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	defer fig2.Close()
	if first.Cell().Row != 0 || first.Cell().Col != 0 {
		t.Errorf("Subplots returned cell %+v, want top-left", first.Cell())
	}
	if got := len(b.surfaces); got != 2 {
		t.Errorf("surfaces = %d, want 2", got)
	}
}

func TestSubplotGridInvalidLayout(t *testing.T) {
	b := registerFake(t)

	for _, l := range []Layout{{NRows: 0, NCols: 1}, {NRows: 1, NCols: 0}, {NRows: -2, NCols: 2}} {
		if _, _, err := SubplotGrid(WithLayout(l)); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("layout %+v: err = %v, want ErrInvalidArgument", l, err)
		}
	}
	if len(b.surfaces) != 0 {
		t.Errorf("surfaces allocated = %d, want 0", len(b.surfaces))
	}
}

func TestSubplotGridReleasesOnRegionFailure(t *testing.T) {
	b := registerFake(t)
	b.regionErr = errors.New("out of video memory")
	b.failAfter = 2

	fig, grid, err := SubplotGrid(WithGrid(2, 2))
	if !errors.Is(err, ErrEnvironment) {
		t.Fatalf("err = %v, want ErrEnvironment", err)
	}
	if fig != nil || grid != nil {
		t.Error("partial result returned on failure")
	}
	if !b.surfaces[0].closed {
		t.Error("surface not released after failure")
	}
}

func TestCloseReleasesAxes(t *testing.T) {
	b := registerFake(t)

	fig, ax, err := Subplots()
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	if err := fig.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := fig.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !fig.Closed() || !b.surfaces[0].closed {
		t.Error("figure or surface not closed")
	}
	if fig.Surface() != nil {
		t.Error("Surface() not nil after Close")
	}

	if err := ax.AddPatch(mustCircle(t, 0, 0, 1)); !errors.Is(err, ErrReleased) {
		t.Errorf("AddPatch err = %v, want ErrReleased", err)
	}
	if _, err := ax.Patches(); !errors.Is(err, ErrReleased) {
		t.Errorf("Patches err = %v, want ErrReleased", err)
	}
	if err := ax.SetXLim(0, 1); !errors.Is(err, ErrReleased) {
		t.Errorf("SetXLim err = %v, want ErrReleased", err)
	}
	if err := ax.Autoscale(0); !errors.Is(err, ErrReleased) {
		t.Errorf("Autoscale err = %v, want ErrReleased", err)
	}
	if _, _, err := ax.XLim(); !errors.Is(err, ErrReleased) {
		t.Errorf("XLim err = %v, want ErrReleased", err)
	}
	if _, _, err := ax.YLim(); !errors.Is(err, ErrReleased) {
		t.Errorf("YLim err = %v, want ErrReleased", err)
	}
	if err := fig.Draw(); !errors.Is(err, ErrReleased) {
		t.Errorf("Draw err = %v, want ErrReleased", err)
	}
}

func TestAddPatchAndDraw(t *testing.T) {
	b := registerFake(t)

	fig, ax, err := Subplots()
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	defer fig.Close()

	c1, c2 := mustCircle(t, 0, 0, 1), mustCircle(t, 5, 5, 2)
	for _, c := range []*Circle{c1, c2} {
		if err := ax.AddPatch(c); err != nil {
			t.Fatalf("AddPatch: %v", err)
		}
	}
	if err := ax.AddPatch(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddPatch(nil) err = %v, want ErrInvalidArgument", err)
	}

	region := b.surfaces[0].regions[0]
	if len(region.drawn) != 0 {
		t.Fatalf("drawn before Draw: %d", len(region.drawn))
	}

	if err := ax.SetXLim(-10, 10); err != nil {
		t.Fatalf("SetXLim: %v", err)
	}
	if err := fig.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(region.drawn) != 2 || region.drawn[0] != c1 || region.drawn[1] != c2 {
		t.Fatalf("drawn = %v, want [c1 c2]", region.drawn)
	}
	if want := (View{XMin: -10, XMax: 10, YMin: 0, YMax: 1}); region.views[0] != want {
		t.Errorf("view = %v, want %v", region.views[0], want)
	}
	if b.surfaces[0].clears != 1 {
		t.Errorf("clears = %d, want 1", b.surfaces[0].clears)
	}

	patches, err := ax.Patches()
	if err != nil || len(patches) != 2 {
		t.Errorf("Patches = %v, %v", patches, err)
	}
}

func TestSetLimInvalid(t *testing.T) {
	registerFake(t)

	fig, ax, err := Subplots()
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	defer fig.Close()

	if err := ax.SetXLim(1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetXLim(1, 1) err = %v, want ErrInvalidArgument", err)
	}
	if err := ax.SetYLim(2, -2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetYLim(2, -2) err = %v, want ErrInvalidArgument", err)
	}
	if err := ax.Autoscale(-0.1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Autoscale(-0.1) err = %v, want ErrInvalidArgument", err)
	}
}

func TestAutoscale(t *testing.T) {
	registerFake(t)

	fig, ax, err := Subplots()
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	defer fig.Close()

	if err := ax.Autoscale(0.1); err != nil {
		t.Fatalf("Autoscale on empty axes: %v", err)
	}
	if xmin, xmax, _ := ax.XLim(); xmin != 0 || xmax != 1 {
		t.Errorf("empty XLim = [%v, %v], want unchanged [0, 1]", xmin, xmax)
	}

	_ = ax.AddPatch(mustCircle(t, 0, 0, 1))
	_ = ax.AddPatch(mustCircle(t, 8, 4, 2))
	if err := ax.Autoscale(0.25); err != nil {
		t.Fatalf("Autoscale: %v", err)
	}
	if xmin, xmax, _ := ax.XLim(); xmin != -3.75 || xmax != 12.75 {
		t.Errorf("XLim = [%v, %v], want [-3.75, 12.75]", xmin, xmax)
	}
	if ymin, ymax, _ := ax.YLim(); ymin != -2.75 || ymax != 7.75 {
		t.Errorf("YLim = [%v, %v], want [-2.75, 7.75]", ymin, ymax)
	}
}

func TestAutoscaleEdges(t *testing.T) {
	tests := []struct {
		name    string
		circles [][3]float64
		margin  float64
		wantErr error
	}{
		{"zero margin", [][3]float64{{0, 0, 1}}, 0, nil},
		{"far circle", [][3]float64{{1e17, 0, 1}}, 0.05, nil},
		{"far negative circle", [][3]float64{{-1e17, -1e17, 1}}, 0.05, nil},
		{"huge radius", [][3]float64{{0, 0, 1e300}}, 0, nil},
		{"huge margin", [][3]float64{{0, 0, 1}}, 1e308, ErrInvalidArgument},
		{"margin overflows huge radius", [][3]float64{{0, 0, 1e300}}, 1e10, ErrInvalidArgument},
		{"infinite margin", [][3]float64{{0, 0, 1}}, math.Inf(1), ErrInvalidArgument},
		{"nan margin", [][3]float64{{0, 0, 1}}, math.NaN(), ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registerFake(t)

			fig, ax, err := Subplots()
			if err != nil {
				t.Fatalf("Subplots: %v", err)
			}
			defer fig.Close()

			for _, c := range tt.circles {
				if err := ax.AddPatch(mustCircle(t, c[0], c[1], c[2])); err != nil {
					t.Fatalf("AddPatch: %v", err)
				}
			}

			err = ax.Autoscale(tt.margin)
			xmin, xmax, _ := ax.XLim()
			ymin, ymax, _ := ax.YLim()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if xmin != 0 || xmax != 1 || ymin != 0 || ymax != 1 {
					t.Errorf("limits changed to [%v, %v]x[%v, %v] on error", xmin, xmax, ymin, ymax)
				}
				return
			}
			if err != nil {
				t.Fatalf("Autoscale: %v", err)
			}
			if checkRange("x", xmin, xmax) != nil || checkRange("y", ymin, ymax) != nil {
				t.Errorf("limits [%v, %v]x[%v, %v] are not a valid range", xmin, xmax, ymin, ymax)
			}
			for _, c := range tt.circles {
				if c[0] < xmin || c[0] > xmax || c[1] < ymin || c[1] > ymax {
					t.Errorf("center (%v, %v) outside [%v, %v]x[%v, %v]", c[0], c[1], xmin, xmax, ymin, ymax)
				}
			}
		})
	}
}

func TestNonsingular(t *testing.T) {
	tests := []struct {
		lo, hi         float64
		wantLo, wantHi float64
	}{
		{1, 2, 1, 2},
		{0, 0, -0.05, 0.05},
		{1e17, 1e17, 0.95e17, 1.05e17},
		{-4, -4, -4.2, -3.8},
	}

	for _, tt := range tests {
		lo, hi := nonsingular(tt.lo, tt.hi)
		if math.Abs(lo-tt.wantLo) > 1e-9*math.Abs(tt.wantLo) || math.Abs(hi-tt.wantHi) > 1e-9*math.Abs(tt.wantHi) {
			t.Errorf("nonsingular(%v, %v) = [%v, %v], want [%v, %v]", tt.lo, tt.hi, lo, hi, tt.wantLo, tt.wantHi)
		}
	}
}

func TestSharedAxes(t *testing.T) {
	registerFake(t)

	fig, grid, err := SubplotGrid(WithGrid(1, 2), WithShareX())
	if err != nil {
		t.Fatalf("SubplotGrid: %v", err)
	}
	defer fig.Close()

	left, _ := grid.At(0, 0)
	right, _ := grid.At(0, 1)

	if err := left.SetXLim(-3, 3); err != nil {
		t.Fatalf("SetXLim: %v", err)
	}
	if xmin, xmax, _ := right.XLim(); xmin != -3 || xmax != 3 {
		t.Errorf("shared XLim = [%v, %v], want [-3, 3]", xmin, xmax)
	}

	_ = left.AddPatch(mustCircle(t, 0, 0, 1))
	_ = right.AddPatch(mustCircle(t, 10, 10, 1))
	if err := right.Autoscale(0); err != nil {
		t.Fatalf("Autoscale: %v", err)
	}
	if xmin, xmax, _ := left.XLim(); xmin != -1 || xmax != 11 {
		t.Errorf("XLim after shared autoscale = [%v, %v], want [-1, 11]", xmin, xmax)
	}
	if ymin, ymax, _ := left.YLim(); ymin != 0 || ymax != 1 {
		t.Errorf("unshared YLim changed to [%v, %v]", ymin, ymax)
	}
	if ymin, ymax, _ := right.YLim(); ymin != 9 || ymax != 11 {
		t.Errorf("YLim = [%v, %v], want [9, 11]", ymin, ymax)
	}
}

func TestBackendRegistry(t *testing.T) {
	b := registerFake(t)

	found := false
	for _, name := range Backends() {
		if name == b.name {
			found = true
		}
	}
	if !found {
		t.Errorf("Backends() = %v, missing %q", Backends(), b.name)
	}
	if err := SetDefaultBackend("missing"); !errors.Is(err, ErrEnvironment) {
		t.Errorf("SetDefaultBackend err = %v, want ErrEnvironment", err)
	}
}
