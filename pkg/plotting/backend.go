package plotting

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Backend binds the plotting contract to a concrete drawing library.
//
// Backends register themselves from an init function so users opt in
// with a blank import:
//
//	import _ "spatial-plot/pkg/plotting/raster"
type Backend interface {
	// Name returns the registry key (e.g. "raster").
	Name() string

	// NewSurface allocates one drawing surface.
	NewSurface(spec SurfaceSpec) (Surface, error)
}

// Surface is the drawing-surface capability behind a Figure.
type Surface interface {
	// AddRegion carves a plotting region out of the surface.
	AddRegion(cell Cell) (Region, error)

	// Clear repaints the surface with its face colour.
	Clear() error

	// Close releases backend resources. Regions are unusable afterwards.
	Close() error
}

// Region is the plotting-region capability behind an Axes.
type Region interface {
	DrawCircle(c *Circle, view View) error
}

// SurfaceSpec describes the surface a backend must allocate.
type SurfaceSpec struct {
	Width, Height int // pixels
	DPI           float64
	FaceColor     string
	Extra         map[string]any
}

// Cell places a region in a uniform grid, row-major from the top left.
type Cell struct {
	Row, Col     int
	NRows, NCols int
}

// View is the data window of a region at draw time.
type View struct {
	XMin, XMax float64
	YMin, YMax float64
}

var (
	backendsMu     sync.RWMutex
	backends       = make(map[string]Backend)
	defaultBackend string
)

// RegisterBackend makes b available under b.Name(). The first backend
// registered becomes the default. Registering a name twice replaces the
// earlier backend.
func RegisterBackend(b Backend) {
	if b == nil {
		panic("plotting: RegisterBackend with nil backend")
	}
	backendsMu.Lock()
	defer backendsMu.Unlock()

	backends[b.Name()] = b
	if defaultBackend == "" {
		defaultBackend = b.Name()
	}
	Logger().Debug("backend registered", zap.String("backend", b.Name()))
}

// SetDefaultBackend selects the backend used when FigureOptions.Backend
// is empty.
func SetDefaultBackend(name string) error {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, ok := backends[name]; !ok {
		return environmentf("backend %q is not registered", name)
	}
	defaultBackend = name
	return nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	if name == "" {
		name = defaultBackend
	}
	if name == "" {
		return nil, environmentf("no plotting backend registered")
	}
	b, ok := backends[name]
	if !ok {
		return nil, environmentf("backend %q is not registered", name)
	}
	return b, nil
}

func unregisterBackend(name string) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	delete(backends, name)
	if defaultBackend == name {
		defaultBackend = ""
	}
}

func (v View) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", v.XMin, v.XMax, v.YMin, v.YMax)
}
