package plotting

import (
	"maps"
	"math"
)

// FigureOptions are the surface-level settings of a figure.
// Zero fields fall back to the defaults of NewFigure.
type FigureOptions struct {
	FigSize   [2]float64     `yaml:"figsize" toml:"figsize"` // inches
	DPI       float64        `yaml:"dpi" toml:"dpi"`
	FaceColor string         `yaml:"face_color" toml:"face_color"`
	Backend   string         `yaml:"backend" toml:"backend"`
	Extra     map[string]any `yaml:"extra" toml:"extra"`
}

// Layout is the region grid requested from Subplots.
type Layout struct {
	NRows  int  `yaml:"nrows" toml:"nrows"`
	NCols  int  `yaml:"ncols" toml:"ncols"`
	ShareX bool `yaml:"sharex" toml:"sharex"`
	ShareY bool `yaml:"sharey" toml:"sharey"`
}

func defaultFigureOptions() FigureOptions {
	return FigureOptions{
		FigSize:   [2]float64{6.4, 4.8},
		DPI:       100,
		FaceColor: "white",
	}
}

func (o FigureOptions) validate() error {
	for i, v := range o.FigSize {
		if !(v > 0) || math.IsInf(v, 0) {
			return invalidf("figsize[%d] must be a positive real, got %v", i, v)
		}
	}
	if !(o.DPI > 0) || math.IsInf(o.DPI, 0) {
		return invalidf("dpi must be a positive real, got %v", o.DPI)
	}
	return nil
}

// maxSide bounds each pixel dimension so the size converts to int on
// every platform.
const maxSide = math.MaxInt32

func (o FigureOptions) pixelExtent() (w, h float64) {
	return math.Round(o.FigSize[0] * o.DPI), math.Round(o.FigSize[1] * o.DPI)
}

// pixels is only meaningful for options that passed checkPixels.
func (o FigureOptions) pixels() (w, h int) {
	fw, fh := o.pixelExtent()
	return int(fw), int(fh)
}

func (o FigureOptions) checkPixels() error {
	w, h := o.pixelExtent()
	if w < 1 || h < 1 {
		return invalidf("figure of %gx%g in at %g dpi has no pixels", o.FigSize[0], o.FigSize[1], o.DPI)
	}
	if w > maxSide || h > maxSide {
		return environmentf("figure of %gx%g in at %g dpi needs %gx%g pixels, above %d per side",
			o.FigSize[0], o.FigSize[1], o.DPI, w, h, maxSide)
	}
	return nil
}

func (l Layout) validate() error {
	if l.NRows <= 0 || l.NCols <= 0 {
		return invalidf("subplot grid must be at least 1x1, got %dx%d", l.NRows, l.NCols)
	}
	return nil
}

// FigureOption configures NewFigure.
type FigureOption func(*FigureOptions)

// WithFigSize sets the figure size in inches.
func WithFigSize(width, height float64) FigureOption {
	return func(o *FigureOptions) {
		o.FigSize = [2]float64{width, height}
	}
}

// WithDPI sets the resolution in dots per inch.
func WithDPI(dpi float64) FigureOption {
	return func(o *FigureOptions) {
		o.DPI = dpi
	}
}

// WithFaceColor sets the background colour of the surface.
func WithFaceColor(c string) FigureOption {
	return func(o *FigureOptions) {
		o.FaceColor = c
	}
}

// WithBackend selects a registered backend by name.
func WithBackend(name string) FigureOption {
	return func(o *FigureOptions) {
		o.Backend = name
	}
}

// WithFigureExtra forwards a backend-specific surface option verbatim.
func WithFigureExtra(key string, value any) FigureOption {
	return func(o *FigureOptions) {
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[key] = value
	}
}

// WithFigureOptions overlays the non-zero fields of src, typically read
// from a configuration file.
func WithFigureOptions(src FigureOptions) FigureOption {
	return func(o *FigureOptions) {
		if src.FigSize != [2]float64{} {
			o.FigSize = src.FigSize
		}
		if src.DPI != 0 {
			o.DPI = src.DPI
		}
		if src.FaceColor != "" {
			o.FaceColor = src.FaceColor
		}
		if src.Backend != "" {
			o.Backend = src.Backend
		}
		if len(src.Extra) > 0 {
			if o.Extra == nil {
				o.Extra = make(map[string]any, len(src.Extra))
			}
			maps.Copy(o.Extra, src.Extra)
		}
	}
}

// SubplotsOptions combines the surface settings with the region grid.
type SubplotsOptions struct {
	Figure []FigureOption
	Layout Layout
}

// SubplotsOption configures Subplots and SubplotGrid.
type SubplotsOption func(*SubplotsOptions)

// WithGrid requests nrows x ncols regions. Both must be positive.
func WithGrid(nrows, ncols int) SubplotsOption {
	return func(o *SubplotsOptions) {
		o.Layout.NRows = nrows
		o.Layout.NCols = ncols
	}
}

// WithShareX makes every region use one x range.
func WithShareX() SubplotsOption {
	return func(o *SubplotsOptions) {
		o.Layout.ShareX = true
	}
}

// WithShareY makes every region use one y range.
func WithShareY() SubplotsOption {
	return func(o *SubplotsOptions) {
		o.Layout.ShareY = true
	}
}

// WithLayout replaces the whole layout.
func WithLayout(l Layout) SubplotsOption {
	return func(o *SubplotsOptions) {
		o.Layout = l
	}
}

// WithFigure passes surface options through to the figure.
func WithFigure(opts ...FigureOption) SubplotsOption {
	return func(o *SubplotsOptions) {
		o.Figure = append(o.Figure, opts...)
	}
}
