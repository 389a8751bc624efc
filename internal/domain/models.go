package domain

import (
	"errors"

	"spatial-plot/pkg/plotting"
)

// Config is the circle-check configuration, read from YAML or TOML.
type Config struct {
	Input    string                 `yaml:"input" toml:"input"`
	LogLevel string                 `yaml:"log_level" toml:"log_level"`
	LogFile  string                 `yaml:"log_file" toml:"log_file"`
	Margin   *float64               `yaml:"margin" toml:"margin"`
	Figure   plotting.FigureOptions `yaml:"figure" toml:"figure"`
	Layout   plotting.Layout        `yaml:"layout" toml:"layout"`
	Circle   plotting.CircleStyle   `yaml:"circle" toml:"circle"`
}

// DefaultMargin is the autoscale padding used when the config has none.
const DefaultMargin = 0.05

// AutoscaleMargin returns Margin, or DefaultMargin when it is unset.
// An explicit zero is kept.
func (c *Config) AutoscaleMargin() float64 {
	if c.Margin == nil {
		return DefaultMargin
	}
	return *c.Margin
}

// CircleRecord is one row of the input file. Radius is nil when the row
// has only a center.
type CircleRecord struct {
	Line   int
	Center []float64
	Radius *float64
}

// Rejection explains why a record did not become a circle.
type Rejection struct {
	Line   int
	Reason string
}

// Report summarises one check run.
type Report struct {
	Accepted   int
	Rejected   []Rejection
	PerRegion  []int
	Views      []plotting.View
	PixelSize  [2]int
	BackendKey string
}

// OK reports whether every record was accepted.
func (r *Report) OK() bool {
	return len(r.Rejected) == 0
}

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrEmptyInput        = errors.New("no circle records")
)
