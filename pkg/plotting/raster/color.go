package raster

import (
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"

	"spatial-plot/pkg/plotting"
)

// Single-letter shorthands accepted alongside SVG colour names.
var shorthand = map[string]gg.RGBA{
	"b": gg.Blue,
	"g": gg.RGB(0, 0.5, 0),
	"r": gg.Red,
	"c": gg.Cyan,
	"m": gg.Magenta,
	"y": gg.Yellow,
	"k": gg.Black,
	"w": gg.White,
}

// ParseColor resolves a colour string: an SVG colour name ("steelblue"),
// a single-letter shorthand ("k"), "none", or a #RGB, #RGBA, #RRGGBB or
// #RRGGBBAA hex literal.
func ParseColor(s string) (gg.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch {
	case name == "none" || name == "transparent":
		return gg.Transparent, nil
	case strings.HasPrefix(name, "#"):
		hex := name[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return gg.RGBA{}, plotting.InvalidArgument("colour %q: bad hex length", s)
		}
		if strings.Trim(hex, "0123456789abcdef") != "" {
			return gg.RGBA{}, plotting.InvalidArgument("colour %q: bad hex digit", s)
		}
		return gg.Hex(hex), nil
	}

	if c, ok := shorthand[name]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return gg.FromColor(c), nil
	}
	return gg.RGBA{}, plotting.InvalidArgument("unknown colour %q", s)
}
