// Package plotting is the drawing contract of the spatial-geometry
// library: a Circle descriptor and the NewFigure, Subplots and
// SubplotGrid factories.
//
// The package does no rendering itself. Figures and axes are backed by
// the Surface and Region capabilities of a registered Backend; the gg
// binding lives in the raster subpackage and registers itself on import.
//
// Inputs are validated eagerly: malformed centers, radii, sizes and grid
// shapes fail with ErrInvalidArgument before anything is allocated, and a
// missing or failing backend yields ErrEnvironment. Axes never outlive
// their figure; once Figure.Close has run they report ErrReleased.
package plotting
