// Package reproject turns polar stereographic source rasters into
// equirectangular RGBA overlays suitable for wrapping around a globe.
package reproject

import (
	"context"
	"fmt"
	"math"

	"repolar/pkg/projection"
	"repolar/pkg/raster"
)

// Options describes one reprojection request. The struct is comparable and
// value equality is the cache identity: two Options with the same fields
// name the same output.
type Options struct {
	// SourceRef identifies the source raster for the loader, usually a URL
	// or a file path.
	SourceRef string

	// Extent is the footprint of the source raster in projected meters.
	Extent projection.Extent

	// Hemisphere is the polar stereographic variant the source is gridded
	// in.
	Hemisphere projection.Variant

	// Width is the output width in pixels. The output height is always
	// round(Width/2), keeping the 2:1 equirectangular aspect.
	Width int
}

// OutputHeight returns the derived output height in pixels.
func (o Options) OutputHeight() int {
	return int(math.Round(float64(o.Width) / 2))
}

// Validate returns a ConfigError for the first structural problem found.
func (o Options) Validate() error {
	if o.SourceRef == "" {
		return &ConfigError{Reason: "source ref is empty"}
	}
	if !o.Hemisphere.Valid() {
		return &ConfigError{Reason: "hemisphere is not a registered projection"}
	}
	if !o.Extent.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("extent %+v has no positive span", o.Extent)}
	}
	if o.Width < 2 {
		return &ConfigError{Reason: fmt.Sprintf("output width %d is below the 2 pixel minimum", o.Width)}
	}
	return nil
}

// ConfigError reports a structurally invalid request, detected before any
// pixel work starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid reprojection request: " + e.Reason
}

// Reproject sweeps the full equirectangular grid and samples the source
// raster wherever the forward projection lands inside the extent. Row 0 is
// latitude 90, the last row latitude -90; column 0 is longitude -180, the
// last column 180. Pixels that project outside the extent stay fully
// transparent. Identical inputs produce identical output bytes.
func Reproject(ctx context.Context, src *raster.Image, opts Options) (*raster.Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("source raster: %v", err)}
	}

	width := opts.Width
	height := opts.OutputHeight()
	out := raster.New(width, height)

	v := opts.Hemisphere

	// Longitude terms depend on the column alone and latitude terms on the
	// row alone. Hoisting both keeps the inner loop at two multiplies and
	// one sample per pixel.
	sinAz := make([]float64, width)
	cosAz := make([]float64, width)
	for x := 0; x < width; x++ {
		lon := -180 + float64(x)/float64(width-1)*360
		sinAz[x], cosAz[x] = v.Azimuth(lon)
	}

	spanX := opts.Extent.Width()
	spanY := opts.Extent.Height()
	maxSX := float64(src.Width - 1)
	maxSY := float64(src.Height - 1)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lat := 90 - float64(y)/float64(height-1)*180
		dist := v.PoleDistance(lat)
		row := out.Pix[y*width*4 : (y+1)*width*4]

		for x := 0; x < width; x++ {
			px, py := v.PlanarXY(dist, sinAz[x], cosAz[x])

			u := (px - opts.Extent.MinX) / spanX
			vv := (py - opts.Extent.MinY) / spanY

			// Positive-form bounds check: NaN fails it too.
			if u >= 0 && u <= 1 && vv >= 0 && vv <= 1 {
				// Projected y grows northward, raster rows grow downward.
				s := raster.Bilinear(src, u*maxSX, (1-vv)*maxSY)
				copy(row[x*4:x*4+4], s[:])
			}
		}
	}

	return out, nil
}
