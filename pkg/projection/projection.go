// Package projection implements the polar stereographic map projections
// used by the NSIDC sea-ice grids (EPSG:3413 and EPSG:3031).
package projection

import (
	"fmt"
	"math"
	"strings"
)

const (
	deg2rad = math.Pi / 180
	halfPi  = math.Pi / 2
	twoPi   = 2 * math.Pi
	spi     = 3.14159265359 // pi plus round-off tolerance, as in proj
)

// WGS84 ellipsoid semi-axes in meters.
const (
	WGS84SemiMajor = 6378137.0
	WGS84SemiMinor = 6356752.314245179
)

// Variant is one polar stereographic projection, fixed at construction.
// The zero value is not usable; use North, South or NewVariant.
type Variant struct {
	Name string
	EPSG int

	pole float64 // +1 north aspect, -1 south aspect
	lon0 float64 // central meridian in radians
	a    float64 // semi-major axis in meters
	e    float64 // first eccentricity
	k0   float64 // scale factor at the latitude of true scale
	cons float64
}

// North is WGS84 / NSIDC Sea Ice Polar Stereographic North (EPSG:3413):
// true scale at 70°N, central meridian 45°W.
var North = NewVariant("north", 3413, 90, 70, -45, WGS84SemiMajor, WGS84SemiMinor)

// South is WGS84 / Antarctic Polar Stereographic (EPSG:3031):
// true scale at 71°S, central meridian 0°.
var South = NewVariant("south", 3031, -90, -71, 0, WGS84SemiMajor, WGS84SemiMinor)

// NewVariant builds a polar stereographic projection for an ellipsoid with
// semi-axes a and b in meters. latOrigin selects the pole (+90 or -90),
// latTrue is the latitude of true scale and lonOrigin the central meridian,
// all in degrees. Passing b == a yields the spherical form.
func NewVariant(name string, epsg int, latOrigin, latTrue, lonOrigin, a, b float64) Variant {
	pole := 1.0
	if latOrigin < 0 {
		pole = -1
	}

	e := math.Sqrt(1 - (b*b)/(a*a))
	cons := math.Sqrt(math.Pow(1+e, 1+e) * math.Pow(1-e, 1-e))

	// Scale factor that makes the projection true at latTrue instead of at
	// the pole. Snyder eq. 21-32..21-34 folded into the proj k0 form.
	k0 := 1.0
	if math.Abs(latTrue) < 90 {
		ts := latTrue * deg2rad
		k0 = 0.5 * cons * msfn(e, math.Sin(ts), math.Cos(ts)) / tsfn(e, pole*ts, pole*math.Sin(ts))
	}

	return Variant{
		Name: name,
		EPSG: epsg,
		pole: pole,
		lon0: lonOrigin * deg2rad,
		a:    a,
		e:    e,
		k0:   k0,
		cons: cons,
	}
}

// ParseVariant resolves a hemisphere name to its registered projection.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	}
	return Variant{}, fmt.Errorf("unknown hemisphere %q (want north or south)", s)
}

// Valid reports whether the variant was produced by NewVariant.
func (v Variant) Valid() bool {
	return v.a > 0
}

// Forward projects geographic coordinates in degrees to projected meters.
func (v Variant) Forward(lonDeg, latDeg float64) (float64, float64) {
	sinAz, cosAz := v.Azimuth(lonDeg)
	return v.PlanarXY(v.PoleDistance(latDeg), sinAz, cosAz)
}

// PoleDistance returns the radial distance from the pole in projected
// meters for a latitude in degrees. It depends on latitude alone, so a
// raster sweep computes it once per row.
func (v Variant) PoleDistance(latDeg float64) float64 {
	lat := latDeg * deg2rad
	ts := tsfn(v.e, v.pole*lat, v.pole*math.Sin(lat))
	return 2 * v.a * v.k0 * ts / v.cons
}

// Azimuth returns the sine and cosine of the offset from the central
// meridian for a longitude in degrees. It depends on longitude alone, so a
// raster sweep computes it once per column.
func (v Variant) Azimuth(lonDeg float64) (float64, float64) {
	dlon := adjustLon(lonDeg*deg2rad - v.lon0)
	return math.Sin(dlon), math.Cos(dlon)
}

// PlanarXY combines a pole distance with an azimuth into projected x/y.
// Forward is exactly this composition, so sweeps that reuse PoleDistance
// per row and Azimuth per column reproduce per-pixel Forward calls bit for
// bit.
func (v Variant) PlanarXY(dist, sinAz, cosAz float64) (float64, float64) {
	return dist * sinAz, -v.pole * dist * cosAz
}

// tsfn is the proj t function: the half-colatitude tangent with the
// ellipsoidal correction. Snyder eq. 15-9. For e == 0 it reduces to
// tan(π/4 - φ/2).
func tsfn(e, phi, sinphi float64) float64 {
	con := e * sinphi
	return math.Tan(0.5*(halfPi-phi)) / math.Pow((1-con)/(1+con), 0.5*e)
}

// msfn is the proj m function: the radius of the parallel of latitude
// relative to the semi-major axis. Snyder eq. 14-15.
func msfn(e, sinphi, cosphi float64) float64 {
	con := e * sinphi
	return cosphi / math.Sqrt(1-con*con)
}

// adjustLon wraps an angle to (-π, π]. A single correction suffices for
// the |x| < 2π offsets that geographic longitudes produce.
func adjustLon(x float64) float64 {
	if math.Abs(x) <= spi {
		return x
	}
	return x - math.Copysign(twoPi, x)
}
