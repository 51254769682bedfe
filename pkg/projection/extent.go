package projection

import (
	"fmt"
	"strconv"
	"strings"
)

// Extent is an axis-aligned rectangle in projected meters.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Valid reports whether both spans are positive. NaN bounds fail the
// comparisons and are rejected.
func (e Extent) Valid() bool {
	return e.MaxX > e.MinX && e.MaxY > e.MinY
}

// Width returns the horizontal span in meters.
func (e Extent) Width() float64 {
	return e.MaxX - e.MinX
}

// Height returns the vertical span in meters.
func (e Extent) Height() float64 {
	return e.MaxY - e.MinY
}

// ParseExtent parses an extent given as "minx,miny,maxx,maxy".
func ParseExtent(s string) (Extent, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Extent{}, fmt.Errorf("extent must be minx,miny,maxx,maxy, got %q", s)
	}

	var vals [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Extent{}, fmt.Errorf("extent component %d: %w", i+1, err)
		}
		vals[i] = v
	}

	ext := Extent{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if !ext.Valid() {
		return Extent{}, fmt.Errorf("extent %q has an empty span", s)
	}
	return ext, nil
}
