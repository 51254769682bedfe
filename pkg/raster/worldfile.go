package raster

import (
	"bytes"
	"fmt"
	"strings"
)

// WorldFile renders the six-line ESRI world file for a north-up raster:
// pixel width, two rotation terms, negative pixel height, then the
// upper-left reference coordinates.
func WorldFile(px, py, minX, maxY float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%24.10f\n", px)
	fmt.Fprintf(&buf, "%24.10f\n", 0.0)
	fmt.Fprintf(&buf, "%24.10f\n", 0.0)
	fmt.Fprintf(&buf, "%24.10f\n", -py)
	fmt.Fprintf(&buf, "%24.10f\n", minX)
	fmt.Fprintf(&buf, "%24.10f\n", maxY)
	return buf.Bytes()
}

// WorldFilePath swaps the image extension for .pgw.
func WorldFilePath(imagePath string) string {
	if idx := strings.LastIndex(imagePath, "."); idx != -1 {
		return imagePath[:idx] + ".pgw"
	}
	return imagePath + ".pgw"
}
