package seaice

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
)

// Chart renders the ice-pixel series as a PNG line chart. The axes carry
// tick marks but no labels; the summary printed alongside gives the scale.
func Chart(recs []Record, width, height int) ([]byte, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("no records to chart")
	}
	if width < 64 || height < 64 {
		return nil, fmt.Errorf("chart size %dx%d too small", width, height)
	}

	const margin = 24.0

	minIce, maxIce := recs[0].IcePixels, recs[0].IcePixels
	for _, r := range recs[1:] {
		if r.IcePixels < minIce {
			minIce = r.IcePixels
		}
		if r.IcePixels > maxIce {
			maxIce = r.IcePixels
		}
	}
	span := float64(maxIce - minIce)
	if span == 0 {
		span = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin

	xAt := func(i int) float64 {
		if len(recs) == 1 {
			return margin + plotW/2
		}
		return margin + float64(i)/float64(len(recs)-1)*plotW
	}
	yAt := func(ice int64) float64 {
		return margin + (1-float64(ice-minIce)/span)*plotH
	}

	// Axes.
	dc.SetColor(color.RGBA{R: 70, G: 70, B: 70, A: 255})
	dc.SetLineWidth(1)
	dc.MoveTo(margin, margin)
	dc.LineTo(margin, float64(height)-margin)
	dc.LineTo(float64(width)-margin, float64(height)-margin)
	dc.Stroke()

	for i := 0; i <= 4; i++ {
		y := margin + plotH*float64(i)/4
		dc.MoveTo(margin-4, y)
		dc.LineTo(margin, y)
		dc.Stroke()

		x := margin + plotW*float64(i)/4
		dc.MoveTo(x, float64(height)-margin)
		dc.LineTo(x, float64(height)-margin+4)
		dc.Stroke()
	}

	// Series line with a dot per observation.
	dc.SetColor(color.RGBA{R: 30, G: 90, B: 200, A: 255})
	dc.SetLineWidth(2)
	for i, r := range recs {
		if i == 0 {
			dc.MoveTo(xAt(i), yAt(r.IcePixels))
		} else {
			dc.LineTo(xAt(i), yAt(r.IcePixels))
		}
	}
	dc.Stroke()

	for i, r := range recs {
		dc.DrawCircle(xAt(i), yAt(r.IcePixels), 2)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
