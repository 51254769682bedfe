package raster

// Bilinear samples the image at fractional pixel coordinates. fx must lie
// in [0, Width-1] and fy in [0, Height-1]; the caller guarantees the
// range. The lower/right neighbors clamp to the last column and row, so
// samples on the far edges never read out of bounds. Channel values
// truncate to bytes.
func Bilinear(img *Image, fx, fy float64) [4]byte {
	x0 := int(fx)
	y0 := int(fy)

	x1 := x0 + 1
	if x1 > img.Width-1 {
		x1 = img.Width - 1
	}
	y1 := y0 + 1
	if y1 > img.Height-1 {
		y1 = img.Height - 1
	}

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	i00 := (y0*img.Width + x0) * 4
	i10 := (y0*img.Width + x1) * 4
	i01 := (y1*img.Width + x0) * 4
	i11 := (y1*img.Width + x1) * 4

	var px [4]byte
	for c := 0; c < 4; c++ {
		top := float64(img.Pix[i00+c]) + (float64(img.Pix[i10+c])-float64(img.Pix[i00+c]))*tx
		bot := float64(img.Pix[i01+c]) + (float64(img.Pix[i11+c])-float64(img.Pix[i01+c]))*tx
		px[c] = byte(top + (bot-top)*ty)
	}
	return px
}
