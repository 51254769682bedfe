package raster

import "testing"

// quad builds a 2x2 image from four RGBA pixels in row-major order.
func quad(p00, p10, p01, p11 [4]byte) *Image {
	im := New(2, 2)
	copy(im.Pix[0:4], p00[:])
	copy(im.Pix[4:8], p10[:])
	copy(im.Pix[8:12], p01[:])
	copy(im.Pix[12:16], p11[:])
	return im
}

func TestBilinearExactAtGridPoints(t *testing.T) {
	p00 := [4]byte{10, 20, 30, 255}
	p10 := [4]byte{200, 0, 0, 255}
	p01 := [4]byte{0, 200, 0, 128}
	p11 := [4]byte{0, 0, 200, 0}
	im := quad(p00, p10, p01, p11)

	tests := []struct {
		fx, fy float64
		want   [4]byte
	}{
		{0, 0, p00},
		{1, 0, p10},
		{0, 1, p01},
		{1, 1, p11},
	}

	for _, tc := range tests {
		if got := Bilinear(im, tc.fx, tc.fy); got != tc.want {
			t.Errorf("Bilinear(%v, %v) = %v, want %v", tc.fx, tc.fy, got, tc.want)
		}
	}
}

func TestBilinearMidpointTruncates(t *testing.T) {
	// A 0/255 checkerboard blends to 127.5 in every channel at the cell
	// center; byte conversion truncates to 127.
	im := quad(
		[4]byte{0, 0, 0, 0},
		[4]byte{255, 255, 255, 255},
		[4]byte{255, 255, 255, 255},
		[4]byte{0, 0, 0, 0},
	)

	got := Bilinear(im, 0.5, 0.5)
	want := [4]byte{127, 127, 127, 127}
	if got != want {
		t.Errorf("Bilinear(0.5, 0.5) = %v, want %v", got, want)
	}
}

func TestBilinearHorizontalBlend(t *testing.T) {
	im := New(3, 1)
	copy(im.Pix, []byte{
		0, 0, 0, 255, 100, 100, 100, 255, 200, 200, 200, 255,
	})

	tests := []struct {
		fx   float64
		want byte
	}{
		{0, 0},
		{0.25, 25},
		{0.999, 99}, // 99.9 truncates
		{1, 100},
		{1.5, 150},
		{2, 200},
	}

	for _, tc := range tests {
		got := Bilinear(im, tc.fx, 0)
		if got[0] != tc.want || got[1] != tc.want || got[2] != tc.want {
			t.Errorf("Bilinear(%v, 0) = %v, want gray %d", tc.fx, got, tc.want)
		}
		if got[3] != 255 {
			t.Errorf("Bilinear(%v, 0) alpha = %d, want 255", tc.fx, got[3])
		}
	}
}

func TestBilinearEdgeClamp(t *testing.T) {
	p10 := [4]byte{100, 0, 0, 255}
	p11 := [4]byte{200, 0, 0, 255}
	im := quad([4]byte{0, 0, 0, 255}, p10, [4]byte{0, 0, 0, 255}, p11)

	// On the right edge only the last column contributes.
	got := Bilinear(im, 1, 0.5)
	if got[0] != 150 {
		t.Errorf("Right-edge blend = %v, want red 150", got)
	}

	// The far corner must clamp instead of reading past the buffer.
	if got := Bilinear(im, 1, 1); got != p11 {
		t.Errorf("Corner sample = %v, want %v", got, p11)
	}
}

func TestBilinearSinglePixel(t *testing.T) {
	im := New(1, 1)
	copy(im.Pix, []byte{7, 8, 9, 255})

	if got := Bilinear(im, 0, 0); got != [4]byte{7, 8, 9, 255} {
		t.Errorf("1x1 sample = %v, want the only pixel", got)
	}
}
