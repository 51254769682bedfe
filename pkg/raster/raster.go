package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/tiff"
)

// Image is a decoded raster: row-major RGBA, four bytes per pixel.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a fully transparent image.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Validate checks the structural invariants the samplers rely on.
func (im *Image) Validate() error {
	if im == nil {
		return fmt.Errorf("nil image")
	}
	if im.Width < 1 || im.Height < 1 {
		return fmt.Errorf("degenerate image dimensions %dx%d", im.Width, im.Height)
	}
	if want := im.Width * im.Height * 4; len(im.Pix) != want {
		return fmt.Errorf("pixel buffer is %d bytes, want %d", len(im.Pix), want)
	}
	return nil
}

// Decode detects the image format from magic bytes and decodes to RGBA.
// PNG, JPEG and TIFF (the NSIDC archive serves GeoTIFF) are recognized.
func Decode(data []byte) (*Image, error) {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}):
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}
		return fromImage(img), nil

	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}):
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode jpeg: %w", err)
		}
		return fromImage(img), nil

	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.Equal(data[:4], []byte{0x4D, 0x4D, 0x00, 0x2A})):
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode tiff: %w", err)
		}
		return fromImage(img), nil
	}

	return nil, fmt.Errorf("unrecognized image format")
}

// fromImage converts any decoded image to the flat RGBA layout. Formats
// without an alpha channel come out fully opaque.
func fromImage(img image.Image) *Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*width + x) * 4
			out.Pix[idx] = byte(r >> 8)
			out.Pix[idx+1] = byte(g >> 8)
			out.Pix[idx+2] = byte(b >> 8)
			out.Pix[idx+3] = byte(a >> 8)
		}
	}
	return out
}

// EncodePNG encodes the image for transport or disk.
func (im *Image) EncodePNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	copy(img.Pix, im.Pix)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
