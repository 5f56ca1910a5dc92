// Package heightmap turns decoded images into single-channel height fields.
package heightmap

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrUnsupportedImage is returned when an image cannot be decoded or is too
// small to form a terrain grid.
var ErrUnsupportedImage = errors.New("unsupported image")

// MinDimension is the smallest width or height that yields at least one grid cell.
const MinDimension = 2

// BT.709 luma coefficients.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// HeightField is a row-major grid of luminance samples in [0,1].
// Samples[y*Width+x] is the sample for pixel (x, y).
type HeightField struct {
	Width   int
	Height  int
	Samples []float32
}

// At returns the sample at column x, row y.
func (hf *HeightField) At(x, y int) float32 {
	return hf.Samples[y*hf.Width+x]
}

// Range returns the smallest and largest sample.
func (hf *HeightField) Range() (lo, hi float32) {
	if len(hf.Samples) == 0 {
		return 0, 0
	}
	lo, hi = hf.Samples[0], hf.Samples[0]
	for _, s := range hf.Samples[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// Luminance converts an RGB pixel to a height in [0,1].
func Luminance(r, g, b uint8) float32 {
	return float32((lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)) / 255)
}

// FromPixels extracts a height field from row-major RGBA bytes (4 per pixel).
// Alpha is ignored.
func FromPixels(width, height int, pix []byte) (*HeightField, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%d: %w",
			len(pix), width*height*4, width, height, ErrUnsupportedImage)
	}

	samples := make([]float32, width*height)
	for i := range samples {
		o := i * 4
		samples[i] = Luminance(pix[o], pix[o+1], pix[o+2])
	}

	return &HeightField{Width: width, Height: height, Samples: samples}, nil
}

// FromImage extracts a height field from any decoded image. The image is read
// back as non-premultiplied RGBA, the same bytes a 2D canvas would return.
func FromImage(img image.Image) (*HeightField, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", ErrUnsupportedImage)
	}
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	// A sub-image keeps its parent's Pix, so only the leading rows belong to it.
	n := b.Dx() * b.Dy() * 4
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) || len(nrgba.Pix) < n {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	return FromPixels(b.Dx(), b.Dy(), nrgba.Pix[:n])
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("empty image %dx%d: %w", width, height, ErrUnsupportedImage)
	}
	if width < MinDimension || height < MinDimension {
		return fmt.Errorf("image %dx%d is narrower than %d pixels: %w",
			width, height, MinDimension, ErrUnsupportedImage)
	}
	return nil
}
