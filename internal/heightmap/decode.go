package heightmap

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Options controls image ingestion.
type Options struct {
	// MaxDimension caps the longer image side; larger images are downsampled
	// (aspect preserved) before extraction. Zero disables the cap.
	MaxDimension int
}

// Decode reads an encoded image and extracts its height field.
// It returns the registered format name ("png", "jpeg", "bmp", ...).
func Decode(r io.Reader, opts Options) (*HeightField, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %v: %w", err, ErrUnsupportedImage)
	}

	img = limit(img, opts.MaxDimension)

	hf, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return hf, format, nil
}

// Load opens and decodes an image file.
func Load(path string, opts Options) (*HeightField, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	hf, format, err := Decode(f, opts)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}
	return hf, format, nil
}

// limit downsamples img so neither side exceeds maxDim.
func limit(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Bilinear)
}
