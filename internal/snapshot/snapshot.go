// Package snapshot writes rendered frames to PNG files.
package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Writer saves frames under a directory with timestamped names.
type Writer struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewWriter creates a writer. An empty dir writes to the working directory.
func NewWriter(dir, prefix string) *Writer {
	return &Writer{
		dir:    dir,
		prefix: prefix,
		now:    time.Now,
	}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// NextPath returns the path the next Save would use. Names that already
// exist get a numeric suffix.
func (w *Writer) NextPath() string {
	stamp := w.now().Format("2006-01-02_15-04-05")
	name := filepath.Join(w.dir, fmt.Sprintf("%s_%s.png", w.prefix, stamp))
	for i := 1; exists(name); i++ {
		name = filepath.Join(w.dir, fmt.Sprintf("%s_%s_%d.png", w.prefix, stamp, i))
	}
	return name
}

// SavePixels flips bottom-up RGBA rows, as read back from OpenGL, and saves
// them.
func (w *Writer) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return w.Save(img)
}

// Save writes img to the next free path and returns it.
func (w *Writer) Save(img image.Image) (string, error) {
	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := w.NextPath()
	if err := WritePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// FlipRows converts width*height*4 bottom-up RGBA bytes into a top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d for %dx%d, got %d",
			width*height*4, width, height, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
