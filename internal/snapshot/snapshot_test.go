package snapshot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFlipRows(t *testing.T) {
	// Two rows, bottom row red, top row blue, in OpenGL order.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255, // bottom
		0, 0, 255, 255, 0, 0, 255, 255, // top
	}
	img, err := FlipRows(pixels, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("top-left = %v, want blue", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("bottom-right = %v, want red", got)
	}
}

func TestFlipRowsSizeMismatch(t *testing.T) {
	if _, err := FlipRows(make([]byte, 15), 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := FlipRows(nil, 0, 0); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestSavePixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	w := NewWriter(dir, "terrain")
	w.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	pixels := make([]byte, 4*3*4)
	first, err := w.SavePixels(pixels, 4, 3)
	if err != nil {
		t.Fatalf("SavePixels: %v", err)
	}
	second, err := w.SavePixels(pixels, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(first) != "terrain_2024-05-01_12-30-00.png" {
		t.Errorf("first = %s", first)
	}
	if first == second || !strings.HasSuffix(second, "_1.png") {
		t.Errorf("second = %s, want a suffixed name", second)
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("png is %dx%d, want 4x3", cfg.Width, cfg.Height)
	}
}

func TestSaveImage(t *testing.T) {
	w := NewWriter(t.TempDir(), "shot")
	path, err := w.Save(image.NewGray(image.Rect(0, 0, 5, 5)))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != w.Dir() {
		t.Errorf("saved to %s, want under %s", path, w.Dir())
	}
}
