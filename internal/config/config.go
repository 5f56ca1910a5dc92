// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/heightmap"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/pkg/math"
)

// Config holds all settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	View     ViewConfig     `yaml:"view"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Remote   RemoteConfig   `yaml:"remote"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds input gains and the fixed viewing setup.
type CameraConfig struct {
	RotateSensitivity float32   `yaml:"rotate_sensitivity"`
	PanSensitivity    float32   `yaml:"pan_sensitivity"`
	ZoomIn            float32   `yaml:"zoom_in"`
	ZoomOut           float32   `yaml:"zoom_out"`
	Eye               []float32 `yaml:"eye,flow"`
	Target            []float32 `yaml:"target,flow"`
	FovDeg            float32   `yaml:"fov_deg"`
	Near              float32   `yaml:"near"`
	Far               float32   `yaml:"far"`
	OrthoHalfExtent   float32   `yaml:"ortho_half_extent"`
}

// TerrainConfig holds heightmap ingestion settings.
type TerrainConfig struct {
	Image        string `yaml:"image"`         // loaded at startup if set
	MaxDimension int    `yaml:"max_dimension"` // 0 keeps full resolution
}

// ViewConfig holds the initial slider values.
type ViewConfig struct {
	RotationYDeg  float32 `yaml:"rotation_y_deg"`
	RotationZDeg  float32 `yaml:"rotation_z_deg"`
	ScalePercent  float32 `yaml:"scale_percent"`
	HeightPercent float32 `yaml:"height_percent"`
	Projection    string  `yaml:"projection"`
	Wireframe     bool    `yaml:"wireframe"`
}

// SnapshotConfig holds PNG output settings for the viewer and terrainshot.
type SnapshotConfig struct {
	Dir         string `yaml:"dir"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	Background  string `yaml:"background"`
	Color       string `yaml:"color"`
}

// RemoteConfig holds the websocket endpoint settings.
type RemoteConfig struct {
	Listen string `yaml:"listen"` // empty disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Terrain View",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			RotateSensitivity: 0.01,
			PanSensitivity:    0.01,
			ZoomIn:            1.1,
			ZoomOut:           0.9,
			Eye:               []float32{0, 5, 5},
			Target:            []float32{0, 0, 0},
			FovDeg:            70,
			Near:              0.001,
			Far:               20,
			OrthoHalfExtent:   3,
		},
		View: ViewConfig{
			ScalePercent:  100,
			HeightPercent: 50,
			Projection:    "perspective",
		},
		Snapshot: SnapshotConfig{
			Dir:         "screenshots",
			Width:       800,
			Height:      600,
			Supersample: 2,
			Background:  "#333333",
			Color:       "#8fbf6f",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Snapshot.Width <= 0 || c.Snapshot.Height <= 0 {
		return fmt.Errorf("snapshot size %dx%d must be positive", c.Snapshot.Width, c.Snapshot.Height)
	}
	if c.Snapshot.Supersample < 1 {
		return fmt.Errorf("snapshot supersample %d must be at least 1", c.Snapshot.Supersample)
	}
	if len(c.Camera.Eye) != 3 || len(c.Camera.Target) != 3 {
		return fmt.Errorf("camera eye and target need 3 components, got %d and %d",
			len(c.Camera.Eye), len(c.Camera.Target))
	}
	if !(c.Camera.Near > 0) || !(c.Camera.Far > c.Camera.Near) {
		return fmt.Errorf("camera near=%v far=%v: %w", c.Camera.Near, c.Camera.Far, math.ErrInvalidProjectionParams)
	}
	if !(c.Camera.FovDeg > 0) || !(c.Camera.FovDeg < 180) {
		return fmt.Errorf("camera fov_deg=%v must be in (0, 180): %w", c.Camera.FovDeg, math.ErrInvalidProjectionParams)
	}
	if !(c.Camera.OrthoHalfExtent > 0) {
		return fmt.Errorf("camera ortho_half_extent=%v must be positive: %w",
			c.Camera.OrthoHalfExtent, math.ErrInvalidProjectionParams)
	}
	if err := c.checkView(); err != nil {
		return err
	}
	if !(c.Camera.ZoomIn > 0) || !(c.Camera.ZoomOut > 0) {
		return fmt.Errorf("zoom factors %v/%v must be positive", c.Camera.ZoomIn, c.Camera.ZoomOut)
	}
	if c.Terrain.MaxDimension < 0 {
		return fmt.Errorf("terrain max_dimension %d is negative", c.Terrain.MaxDimension)
	}
	if _, err := frame.ParseProjection(c.View.Projection); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// checkView composes one frame per projection so a view that can never be
// drawn is rejected at load time.
func (c *Config) checkView() error {
	composer := frame.NewComposer(c.FrameConfig())
	sliders := frame.DefaultSliders()
	for _, mode := range []frame.ProjectionMode{frame.Perspective, frame.Orthographic} {
		sliders.Projection = mode
		if _, err := composer.Compose(camera.DefaultState(), sliders, 1); err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	}
	return nil
}

// CameraSettings returns the input gains.
func (c *Config) CameraSettings() camera.Settings {
	return camera.Settings{
		RotateSensitivity: c.Camera.RotateSensitivity,
		PanSensitivity:    c.Camera.PanSensitivity,
		ZoomInFactor:      c.Camera.ZoomIn,
		ZoomOutFactor:     c.Camera.ZoomOut,
	}
}

// FrameConfig returns the viewing parameters. Validate first.
func (c *Config) FrameConfig() frame.Config {
	return frame.Config{
		Eye:             math.V3(c.Camera.Eye[0], c.Camera.Eye[1], c.Camera.Eye[2]),
		Target:          math.V3(c.Camera.Target[0], c.Camera.Target[1], c.Camera.Target[2]),
		FovYDeg:         c.Camera.FovDeg,
		Near:            c.Camera.Near,
		Far:             c.Camera.Far,
		OrthoHalfExtent: c.Camera.OrthoHalfExtent,
	}
}

// Sliders returns the initial slider values. Validate first.
func (c *Config) Sliders() frame.Sliders {
	proj, _ := frame.ParseProjection(c.View.Projection)
	return frame.Sliders{
		RotationYDeg:  c.View.RotationYDeg,
		RotationZDeg:  c.View.RotationZDeg,
		ScalePercent:  c.View.ScalePercent,
		HeightPercent: c.View.HeightPercent,
		Projection:    proj,
		Wireframe:     c.View.Wireframe,
	}
}

// HeightmapOptions returns the image ingestion options.
func (c *Config) HeightmapOptions() heightmap.Options {
	return heightmap.Options{MaxDimension: c.Terrain.MaxDimension}
}
