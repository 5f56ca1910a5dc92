// Package main renders a heightmap to a PNG without a window, using the same
// camera and frame pipeline as the viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/session"
	"github.com/Faultbox/terrainview/internal/snapshot"
	"github.com/Faultbox/terrainview/internal/softrender"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("terrainshot", flag.ExitOnError)
	flags := config.RegisterFlags(fs, config.TargetSnapshot)
	out := fs.String("out", "", "Output PNG (default: timestamped file in the snapshot dir)")
	rotY := fs.Float64("rot-y", 0, "Rotation about Y in degrees")
	rotZ := fs.Float64("rot-z", 0, "Rotation about Z in degrees")
	scale := fs.Float64("scale", 0, "Scale percent")
	heightPct := fs.Float64("height-pct", 0, "Height percent (50 is unscaled)")
	zoomSteps := fs.Int("zoom", 0, "Wheel steps; positive zooms in, negative out")
	supersample := fs.Int("supersample", 0, "Supersampling factor")
	_ = fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	if cfg.Terrain.Image == "" {
		fmt.Fprintln(os.Stderr, "usage: terrainshot -image heightmap.png [flags]")
		fs.PrintDefaults()
		return 2
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	sliders := cfg.Sliders()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rot-y":
			sliders.RotationYDeg = float32(*rotY)
		case "rot-z":
			sliders.RotationZDeg = float32(*rotZ)
		case "scale":
			sliders.ScalePercent = float32(*scale)
		case "height-pct":
			sliders.HeightPercent = float32(*heightPct)
		case "supersample":
			cfg.Snapshot.Supersample = *supersample
		}
	})

	s := session.New(session.Config{
		Camera:    cfg.CameraSettings(),
		View:      cfg.FrameConfig(),
		Sliders:   sliders,
		Heightmap: cfg.HeightmapOptions(),
		Logger:    logger.Named("session"),
	})
	t, err := s.LoadFile(cfg.Terrain.Image)
	if err != nil {
		return 1
	}
	s.Push(wheelEvents(*zoomSteps)...)

	opts := softrender.DefaultOptions()
	opts.Width = cfg.Snapshot.Width
	opts.Height = cfg.Snapshot.Height
	opts.Supersample = cfg.Snapshot.Supersample
	opts.Background = cfg.Snapshot.Background
	opts.Low = cfg.Snapshot.Color

	f, err := s.Tick(opts.Aspect())
	if err != nil {
		return 1
	}
	img, err := softrender.Render(t.Mesh, f.Transforms, opts)
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		return 1
	}

	path := *out
	if path == "" {
		path, err = snapshot.NewWriter(cfg.Snapshot.Dir, "terrain").Save(img)
	} else {
		err = snapshot.WritePNG(path, img)
	}
	if err != nil {
		logger.Error("writing snapshot failed", zap.Error(err))
		return 1
	}
	logger.Info("snapshot written",
		zap.String("path", path),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Int("vertices", t.Mesh.SolidVertices()))
	return 0
}

// wheelEvents turns a signed step count into wheel events.
func wheelEvents(steps int) []camera.Event {
	var events []camera.Event
	for ; steps > 0; steps-- {
		events = append(events, camera.Event{Type: camera.EventWheel, DeltaY: -1})
	}
	for ; steps < 0; steps++ {
		events = append(events, camera.Event{Type: camera.EventWheel, DeltaY: 1})
	}
	return events
}
