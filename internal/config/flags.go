package config

import "flag"

// Target selects which size section -width and -height override.
type Target int

const (
	TargetWindow Target = iota
	TargetSnapshot
)

// Flags are command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config     string
	Debug      bool
	LogFile    string
	Image      string
	Projection string
	Wireframe  bool
	Width      int
	Height     int

	// TargetWindow only.
	Fullscreen bool
	Windowed   bool
	Listen     string

	target Target
}

// RegisterFlags binds the override flags on fs. Call fs.Parse afterwards.
func RegisterFlags(fs *flag.FlagSet, target Target) *Flags {
	f := &Flags{target: target}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write a rotated log file")
	fs.StringVar(&f.Image, "image", "", "Heightmap image to load")
	fs.StringVar(&f.Projection, "projection", "", "perspective or orthographic")
	fs.BoolVar(&f.Wireframe, "wireframe", false, "Draw the wireframe mesh")

	switch target {
	case TargetSnapshot:
		fs.IntVar(&f.Width, "width", 0, "Output width")
		fs.IntVar(&f.Height, "height", 0, "Output height")
	default:
		fs.IntVar(&f.Width, "width", 0, "Window width")
		fs.IntVar(&f.Height, "height", 0, "Window height")
		fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
		fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
		fs.StringVar(&f.Listen, "listen", "", "Serve remote control on this address")
	}
	return f
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Image != "" {
		cfg.Terrain.Image = f.Image
	}
	if f.Projection != "" {
		cfg.View.Projection = f.Projection
	}
	if f.Wireframe {
		cfg.View.Wireframe = true
	}

	width, height := &cfg.Window.Width, &cfg.Window.Height
	if f.target == TargetSnapshot {
		width, height = &cfg.Snapshot.Width, &cfg.Snapshot.Height
	}
	if f.Width > 0 {
		*width = f.Width
	}
	if f.Height > 0 {
		*height = f.Height
	}

	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Listen != "" {
		cfg.Remote.Listen = f.Listen
	}
}
