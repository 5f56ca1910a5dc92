// Package main is the entry point for the interactive terrain viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/remote"
	"github.com/Faultbox/terrainview/internal/session"
	"github.com/Faultbox/terrainview/internal/viewer"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	flags := config.RegisterFlags(flag.CommandLine, config.TargetWindow)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== Terrain View ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s := session.New(session.Config{
		Camera:    cfg.CameraSettings(),
		View:      cfg.FrameConfig(),
		Sliders:   cfg.Sliders(),
		Heightmap: cfg.HeightmapOptions(),
		Logger:    logger.Named("session"),
	})
	if cfg.Terrain.Image != "" {
		// A bad startup image is not fatal; the user can open another.
		_, _ = s.LoadFile(cfg.Terrain.Image)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *remote.Hub
	if cfg.Remote.Listen != "" {
		hub = remote.NewHub(s, logger.Named("remote"))
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Remote.Listen); err != nil {
				logger.Error("remote control stopped", zap.Error(err))
			}
		}()
	}

	var b viewer.Broadcaster
	if hub != nil {
		b = hub
	}
	v, err := viewer.New(cfg, s, b)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return 1
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}
