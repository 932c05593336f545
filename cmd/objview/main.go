// objview loads a Wavefront OBJ model and renders it in a preview window.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/wavefront/internal/config"
	"github.com/Faultbox/wavefront/internal/logger"
	"github.com/Faultbox/wavefront/internal/resource"
	"github.com/Faultbox/wavefront/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objview [options] <file.obj>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	win, err := viewer.OpenWindow(viewer.WindowConfig{
		Title:      "objview - " + filepath.Base(path),
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		logger.Log.Fatal("opening window", zap.Error(err))
	}
	defer win.Close()

	mgr := resource.NewManager()
	mgr.SetLogger(logger.Log)
	mgr.Register(resource.NewOBJPlugin(mgr))
	for _, p := range cfg.Loader.SearchPaths {
		mgr.PushPath(p)
	}
	// Texture upload needs the GL context, so the creator is registered
	// after the window exists.
	mgr.SetTextureCreator(viewer.CreateTexture)

	res, err := mgr.Load(path)
	if err != nil {
		logger.Log.Fatal("loading model", zap.String("file", path), zap.Error(err))
	}
	defer res.Unload()

	mesh := res.Mesh()
	logger.Log.Info("model ready",
		zap.String("file", path),
		zap.Int("faces", mesh.FaceCount()),
	)
	if mesh.FaceCount() == 0 {
		logger.Log.Warn("mesh is empty, nothing to draw", zap.String("file", path))
	}

	if err := viewer.Run(win, mesh); err != nil {
		logger.Log.Fatal("viewer error", zap.Error(err))
	}
}
