// Command cvgames is the menu: it picks a camera and launches the game
// controllers from the system tray.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kataras/golog"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/config"
	"github.com/ayusman/cvgames/internal/launcher"
	"github.com/ayusman/cvgames/internal/store"
	"github.com/ayusman/cvgames/internal/tray"
)

var (
	listCameras = flag.Bool("list-cameras", false, "print the usable cameras and exit")
	configPath  = flag.String("config", "", "config file (default ~/.cvgames/config.yaml)")
	testCamera  = flag.Int(tray.PreviewFlag, -1, "show a live preview of camera `N` and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cvgames: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.LoadEnvFiles(".env", filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	golog.SetLevel(cfg.LogLevel)

	if *listCameras {
		cams := capture.ListCameras(cfg.Menu.MaxCameras)
		if len(cams) == 0 {
			fmt.Println("No cameras found")
			return nil
		}
		for _, c := range cams {
			fmt.Println(c)
		}
		return nil
	}

	if *testCamera >= 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return capture.Preview(ctx, capture.NewCamera(*testCamera), fmt.Sprintf("Camera %d", *testCamera))
	}

	binDir := cfg.Menu.BinDir
	if binDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate menu binary: %w", err)
		}
		binDir = filepath.Dir(exe)
	}

	l := launcher.New(binDir)
	if err := l.Discover(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", binDir, err)
	}
	golog.Infof("controllers in %s: %v", binDir, l.Installed())

	var settings *store.SettingsRepository
	st, err := store.New(cfg.DBPath)
	if err != nil {
		golog.Warnf("settings will not be remembered: %v", err)
	} else {
		defer st.Close()
		settings = st.Settings()
	}

	t := tray.New(tray.Config{
		Launcher:   l,
		Settings:   settings,
		MaxCameras: cfg.Menu.MaxCameras,
		Defaults: launcher.Options{
			Camera:      0,
			Sensitivity: cfg.ArcadeMouse.Relative.Sensitivity,
			Smoothing:   cfg.ArcadeMouse.Relative.Smoothing,
		},
	})
	t.Run()
	return nil
}
