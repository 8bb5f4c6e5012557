package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kataras/golog"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/config"
	"github.com/ayusman/cvgames/internal/controller"
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/inject"
	"github.com/ayusman/cvgames/internal/motion"
	"github.com/ayusman/cvgames/internal/server"
	"github.com/ayusman/cvgames/internal/store"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Deps builds the collaborators of a controller. Zero fields use the real
// camera, the MediaPipe service and robotgo.
type Deps struct {
	Camera   func(id, width, height int) capture.Camera
	Detector func(c detector.Config) (detector.Detector, error)
	Injector func(play bool) inject.Injector
	Stdout   io.Writer
	Stderr   io.Writer
}

func (d *Deps) fill() {
	if d.Camera == nil {
		d.Camera = capture.NewCameraWithSize
	}
	if d.Detector == nil {
		d.Detector = func(c detector.Config) (detector.Detector, error) {
			return detector.NewMediaPipeDetector(c)
		}
	}
	if d.Injector == nil {
		d.Injector = func(play bool) inject.Injector {
			if play {
				return inject.NewRobot()
			}
			return inject.Logger{}
		}
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
}

// Main runs the named controller with the process arguments and exits.
func Main(name string) {
	os.Exit(Run(context.Background(), name, os.Args[1:], Deps{}))
}

// Run runs the named controller until it stops and returns the exit code.
// Interrupts and SIGTERM end the run cleanly.
func Run(ctx context.Context, name string, args []string, deps Deps) int {
	deps.fill()

	flags, err := ParseFlags(name, args, deps.Stderr)
	switch {
	case errors.Is(err, ErrNoMode), errors.Is(err, flag.ErrHelp):
		Usage(name, deps.Stdout)
		return ExitOK
	case err != nil:
		fmt.Fprintf(deps.Stderr, "%s: %v\n", name, err)
		return ExitUsage
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "%s: %v\n", name, err)
		return ExitError
	}
	golog.SetLevel(cfg.LogLevel)
	log := golog.Child("[" + name + "]")

	if name == controller.NameArcadeMouse {
		applyMouseFlags(flags, &cfg.ArcadeMouse.Relative, log)
	}

	variant, ok := controller.ByName(name, cfg)
	if !ok {
		fmt.Fprintf(deps.Stderr, "unknown controller %q\n", name)
		return ExitUsage
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.New(cfg.DBPath)
		if err != nil {
			log.Warnf("session history disabled: %v", err)
			st = nil
		} else {
			defer st.Close()
		}
	}

	det, err := deps.Detector(variant.DetectorConfig(cfg.Detector))
	if err != nil {
		log.Errorf("failed to start landmark detector: %v", err)
		return ExitError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *server.Hub
	if cfg.Debug.Addr != "" {
		hub = server.NewHub()
		srv := server.New(server.Config{Hub: hub, Store: st, Variant: name})
		go func() {
			if err := srv.Run(ctx, cfg.Debug.Addr); err != nil {
				log.Errorf("debug server: %v", err)
			}
		}()
	}

	ccfg := controller.Config{
		Variant:    variant,
		CameraID:   flags.Camera,
		Play:       flags.Play,
		ShowWindow: !flags.NoWindow,
		Store:      st,
	}
	// A nil *Hub must not become a non-nil Publisher.
	if hub != nil {
		ccfg.Publisher = hub
	}

	cam := deps.Camera(flags.Camera, variant.Width, variant.Height)
	ctl := controller.New(ccfg, cam, det, deps.Injector(flags.Play))
	if err := ctl.Run(ctx); err != nil {
		log.Errorf("%v", err)
		return ExitError
	}
	return ExitOK
}

func loadConfig(flags *Flags) (*config.Config, error) {
	path := flags.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.LoadEnvFiles(".env", filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.DebugAddr != "" {
		cfg.Debug.Addr = flags.DebugAddr
	}
	return cfg, nil
}

func applyMouseFlags(flags *Flags, rc *motion.RelativeConfig, log *golog.Logger) {
	if flags.IsSet("sensitivity") {
		s := motion.ClampSensitivity(flags.Sensitivity)
		if s != flags.Sensitivity {
			log.Warnf("sensitivity %.2f out of range, using %.2f", flags.Sensitivity, s)
		}
		rc.Sensitivity = s
	}
	if flags.IsSet("smoothing") {
		s := motion.ClampSmoothing(flags.Smoothing)
		if s != flags.Smoothing {
			log.Warnf("smoothing %.2f out of range, using %.2f", flags.Smoothing, s)
		}
		rc.Smoothing = s
	}
}
