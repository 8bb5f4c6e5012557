// Package cli implements the command line shared by the controller binaries.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ayusman/cvgames/internal/controller"
)

// ErrNoMode is returned when neither --play nor --test was given.
var ErrNoMode = errors.New("choose --play or --test")

// Flags are the parsed controller options.
type Flags struct {
	Play       bool
	Test       bool
	Camera     int
	ConfigPath string
	NoWindow   bool
	DebugAddr  string
	LogLevel   string

	// Mouse tuning, registered for arcade-mouse only. Zero means use the config.
	Sensitivity float64
	Smoothing   float64
	// set records which flags were given explicitly.
	set map[string]bool
}

// IsSet reports whether the named flag was given on the command line.
func (f *Flags) IsSet(name string) bool {
	return f.set[name]
}

func newFlagSet(name string, f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.BoolVar(&f.Play, "play", false, "inject keyboard input into the focused game")
	fs.BoolVar(&f.Test, "test", false, "diagnostics mode: show detection, inject nothing")
	fs.IntVar(&f.Camera, "camera", 0, "camera device index")
	fs.StringVar(&f.ConfigPath, "config", "", "config file (default ~/.cvgames/config.yaml)")
	fs.BoolVar(&f.NoWindow, "no-window", false, "run without the overlay window")
	fs.StringVar(&f.DebugAddr, "debug-addr", "", "serve the debug API on this address, e.g. :8090")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	if name == controller.NameArcadeMouse {
		fs.Float64Var(&f.Sensitivity, "sensitivity", 0, "cursor sensitivity (0.5-5)")
		fs.Float64Var(&f.Smoothing, "smoothing", 0, "cursor smoothing (0-1)")
	}
	return fs
}

// Usage writes the flag summary for the named controller to w.
func Usage(name string, w io.Writer) {
	fs := newFlagSet(name, &Flags{})
	fs.SetOutput(w)
	fmt.Fprintf(w, "Usage: %s --play|--test [options]\n\n", name)
	fs.PrintDefaults()
}

// ParseFlags parses args for the named controller. Parse errors are described
// on stderr. ErrNoMode is returned when no mode was selected.
func ParseFlags(name string, args []string, stderr io.Writer) (*Flags, error) {
	f := &Flags{set: make(map[string]bool)}
	fs := newFlagSet(name, f)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if f.Play && f.Test {
		return nil, errors.New("--play and --test are mutually exclusive")
	}
	if !f.Play && !f.Test {
		return nil, ErrNoMode
	}
	if f.Camera < 0 {
		return nil, fmt.Errorf("invalid camera index %d", f.Camera)
	}
	return f, nil
}
