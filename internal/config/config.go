// Package config loads the cvgames YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/cvgames/internal/gesture"
	"github.com/ayusman/cvgames/internal/motion"
)

// Config is the root configuration object. It is built once in main and
// passed down to the components that need it.
type Config struct {
	LogLevel    string         `yaml:"log_level"`
	DBPath      string         `yaml:"db_path"`
	Detector    DetectorConfig `yaml:"detector"`
	Debug       DebugConfig    `yaml:"debug"`
	Menu        MenuConfig     `yaml:"menu"`
	Arcade      Controller     `yaml:"arcade"`
	ArcadeMouse MouseConfig    `yaml:"arcade_mouse"`
	Dash        Controller     `yaml:"dash"`
	Runner      RunnerConfig   `yaml:"runner"`
}

// DetectorConfig configures the landmark service process.
type DetectorConfig struct {
	Python          string   `yaml:"python"`
	Script          string   `yaml:"script"`
	MinDetection    float64  `yaml:"min_detection"`
	MinTracking     float64  `yaml:"min_tracking"`
	ModelComplexity int      `yaml:"model_complexity"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
}

// DebugConfig configures the optional debug HTTP server.
type DebugConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string `yaml:"addr"`
}

// MenuConfig configures the launcher menu.
type MenuConfig struct {
	// BinDir holds the controller binaries; empty means next to the menu binary.
	BinDir     string `yaml:"bin_dir"`
	MaxCameras int    `yaml:"max_cameras"`
}

// Controller holds the settings shared by every controller variant.
type Controller struct {
	Width          int                 `yaml:"width"`
	Height         int                 `yaml:"height"`
	DetectScale    float64             `yaml:"detect_scale"`
	FingerMarginPx float64             `yaml:"finger_margin_px"`
	ThumbMarginPx  float64             `yaml:"thumb_margin_px"`
	PinchPx        float64             `yaml:"pinch_px,omitempty"`
	Bands          motion.Bands        `yaml:"bands"`
	Cooldowns      map[string]Duration `yaml:"cooldowns"`
}

// Cooldown returns the configured cooldown for an action, or zero.
func (c Controller) Cooldown(action string) time.Duration {
	return time.Duration(c.Cooldowns[action])
}

// MouseConfig adds relative tracking to the arcade controller.
type MouseConfig struct {
	Controller `yaml:",inline"`
	Relative   motion.RelativeConfig `yaml:"relative"`
}

// RunnerConfig adds the body session settings.
type RunnerConfig struct {
	Controller      `yaml:",inline"`
	JoinFrames      int                 `yaml:"join_frames"`
	JoinThresholdPx float64             `yaml:"join_threshold_px"`
	Posture         gesture.PostureBand `yaml:"posture"`
	ClickX          int                 `yaml:"click_x"`
	ClickY          int                 `yaml:"click_y"`
}

func arcadeCooldowns() map[string]Duration {
	return map[string]Duration{
		"shoot":       Duration(100 * time.Millisecond),
		"barrel_roll": Duration(time.Second),
		"start":       Duration(500 * time.Millisecond),
		"select":      Duration(500 * time.Millisecond),
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		DBPath:   filepath.Join(defaultDir(), "cvgames.db"),
		Detector: DetectorConfig{
			MinDetection:    0.5,
			MinTracking:     0.5,
			ModelComplexity: 0,
			IdleTimeout:     Duration(30 * time.Second),
		},
		Menu: MenuConfig{MaxCameras: 10},
		Arcade: Controller{
			Width:         1280,
			Height:        960,
			DetectScale:   1.0,
			ThumbMarginPx: 40,
			Bands:         motion.DefaultBands(),
			Cooldowns:     arcadeCooldowns(),
		},
		ArcadeMouse: MouseConfig{
			Controller: Controller{
				Width:         640,
				Height:        480,
				DetectScale:   0.5,
				ThumbMarginPx: 20,
				Bands:         motion.DefaultBands(),
				Cooldowns:     arcadeCooldowns(),
			},
			Relative: motion.DefaultRelativeConfig(),
		},
		Dash: Controller{
			Width:          640,
			Height:         480,
			DetectScale:    0.5,
			FingerMarginPx: 30,
			ThumbMarginPx:  20,
			PinchPx:        30,
			Bands:          motion.DefaultBands(),
			Cooldowns: map[string]Duration{
				"jump": Duration(50 * time.Millisecond),
			},
		},
		Runner: RunnerConfig{
			Controller: Controller{
				Width:       640,
				Height:      480,
				DetectScale: 1.0,
				Bands:       motion.DefaultBands(),
				Cooldowns:   map[string]Duration{},
			},
			JoinFrames:      10,
			JoinThresholdPx: 180,
			Posture:         gesture.DefaultPostureBand(),
			ClickX:          1300,
			ClickY:          800,
		},
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cvgames"
	}
	return filepath.Join(home, ".cvgames")
}

// DefaultPath returns ~/.cvgames/config.yaml.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# cvgames configuration
# Durations use Go syntax: 50ms, 1s, 1m30s
# Pixel values refer to the full camera resolution of each controller.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with CVGAMES_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("CVGAMES_PYTHON"); v != "" {
		cfg.Detector.Python = v
	}
	if v := os.Getenv("CVGAMES_SCRIPT"); v != "" {
		cfg.Detector.Script = v
	}
	if v := os.Getenv("CVGAMES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CVGAMES_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CVGAMES_DEBUG_ADDR"); v != "" {
		cfg.Debug.Addr = v
	}
}

// Validate rejects values the controllers cannot run with.
func (c *Config) Validate() error {
	for name, ctl := range map[string]Controller{
		"arcade":       c.Arcade,
		"arcade_mouse": c.ArcadeMouse.Controller,
		"dash":         c.Dash,
		"runner":       c.Runner.Controller,
	} {
		if ctl.Width <= 0 || ctl.Height <= 0 {
			return fmt.Errorf("%s: invalid resolution %dx%d", name, ctl.Width, ctl.Height)
		}
		if ctl.Bands.Low >= ctl.Bands.High {
			return fmt.Errorf("%s: bands low %.2f must be below high %.2f", name, ctl.Bands.Low, ctl.Bands.High)
		}
	}
	if c.Runner.JoinFrames < 1 {
		return fmt.Errorf("runner: join_frames must be at least 1, got %d", c.Runner.JoinFrames)
	}
	return nil
}
