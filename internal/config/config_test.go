package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NewFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1280, cfg.Arcade.Width)
	assert.Equal(t, 100*time.Millisecond, cfg.Arcade.Cooldown("shoot"))
	assert.Equal(t, time.Second, cfg.Arcade.Cooldown("barrel_roll"))
	assert.Equal(t, 50*time.Millisecond, cfg.Dash.Cooldown("jump"))
	assert.Equal(t, 2.5, cfg.ArcadeMouse.Relative.Sensitivity)
	assert.Equal(t, 10, cfg.Runner.JoinFrames)
	assert.Equal(t, 15.0, cfg.Runner.Posture.Jump)
	assert.Equal(t, 100.0, cfg.Runner.Posture.Crouch)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "shoot: 100ms")
	assert.Contains(t, string(content), "join_threshold_px: 180")
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Runner.Posture.Jump = 25
	cfg.ArcadeMouse.Relative.Smoothing = 0.8
	cfg.Arcade.Cooldowns["barrel_roll"] = Duration(2 * time.Second)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, loaded.Runner.Posture.Jump)
	assert.Equal(t, 0.8, loaded.ArcadeMouse.Relative.Smoothing)
	assert.Equal(t, 2*time.Second, loaded.Arcade.Cooldown("barrel_roll"))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ndash:\n  pinch_px: 40\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 40.0, cfg.Dash.PinchPx)
	assert.Equal(t, 640, cfg.Dash.Width)
	assert.Equal(t, 10, cfg.Runner.JoinFrames)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "arcade: [unclosed"},
		{"bad duration", "arcade:\n  cooldowns:\n    shoot: soon\n"},
		{"bad bands", "arcade:\n  bands:\n    low: 0.7\n    high: 0.3\n"},
		{"bad resolution", "runner:\n  width: 0\n"},
		{"bad join frames", "runner:\n  join_frames: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CVGAMES_PYTHON", "/opt/venv/bin/python")
	t.Setenv("CVGAMES_LOG_LEVEL", "debug")
	t.Setenv("CVGAMES_DB", "/tmp/x.db")
	t.Setenv("CVGAMES_DEBUG_ADDR", ":9090")

	cfg := DefaultConfig()
	ApplyEnv(cfg)

	assert.Equal(t, "/opt/venv/bin/python", cfg.Detector.Python)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.Debug.Addr)
	assert.Empty(t, cfg.Detector.Script)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CVGAMES_TEST_SCRIPT=/srv/landmark_service.py\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CVGAMES_TEST_SCRIPT") })

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), envPath))
	assert.Equal(t, "/srv/landmark_service.py", os.Getenv("CVGAMES_TEST_SCRIPT"))
}
