package tray

import (
	"github.com/ayusman/cvgames/internal/launcher"
	"github.com/ayusman/cvgames/internal/motion"
	"github.com/ayusman/cvgames/internal/store"
)

// Presets offered in the menu for the mouse-style controller.
var (
	SensitivityPresets = []float64{1.5, 2.5, 3.5, 5.0}
	SmoothingPresets   = []float64{0.0, 0.25, 0.5, 0.75}
)

// LoadOptions reads the remembered menu selections. Values missing from the
// store fall back to defaults; out-of-range values are clamped.
func LoadOptions(settings *store.SettingsRepository, defaults launcher.Options) launcher.Options {
	if settings == nil {
		return defaults
	}
	o := launcher.Options{
		Camera:      settings.GetInt(store.SettingCamera, defaults.Camera),
		Sensitivity: settings.GetFloat(store.SettingSensitivity, defaults.Sensitivity),
		Smoothing:   settings.GetFloat(store.SettingSmoothing, defaults.Smoothing),
		Test:        defaults.Test,
	}
	if o.Camera < 0 {
		o.Camera = defaults.Camera
	}
	o.Sensitivity = motion.ClampSensitivity(o.Sensitivity)
	o.Smoothing = motion.ClampSmoothing(o.Smoothing)
	return o
}

// SaveOptions remembers the menu selections.
func SaveOptions(settings *store.SettingsRepository, o launcher.Options) error {
	if settings == nil {
		return nil
	}
	if err := settings.SetInt(store.SettingCamera, o.Camera); err != nil {
		return err
	}
	if err := settings.SetFloat(store.SettingSensitivity, o.Sensitivity); err != nil {
		return err
	}
	return settings.SetFloat(store.SettingSmoothing, o.Smoothing)
}
