// Package launcher starts game controllers as separate processes.
package launcher

import (
	"strconv"
)

// Options are the menu selections passed to a controller.
type Options struct {
	Camera      int
	Sensitivity float64
	Smoothing   float64
	// Test runs the controller without input injection.
	Test bool
}

// Game describes one launchable controller. Each controller accepts its own
// argument list, so Args is per game.
type Game struct {
	ID     string
	Title  string
	Binary string
	Args   func(o Options) []string
}

func modeFlag(o Options) string {
	if o.Test {
		return "--test"
	}
	return "--play"
}

// cameraArgs passes the camera as a separate argument.
func cameraArgs(o Options) []string {
	return []string{modeFlag(o), "--camera", strconv.Itoa(o.Camera)}
}

// mouseArgs uses the key=value form for every flag.
func mouseArgs(o Options) []string {
	return []string{
		modeFlag(o),
		"--camera=" + strconv.Itoa(o.Camera),
		"--sensitivity=" + strconv.FormatFloat(o.Sensitivity, 'f', -1, 64),
		"--smoothing=" + strconv.FormatFloat(o.Smoothing, 'f', -1, 64),
	}
}

// Games returns the launchable controllers in menu order.
func Games() []Game {
	return []Game{
		{ID: "arcade", Title: "Space Shooter (hand zones)", Binary: "arcade", Args: cameraArgs},
		{ID: "arcade-mouse", Title: "Space Shooter (hand mouse)", Binary: "arcade-mouse", Args: mouseArgs},
		{ID: "dash", Title: "Rhythm Dash", Binary: "dash", Args: cameraArgs},
		{ID: "runner", Title: "Endless Runner", Binary: "runner", Args: cameraArgs},
	}
}
