// Package motion turns hand and body positions into directional controls.
package motion

import (
	"strings"

	"github.com/ayusman/cvgames/internal/gesture"
)

// Direction is a set of directional controls active in one frame.
type Direction uint8

const (
	DirLeft Direction = 1 << iota
	DirRight
	DirUp
	DirDown
)

// Has reports whether every direction in o is set.
func (d Direction) Has(o Direction) bool { return d&o == o && o != 0 }

func (d Direction) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	for _, e := range []struct {
		dir  Direction
		name string
	}{{DirLeft, "left"}, {DirRight, "right"}, {DirUp, "up"}, {DirDown, "down"}} {
		if d&e.dir != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "+")
}

// Bands splits a normalized axis into a low side, a dead zone and a high side.
type Bands struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// DefaultBands returns the 0.4/0.6 split.
func DefaultBands() Bands {
	return Bands{Low: 0.4, High: 0.6}
}

// Directions classifies normalized x and y independently. Values in
// [Low, High] are in the dead zone and produce nothing.
func (b Bands) Directions(x, y float64) Direction {
	var d Direction
	switch {
	case x < b.Low:
		d |= DirLeft
	case x > b.High:
		d |= DirRight
	}
	switch {
	case y < b.Low:
		d |= DirUp
	case y > b.High:
		d |= DirDown
	}
	return d
}

// BandedTracker maps the absolute hand center to directions. It keeps no
// state between frames.
type BandedTracker struct {
	bands Bands
}

// NewBandedTracker creates a tracker over the given bands.
func NewBandedTracker(bands Bands) *BandedTracker {
	return &BandedTracker{bands: bands}
}

// Update classifies the hand center. A nil description yields no direction.
func (t *BandedTracker) Update(d *gesture.HandDescription) Direction {
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return t.bands.Directions(d.Center.X/float64(d.Width), d.Center.Y/float64(d.Height))
}
