// Package gesture classifies hand and body landmarks into discrete control signals.
package gesture

import (
	"math/bits"
	"strings"

	"github.com/ayusman/cvgames/internal/detector"
)

// Finger identifies one digit of a hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// FingerMask is a set of fingers, one bit per Finger.
type FingerMask uint8

// MaskOf builds a mask from the given fingers.
func MaskOf(fingers ...Finger) FingerMask {
	var m FingerMask
	for _, f := range fingers {
		m |= 1 << f
	}
	return m
}

// Has reports whether f is in the mask.
func (m FingerMask) Has(f Finger) bool { return m&(1<<f) != 0 }

// Count returns the number of fingers in the mask.
func (m FingerMask) Count() int { return bits.OnesCount8(uint8(m)) }

func (m FingerMask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for f := Thumb; f < NumFingers; f++ {
		if m.Has(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, "+")
}

// HandDescription is the pixel-space summary of one hand in one frame.
type HandDescription struct {
	Extended      [NumFingers]bool `json:"extended"`
	ExtendedCount int              `json:"extendedCount"`
	Center        detector.Point   `json:"center"`
	Pointer       detector.Point   `json:"pointer"`
	PinchDistance float64          `json:"pinchDistance"`
	Handedness    string           `json:"handedness"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
}

// Mask returns the extended fingers as a set.
func (d *HandDescription) Mask() FingerMask {
	var m FingerMask
	for f, ext := range d.Extended {
		if ext {
			m |= 1 << f
		}
	}
	return m
}

// WithMask returns a description whose extended flags match m. Used to build
// synthetic descriptions.
func WithMask(m FingerMask) HandDescription {
	var d HandDescription
	for f := Thumb; f < NumFingers; f++ {
		d.Extended[f] = m.Has(f)
	}
	d.ExtendedCount = m.Count()
	return d
}

// Position is the horizontal placement of a body relative to the frame center.
type Position int

const (
	Center Position = iota
	Left
	Right
)

func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "center"
	}
}

// PoseDescription is the pixel-space summary of one body in one frame.
type PoseDescription struct {
	Horizontal          Position `json:"horizontal"`
	HandsJoinedDistance float64  `json:"handsJoinedDistance"`
	ShoulderMidY        float64  `json:"shoulderMidY"`
	Width               int      `json:"width"`
	Height              int      `json:"height"`
}

// HandsJoined reports whether the wrists are closer than threshold pixels.
func (d *PoseDescription) HandsJoined(threshold float64) bool {
	return d.HandsJoinedDistance < threshold
}

// Posture is the vertical body state relative to the calibrated shoulder line.
type Posture int

const (
	Standing Posture = iota
	Jumping
	Crouching
)

func (p Posture) String() string {
	switch p {
	case Jumping:
		return "jumping"
	case Crouching:
		return "crouching"
	default:
		return "standing"
	}
}
