// Package detector provides landmark detection interfaces and types for the game controllers.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a normalized landmark position. X and Y are in [0,1] image
// coordinates, Z is relative depth as reported by the detector.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pixel scales a normalized point to pixel coordinates of a width x height frame.
func (p Point3D) Pixel(width, height int) Point {
	return Point{X: p.X * float64(width), Y: p.Y * float64(height)}
}

// Distance returns the Euclidean distance between two pixel points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixels converts every landmark to pixel coordinates.
func (h *HandLandmarks) Pixels(width, height int) [NumLandmarks]Point {
	var out [NumLandmarks]Point
	for i, p := range h.Points {
		out[i] = p.Pixel(width, height)
	}
	return out
}

// Translated returns a copy of the hand moved by (dx, dy) in normalized units.
func (h HandLandmarks) Translated(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
