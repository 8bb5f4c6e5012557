package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Mode selects which landmark model the detector runs.
type Mode string

const (
	// ModeHands detects up to MaxHands sets of 21 hand landmarks.
	ModeHands Mode = "hands"
	// ModePose detects one set of 33 body landmarks.
	ModePose Mode = "pose"
)

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected landmarks.
	// A frame without subjects yields an empty Detection, not an error.
	Detect(frame *gocv.Mat) (*Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	Mode Mode

	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity is passed through to MediaPipe (0 fastest, 2 most accurate).
	ModelComplexity int

	// Scale resizes frames before they are sent to the detector. Landmarks are
	// normalized, so callers keep working in full-resolution pixels.
	Scale float64

	// Python and Script override the interpreter and service script lookup.
	Python string
	Script string

	// IdleTimeout stops the detector process after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeHands,
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ModelComplexity: 0,
		Scale:           1.0,
		IdleTimeout:     30 * time.Second,
	}
}
