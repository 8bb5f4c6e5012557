package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed
// result or as a queue consumed one frame at a time.
type MockDetector struct {
	mu     sync.Mutex
	result *Detection
	queue  []*Detection
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &Detection{Hands: hands}
}

// SetPoses sets the bodies that will be returned by Detect.
func (m *MockDetector) SetPoses(poses []PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &Detection{Poses: poses}
}

// Queue appends per-frame results. Queued results are returned before the fixed one.
func (m *MockDetector) Queue(dets ...*Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, dets...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued result, the fixed result or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		det := m.queue[0]
		m.queue = m.queue[1:]
		if det == nil {
			det = &Detection{}
		}
		return det, nil
	}
	if m.result == nil {
		return &Detection{}, nil
	}
	return m.result, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the mock as closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type fingerPose struct {
	mcp      Point3D
	extended [3]Point3D // PIP, DIP, tip
	curled   [3]Point3D
}

// Left hand seen in a mirrored frame, palm facing the camera, thumb toward +X.
var fingerPoses = [4]fingerPose{
	{ // index
		mcp:      Point3D{X: 0.55, Y: 0.68},
		extended: [3]Point3D{{X: 0.57, Y: 0.55}, {X: 0.58, Y: 0.45}, {X: 0.58, Y: 0.35}},
		curled:   [3]Point3D{{X: 0.55, Y: 0.64, Z: -0.05}, {X: 0.54, Y: 0.68, Z: -0.04}, {X: 0.54, Y: 0.72, Z: -0.02}},
	},
	{ // middle
		mcp:      Point3D{X: 0.50, Y: 0.66},
		extended: [3]Point3D{{X: 0.50, Y: 0.52}, {X: 0.50, Y: 0.40}, {X: 0.50, Y: 0.28}},
		curled:   [3]Point3D{{X: 0.50, Y: 0.62, Z: -0.05}, {X: 0.49, Y: 0.66, Z: -0.04}, {X: 0.49, Y: 0.70, Z: -0.02}},
	},
	{ // ring
		mcp:      Point3D{X: 0.45, Y: 0.68},
		extended: [3]Point3D{{X: 0.43, Y: 0.55}, {X: 0.42, Y: 0.45}, {X: 0.42, Y: 0.35}},
		curled:   [3]Point3D{{X: 0.45, Y: 0.64, Z: -0.05}, {X: 0.45, Y: 0.68, Z: -0.04}, {X: 0.45, Y: 0.72, Z: -0.02}},
	},
	{ // pinky
		mcp:      Point3D{X: 0.40, Y: 0.70},
		extended: [3]Point3D{{X: 0.37, Y: 0.60}, {X: 0.35, Y: 0.50}, {X: 0.34, Y: 0.42}},
		curled:   [3]Point3D{{X: 0.40, Y: 0.66, Z: -0.05}, {X: 0.41, Y: 0.70, Z: -0.04}, {X: 0.41, Y: 0.74, Z: -0.02}},
	},
}

// FixtureHand builds a left hand with the given fingers extended and the rest curled.
func FixtureHand(thumb, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{Handedness: "Left", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	if thumb {
		// Thumb out to the side
		h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70}
		h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65}
		h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60}
	} else {
		// Thumb folded across the palm
		h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.70}
		h.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.66}
		h.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.68}
	}

	for i, ext := range []bool{index, middle, ring, pinky} {
		base := IndexMCP + 4*i
		fp := fingerPoses[i]
		h.Points[base] = fp.mcp
		joints := fp.curled
		if ext {
			joints = fp.extended
		}
		copy(h.Points[base+1:base+4], joints[:])
	}

	return h
}

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return FixtureHand(false, true, false, false, false)
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return FixtureHand(true, true, true, true, true)
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return FixtureHand(false, false, false, false, false)
}

// ThumbsUpLandmarks returns a hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return FixtureHand(true, false, false, false, false)
}

// PinchLandmarks returns a pointing hand whose thumb tip touches the index tip.
func PinchLandmarks() HandLandmarks {
	h := PointingLandmarks()
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X, Y: tip.Y + 0.02}
	return h
}

// PoseFixture builds a standing body with shoulders centered on centerX at
// height midY (normalized). With joined set, both wrists meet in front of the chest.
func PoseFixture(centerX, midY float64, joined bool) PoseLandmarks {
	p := PoseLandmarks{Score: 0.9}
	for i := range p.Points {
		p.Points[i] = PoseLandmark{X: centerX, Y: midY, Visibility: 0.9}
	}

	p.Points[Nose] = PoseLandmark{X: centerX, Y: midY - 0.15, Visibility: 0.99}
	p.Points[LeftShoulder] = PoseLandmark{X: centerX + 0.1, Y: midY, Visibility: 0.99}
	p.Points[RightShoulder] = PoseLandmark{X: centerX - 0.1, Y: midY, Visibility: 0.99}
	p.Points[LeftHip] = PoseLandmark{X: centerX + 0.07, Y: midY + 0.3, Visibility: 0.9}
	p.Points[RightHip] = PoseLandmark{X: centerX - 0.07, Y: midY + 0.3, Visibility: 0.9}

	if joined {
		p.Points[LeftWrist] = PoseLandmark{X: centerX + 0.01, Y: midY + 0.15, Visibility: 0.95}
		p.Points[RightWrist] = PoseLandmark{X: centerX - 0.01, Y: midY + 0.15, Visibility: 0.95}
	} else {
		p.Points[LeftWrist] = PoseLandmark{X: centerX + 0.25, Y: midY + 0.3, Visibility: 0.95}
		p.Points[RightWrist] = PoseLandmark{X: centerX - 0.25, Y: midY + 0.3, Visibility: 0.95}
	}

	return p
}
