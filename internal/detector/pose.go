package detector

// Pose landmark indices following the MediaPipe BlazePose topology.
const (
	Nose             = 0
	LeftEyeInner     = 1
	LeftEye          = 2
	LeftEyeOuter     = 3
	RightEyeInner    = 4
	RightEye         = 5
	RightEyeOuter    = 6
	LeftEar          = 7
	RightEar         = 8
	MouthLeft        = 9
	MouthRight       = 10
	LeftShoulder     = 11
	RightShoulder    = 12
	LeftElbow        = 13
	RightElbow       = 14
	LeftWrist        = 15
	RightWrist       = 16
	LeftPinky        = 17
	RightPinky       = 18
	LeftIndex        = 19
	RightIndex       = 20
	LeftThumb        = 21
	RightThumb       = 22
	LeftHip          = 23
	RightHip         = 24
	LeftKnee         = 25
	RightKnee        = 26
	LeftAnkle        = 27
	RightAnkle       = 28
	LeftHeel         = 29
	RightHeel        = 30
	LeftFootIndex    = 31
	RightFootIndex   = 32
	NumPoseLandmarks = 33
)

// PoseLandmark is a normalized body keypoint with the detector's visibility estimate.
type PoseLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Pixel scales the landmark to pixel coordinates of a width x height frame.
func (p PoseLandmark) Pixel(width, height int) Point {
	return Point{X: p.X * float64(width), Y: p.Y * float64(height)}
}

// PoseLandmarks represents the 33 body landmarks of one detected person.
type PoseLandmarks struct {
	Points [NumPoseLandmarks]PoseLandmark `json:"points"`
	Score  float64                        `json:"score"`
}

// Detection is the detector output for a single frame.
type Detection struct {
	Hands []HandLandmarks `json:"hands,omitempty"`
	Poses []PoseLandmarks `json:"poses,omitempty"`
}

// FirstHand returns the first detected hand, or nil when there is none.
// Frames with several hands are not merged.
func (d *Detection) FirstHand() *HandLandmarks {
	if d == nil || len(d.Hands) == 0 {
		return nil
	}
	return &d.Hands[0]
}

// FirstPose returns the first detected body, or nil when there is none.
func (d *Detection) FirstPose() *PoseLandmarks {
	if d == nil || len(d.Poses) == 0 {
		return nil
	}
	return &d.Poses[0]
}
