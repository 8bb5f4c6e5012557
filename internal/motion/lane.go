package motion

import "github.com/ayusman/cvgames/internal/gesture"

// Lanes in the endless runner.
const (
	LaneLeft   = 0
	LaneCenter = 1
	LaneRight  = 2
)

// LaneTracker follows the runner's lane and emits one move per lane change.
// The game starts in the center lane.
type LaneTracker struct {
	lane int
}

// NewLaneTracker creates a tracker in the center lane.
func NewLaneTracker() *LaneTracker {
	return &LaneTracker{lane: LaneCenter}
}

// Update steps at most one lane toward the body position and returns the
// move to send, or zero when already in place.
func (t *LaneTracker) Update(pos gesture.Position) Direction {
	target := LaneCenter
	switch pos {
	case gesture.Left:
		target = LaneLeft
	case gesture.Right:
		target = LaneRight
	}

	switch {
	case target < t.lane:
		t.lane--
		return DirLeft
	case target > t.lane:
		t.lane++
		return DirRight
	}
	return 0
}

// Lane returns the current lane index.
func (t *LaneTracker) Lane() int {
	return t.lane
}

// Reset puts the tracker back in the center lane.
func (t *LaneTracker) Reset() {
	t.lane = LaneCenter
}
