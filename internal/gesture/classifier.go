package gesture

import (
	"github.com/ayusman/cvgames/internal/detector"
)

// ReferencePolicy selects which joint a non-thumb fingertip is compared against.
type ReferencePolicy int

const (
	// RefMiddleBase compares every fingertip with the middle finger MCP.
	RefMiddleBase ReferencePolicy = iota
	// RefOwnBase compares each fingertip with its own MCP.
	RefOwnBase
)

// ThumbPolicy selects the horizontal thumb test.
type ThumbPolicy int

const (
	// ThumbVsWrist: the thumb tip lies more than the margin to either side of the wrist.
	ThumbVsWrist ThumbPolicy = iota
	// ThumbVsBase: the thumb tip lies outward of the thumb MCP, with the outward
	// direction taken from handedness.
	ThumbVsBase
)

// ClassifierConfig tunes finger extension tests. Margins are in full-resolution pixels.
type ClassifierConfig struct {
	Reference      ReferencePolicy
	Thumb          ThumbPolicy
	FingerMarginPx float64
	ThumbMarginPx  float64
}

// Classifier turns landmark sets into hand and pose descriptions. It holds no
// per-frame state.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with the given policy.
func NewClassifier(config ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

// Config returns the classifier policy.
func (c *Classifier) Config() ClassifierConfig {
	return c.config
}

var fingerJoints = [NumFingers]struct{ mcp, tip int }{
	{detector.ThumbMCP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddleTip},
	{detector.RingMCP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyTip},
}

// DescribeHand classifies one hand in a width x height frame. Normalized
// coordinates are scaled by the full frame size even when the detector worked
// on a downscaled copy.
func (c *Classifier) DescribeHand(h *detector.HandLandmarks, width, height int) HandDescription {
	px := h.Pixels(width, height)

	d := HandDescription{
		Handedness:    h.Handedness,
		Width:         width,
		Height:        height,
		Pointer:       px[detector.IndexMCP],
		PinchDistance: detector.Distance(px[detector.ThumbTip], px[detector.IndexTip]),
	}

	var sx, sy float64
	for _, p := range px {
		sx += p.X
		sy += p.Y
	}
	d.Center = detector.Point{X: sx / detector.NumLandmarks, Y: sy / detector.NumLandmarks}

	d.Extended[Thumb] = c.thumbExtended(&px, h.Handedness)
	for f := Index; f < NumFingers; f++ {
		ref := px[detector.MiddleMCP]
		if c.config.Reference == RefOwnBase {
			ref = px[fingerJoints[f].mcp]
		}
		tip := px[fingerJoints[f].tip]
		d.Extended[f] = tip.Y < ref.Y-c.config.FingerMarginPx
	}

	for _, ext := range d.Extended {
		if ext {
			d.ExtendedCount++
		}
	}
	return d
}

func (c *Classifier) thumbExtended(px *[detector.NumLandmarks]detector.Point, handedness string) bool {
	tip := px[detector.ThumbTip]
	wrist := px[detector.Wrist]

	switch c.config.Thumb {
	case ThumbVsBase:
		base := px[detector.ThumbMCP]
		return outwardSign(handedness, tip.X-wrist.X)*(tip.X-base.X) > c.config.ThumbMarginPx
	default:
		dx := tip.X - wrist.X
		if dx < 0 {
			dx = -dx
		}
		return dx > c.config.ThumbMarginPx
	}
}

// outwardSign returns +1 when the thumb points toward +X. Frames are mirrored
// and MediaPipe labels the user's real hand, so a palm-forward right hand has
// its thumb toward -X. Unknown handedness falls back to the side of the wrist
// the thumb tip lies on.
func outwardSign(handedness string, tipFromWrist float64) float64 {
	switch handedness {
	case "Right":
		return -1
	case "Left":
		return 1
	}
	if tipFromWrist < 0 {
		return -1
	}
	return 1
}

// DescribePose classifies one body in a width x height frame.
func (c *Classifier) DescribePose(p *detector.PoseLandmarks, width, height int) PoseDescription {
	ls := p.Points[detector.LeftShoulder].Pixel(width, height)
	rs := p.Points[detector.RightShoulder].Pixel(width, height)
	lw := p.Points[detector.LeftWrist].Pixel(width, height)
	rw := p.Points[detector.RightWrist].Pixel(width, height)

	return PoseDescription{
		Horizontal:          horizontalPosition(ls.X, rs.X, float64(width)/2),
		HandsJoinedDistance: detector.Distance(lw, rw),
		ShoulderMidY:        (ls.Y + rs.Y) / 2,
		Width:               width,
		Height:              height,
	}
}

// horizontalPosition places a body by its shoulders. A shoulder exactly on the
// center line counts as straddling.
func horizontalPosition(a, b, center float64) Position {
	switch {
	case a < center && b < center:
		return Left
	case a > center && b > center:
		return Right
	default:
		return Center
	}
}

// PostureBand is the asymmetric tolerance around the calibrated shoulder line.
type PostureBand struct {
	Jump   float64 `yaml:"jump"`
	Crouch float64 `yaml:"crouch"`
}

// DefaultPostureBand returns the runner thresholds.
func DefaultPostureBand() PostureBand {
	return PostureBand{Jump: 15, Crouch: 100}
}

// ClassifyPosture compares the current shoulder midpoint with the anchor.
// Pixel Y grows downward, so a smaller value means the body moved up.
func ClassifyPosture(actualMidY, anchor float64, band PostureBand) Posture {
	switch {
	case actualMidY < anchor-band.Jump:
		return Jumping
	case actualMidY > anchor+band.Crouch:
		return Crouching
	default:
		return Standing
	}
}
