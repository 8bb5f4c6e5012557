// Package session tracks the endless-runner game session driven by body pose.
package session

import (
	"github.com/kataras/golog"

	"github.com/ayusman/cvgames/internal/gesture"
	"github.com/ayusman/cvgames/internal/keys"
	"github.com/ayusman/cvgames/internal/motion"
)

var log = golog.Child("[session]")

// State is the runner session phase.
type State int

const (
	WaitingToStart State = iota
	Active
	Paused
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	default:
		return "waiting"
	}
}

// Config tunes the runner session.
type Config struct {
	// JoinFrames is how many consecutive joined-hands frames trigger start or pause.
	JoinFrames int
	// JoinThresholdPx is the wrist distance below which hands count as joined.
	JoinThresholdPx float64
	Band            gesture.PostureBand
	// ClickX and ClickY focus the game window when the session starts.
	ClickX int
	ClickY int
}

// DefaultConfig returns the runner defaults.
func DefaultConfig() Config {
	return Config{
		JoinFrames:      10,
		JoinThresholdPx: 180,
		Band:            gesture.DefaultPostureBand(),
		ClickX:          1300,
		ClickY:          800,
	}
}

// Clicker focuses the game on session start.
type Clicker interface {
	Click(x, y int, button string)
}

// Output is what one frame produced.
type Output struct {
	State   State
	Posture gesture.Posture
	Counter int
	// Triggered is set on the frame the joined-hands gesture completed.
	Triggered bool
	// Taps are the keys to tap this frame.
	Taps []keys.Action
}

// Runner owns the session state machine and the calibration anchor.
type Runner struct {
	config     Config
	clicker    Clicker
	lanes      *motion.LaneTracker
	state      State
	counter    int
	midY       float64
	calibrated bool
	posture    gesture.Posture
}

// NewRunner creates a session waiting for the start gesture.
func NewRunner(config Config, clicker Clicker) *Runner {
	if config.JoinFrames < 1 {
		config.JoinFrames = 1
	}
	return &Runner{
		config:  config,
		clicker: clicker,
		lanes:   motion.NewLaneTracker(),
	}
}

// Step advances the session by one frame. A nil pose means no body was seen.
func (r *Runner) Step(p *gesture.PoseDescription) Output {
	out := Output{}
	if p == nil {
		r.counter = 0
		return r.finish(out)
	}

	if p.HandsJoined(r.config.JoinThresholdPx) {
		r.counter++
		if r.counter >= r.config.JoinFrames {
			r.counter = 0
			out.Triggered = true
			out.Taps = append(out.Taps, r.trigger(p)...)
		}
	} else {
		r.counter = 0
	}

	if r.state != Active {
		return r.finish(out)
	}

	switch r.lanes.Update(p.Horizontal) {
	case motion.DirLeft:
		out.Taps = append(out.Taps, keys.Left)
	case motion.DirRight:
		out.Taps = append(out.Taps, keys.Right)
	}

	posture := gesture.ClassifyPosture(p.ShoulderMidY, r.midY, r.config.Band)
	if r.posture == gesture.Standing {
		switch posture {
		case gesture.Jumping:
			out.Taps = append(out.Taps, keys.Up)
		case gesture.Crouching:
			out.Taps = append(out.Taps, keys.Down)
		}
	}
	r.posture = posture

	return r.finish(out)
}

func (r *Runner) trigger(p *gesture.PoseDescription) []keys.Action {
	switch r.state {
	case WaitingToStart:
		r.midY = p.ShoulderMidY
		r.calibrated = true
		r.state = Active
		r.posture = gesture.Standing
		log.Infof("session started, shoulder line calibrated at y=%.0f", r.midY)
		if r.clicker != nil {
			r.clicker.Click(r.config.ClickX, r.config.ClickY, "left")
		}
		return nil
	case Active:
		r.state = Paused
		log.Info("session paused")
	case Paused:
		r.state = Active
		r.posture = gesture.Standing
		log.Info("session resumed")
	}
	return []keys.Action{keys.Pause}
}

func (r *Runner) finish(out Output) Output {
	out.State = r.state
	out.Posture = r.posture
	out.Counter = r.counter
	return out
}

// State returns the session phase.
func (r *Runner) State() State {
	return r.state
}

// MidY returns the calibrated shoulder line and whether it was captured.
func (r *Runner) MidY() (float64, bool) {
	return r.midY, r.calibrated
}

// Lane returns the runner's current lane index.
func (r *Runner) Lane() int {
	return r.lanes.Lane()
}
