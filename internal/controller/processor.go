package controller

import (
	"maps"
	"time"

	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/gesture"
	"github.com/ayusman/cvgames/internal/inject"
	"github.com/ayusman/cvgames/internal/keys"
	"github.com/ayusman/cvgames/internal/motion"
	"github.com/ayusman/cvgames/internal/session"
)

// State is the result of one processed frame. It feeds the overlay and the
// debug feed.
type State struct {
	Variant    string                   `json:"variant"`
	Frame      int                      `json:"frame"`
	HandSeen   bool                     `json:"hand_seen"`
	BodySeen   bool                     `json:"body_seen"`
	Fingers    string                   `json:"fingers,omitempty"`
	Pinch      float64                  `json:"pinch_px,omitempty"`
	Gesture    string                   `json:"gesture"`
	Directions string                   `json:"directions"`
	Cursor     *[2]float64              `json:"cursor,omitempty"`
	Session    string                   `json:"session,omitempty"`
	Posture    string                   `json:"posture,omitempty"`
	JoinCount  int                      `json:"join_count,omitempty"`
	MidY       *float64                 `json:"mid_y,omitempty"`
	Lane       *int                     `json:"lane,omitempty"`
	Desired    []keys.Action            `json:"desired"`
	Pressed    []keys.Action            `json:"pressed"`
	Stats      keys.Stats               `json:"stats"`
	Hand       *gesture.HandDescription `json:"-"`
	Pose       *gesture.PoseDescription `json:"-"`
}

// Processor turns detector output into key side effects for one variant.
// It owns the motion, gesture and key state of a single controller and is
// not safe for concurrent use.
type Processor struct {
	variant    Variant
	width      int
	height     int
	classifier *gesture.Classifier
	recognizer *gesture.Recognizer
	filter     *gesture.MajorityFilter
	banded     *motion.BandedTracker
	relative   *motion.RelativeTracker
	runner     *session.Runner
	machine    *keys.Machine
	counter    *countingInjector
	frames     int
}

// NewProcessor creates a processor for v that sends input to inj.
func NewProcessor(v Variant, inj inject.Injector) *Processor {
	counter := newCountingInjector(inj, v.Bindings)
	p := &Processor{
		variant:    v,
		width:      v.Width,
		height:     v.Height,
		classifier: gesture.NewClassifier(v.Classifier),
		recognizer: gesture.NewRecognizer(v.Rules),
		machine:    keys.NewMachine(v.Bindings, counter),
		counter:    counter,
	}
	if v.Filter != nil {
		p.filter = gesture.NewMajorityFilter(v.Filter.Size, v.Filter.Need)
	}
	switch v.Position {
	case PositionBanded:
		p.banded = motion.NewBandedTracker(v.Bands)
	case PositionRelative:
		p.relative = motion.NewRelativeTracker(v.Relative)
	case PositionBody:
		p.runner = session.NewRunner(v.Session, inj)
	}
	return p
}

// SetFrameSize sets the pixel size landmarks are scaled to.
func (p *Processor) SetFrameSize(width, height int) {
	if width > 0 && height > 0 {
		p.width, p.height = width, height
	}
}

// Step processes one frame's detections at time now. A nil detection is
// treated as an empty frame.
func (p *Processor) Step(det *detector.Detection, now time.Time) State {
	p.frames++
	st := State{
		Variant: p.variant.Name,
		Frame:   p.frames,
		Gesture: gesture.None.String(),
	}

	var desired []keys.Action
	if p.runner != nil {
		desired = p.stepBody(det, &st)
	} else {
		desired = p.stepHand(det, &st)
	}

	p.machine.Update(now, desired...)

	st.Desired = desired
	st.Pressed = p.machine.Pressed()
	st.Stats = p.machine.Stats()
	return st
}

func (p *Processor) stepHand(det *detector.Detection, st *State) []keys.Action {
	var hand *gesture.HandDescription
	if h := det.FirstHand(); h != nil {
		d := p.classifier.DescribeHand(h, p.width, p.height)
		hand = &d
		st.HandSeen = true
		st.Fingers = d.Mask().String()
		st.Pinch = d.PinchDistance
		st.Hand = hand
	}

	var desired []keys.Action

	var dirs motion.Direction
	switch {
	case p.banded != nil:
		dirs = p.banded.Update(hand)
	case p.relative != nil:
		dirs = p.relative.Update(hand)
		x, y := p.relative.Cursor()
		st.Cursor = &[2]float64{x, y}
	}
	st.Directions = dirs.String()
	desired = append(desired, directionActions(dirs)...)

	g := p.recognizer.Recognize(hand)
	if p.filter != nil {
		g = p.filter.Push(g)
	}
	st.Gesture = g.String()
	if a, ok := p.variant.Gestures[g]; ok {
		desired = append(desired, a)
	}

	return desired
}

func (p *Processor) stepBody(det *detector.Detection, st *State) []keys.Action {
	var pose *gesture.PoseDescription
	if b := det.FirstPose(); b != nil {
		d := p.classifier.DescribePose(b, p.width, p.height)
		pose = &d
		st.BodySeen = true
		st.Pose = pose
	}

	out := p.runner.Step(pose)
	st.Session = out.State.String()
	st.Posture = out.Posture.String()
	st.JoinCount = out.Counter
	st.Directions = motion.Direction(0).String()
	if y, ok := p.runner.MidY(); ok {
		st.MidY = &y
	}
	lane := p.runner.Lane()
	st.Lane = &lane

	return out.Taps
}

func directionActions(d motion.Direction) []keys.Action {
	var out []keys.Action
	if d.Has(motion.DirLeft) {
		out = append(out, keys.Left)
	}
	if d.Has(motion.DirRight) {
		out = append(out, keys.Right)
	}
	if d.Has(motion.DirUp) {
		out = append(out, keys.Up)
	}
	if d.Has(motion.DirDown) {
		out = append(out, keys.Down)
	}
	return out
}

// Drain releases every held key and returns how many were released.
func (p *Processor) Drain() int {
	return p.machine.ReleaseAll()
}

// Frames returns how many frames were processed.
func (p *Processor) Frames() int {
	return p.frames
}

// Stats returns the key machine counters.
func (p *Processor) Stats() keys.Stats {
	return p.machine.Stats()
}

// ActionCounts returns how often each action was pressed.
func (p *Processor) ActionCounts() map[string]int {
	return p.counter.snapshot()
}

// Session returns the runner session, or nil for hand variants.
func (p *Processor) Session() *session.Runner {
	return p.runner
}

// Variant returns the variant this processor runs.
func (p *Processor) Variant() Variant {
	return p.variant
}

// countingInjector counts presses per action on the way to the real injector.
type countingInjector struct {
	inner  inject.Injector
	byKey  map[string]keys.Action
	counts map[string]int
}

func newCountingInjector(inner inject.Injector, bindings map[keys.Action]keys.Binding) *countingInjector {
	byKey := make(map[string]keys.Action, len(bindings))
	for a, b := range bindings {
		byKey[b.Key] = a
	}
	return &countingInjector{
		inner:  inner,
		byKey:  byKey,
		counts: make(map[string]int),
	}
}

func (c *countingInjector) Press(key string) {
	name := key
	if a, ok := c.byKey[key]; ok {
		name = string(a)
	}
	c.counts[name]++
	c.inner.Press(key)
}

func (c *countingInjector) Release(key string) {
	c.inner.Release(key)
}

func (c *countingInjector) snapshot() map[string]int {
	return maps.Clone(c.counts)
}
