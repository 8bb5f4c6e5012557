package gesture

// Gesture is a discrete hand signal recognized in one frame.
type Gesture int

const (
	None Gesture = iota
	Shoot
	BarrelRoll
	Start
	Select
	Jump
)

var gestureNames = map[Gesture]string{
	None:       "none",
	Shoot:      "shoot",
	BarrelRoll: "barrel_roll",
	Start:      "start",
	Select:     "select",
	Jump:       "jump",
}

func (g Gesture) String() string {
	if name, ok := gestureNames[g]; ok {
		return name
	}
	return "unknown"
}

// RuleKind is the test a Rule applies.
type RuleKind int

const (
	// RulePinch matches when thumb and index tips are closer than PinchPx.
	RulePinch RuleKind = iota
	// RuleExact matches when the extended fingers are exactly Mask.
	RuleExact
	// RuleMinCount matches when at least Count fingers are extended.
	RuleMinCount
)

// Rule maps one geometric condition to a gesture.
type Rule struct {
	Gesture Gesture
	Kind    RuleKind
	Mask    FingerMask
	Count   int
	PinchPx float64
}

// PinchRule recognizes g when the pinch distance is below px.
func PinchRule(g Gesture, px float64) Rule {
	return Rule{Gesture: g, Kind: RulePinch, PinchPx: px}
}

// ExactRule recognizes g when exactly the given fingers are extended.
func ExactRule(g Gesture, fingers ...Finger) Rule {
	return Rule{Gesture: g, Kind: RuleExact, Mask: MaskOf(fingers...)}
}

// MinCountRule recognizes g when n or more fingers are extended.
func MinCountRule(g Gesture, n int) Rule {
	return Rule{Gesture: g, Kind: RuleMinCount, Count: n}
}

// Match reports whether the description satisfies the rule.
func (r Rule) Match(d *HandDescription) bool {
	switch r.Kind {
	case RulePinch:
		return d.PinchDistance < r.PinchPx
	case RuleExact:
		return d.Mask() == r.Mask
	case RuleMinCount:
		return d.ExtendedCount >= r.Count
	}
	return false
}

// ArcadeRules is the shoot-em-up table. The finger patterns are disjoint.
func ArcadeRules() []Rule {
	return []Rule{
		ExactRule(Shoot, Index),
		MinCountRule(BarrelRoll, 4),
		ExactRule(Start, Thumb, Pinky),
		ExactRule(Select, Thumb, Index),
	}
}

// DashRules is the rhythm platformer table.
func DashRules(pinchPx float64) []Rule {
	return []Rule{PinchRule(Jump, pinchPx)}
}

// Recognizer picks at most one gesture per description, first match wins.
type Recognizer struct {
	rules []Rule
}

// NewRecognizer creates a recognizer over an ordered rule list.
func NewRecognizer(rules []Rule) *Recognizer {
	return &Recognizer{rules: rules}
}

// Recognize returns the first matching gesture, or None for a nil description.
func (r *Recognizer) Recognize(d *HandDescription) Gesture {
	if d == nil {
		return None
	}
	for _, rule := range r.rules {
		if rule.Match(d) {
			return rule.Gesture
		}
	}
	return None
}

// MajorityFilter accepts a gesture only when it appears in at least Need of
// the last Size frames.
type MajorityFilter struct {
	size    int
	need    int
	history []Gesture
}

// NewMajorityFilter creates a filter over a window of size frames.
func NewMajorityFilter(size, need int) *MajorityFilter {
	if size < 1 {
		size = 1
	}
	need = min(max(need, 1), size)
	return &MajorityFilter{size: size, need: need}
}

// Push records this frame's gesture and returns the filtered gesture. The
// current frame's gesture does not need to match: a jump seen in enough recent
// frames holds through one empty frame. When several gestures qualify the most
// recently seen one wins.
func (f *MajorityFilter) Push(g Gesture) Gesture {
	f.history = append(f.history, g)
	if len(f.history) > f.size {
		f.history = f.history[1:]
	}

	for i := len(f.history) - 1; i >= 0; i-- {
		cand := f.history[i]
		if cand == None {
			continue
		}
		n := 0
		for _, h := range f.history {
			if h == cand {
				n++
			}
		}
		if n >= f.need {
			return cand
		}
	}
	return None
}

// Reset forgets the window.
func (f *MajorityFilter) Reset() {
	f.history = f.history[:0]
}
