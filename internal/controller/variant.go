package controller

import (
	"github.com/ayusman/cvgames/internal/config"
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/gesture"
	"github.com/ayusman/cvgames/internal/keys"
	"github.com/ayusman/cvgames/internal/motion"
	"github.com/ayusman/cvgames/internal/session"
)

// Variant names.
const (
	NameArcade      = "arcade"
	NameArcadeMouse = "arcade-mouse"
	NameDash        = "dash"
	NameRunner      = "runner"
)

// PositionPolicy selects how position turns into directional actions.
type PositionPolicy int

const (
	// PositionNone emits no directional actions.
	PositionNone PositionPolicy = iota
	// PositionBanded bands the hand center into screen zones.
	PositionBanded
	// PositionRelative moves a virtual cursor by hand deltas and bands the cursor.
	PositionRelative
	// PositionBody drives the runner session from the first detected body.
	PositionBody
)

func (p PositionPolicy) String() string {
	switch p {
	case PositionBanded:
		return "banded"
	case PositionRelative:
		return "relative"
	case PositionBody:
		return "body"
	default:
		return "none"
	}
}

// FilterConfig is a majority vote over recent gestures.
type FilterConfig struct {
	Size int
	Need int
}

// Variant is everything that differs between the game controllers.
type Variant struct {
	Name        string
	Mode        detector.Mode
	Width       int
	Height      int
	DetectScale float64

	Classifier gesture.ClassifierConfig
	Rules      []gesture.Rule
	// Filter, when set, requires a gesture to persist before it counts.
	Filter *FilterConfig

	Position PositionPolicy
	Bands    motion.Bands
	Relative motion.RelativeConfig
	Session  session.Config

	Bindings map[keys.Action]keys.Binding
	Gestures map[gesture.Gesture]keys.Action
}

// Arrow keys shared by every variant.
func directionBindings(kind keys.Kind) map[keys.Action]keys.Binding {
	return map[keys.Action]keys.Binding{
		keys.Left:  {Key: "left", Kind: kind},
		keys.Right: {Key: "right", Kind: kind},
		keys.Up:    {Key: "up", Kind: kind},
		keys.Down:  {Key: "down", Kind: kind},
	}
}

func arcadeBindings(c config.Controller) map[keys.Action]keys.Binding {
	b := directionBindings(keys.Hold)
	b[keys.Shoot] = keys.Binding{Key: "x", Kind: keys.Hold, Cooldown: c.Cooldown(string(keys.Shoot))}
	b[keys.BarrelRoll] = keys.Binding{Key: "z", Kind: keys.Pulse, Cooldown: c.Cooldown(string(keys.BarrelRoll))}
	b[keys.Start] = keys.Binding{Key: "enter", Kind: keys.Pulse, Cooldown: c.Cooldown(string(keys.Start))}
	b[keys.Select] = keys.Binding{Key: "ctrl", Kind: keys.Pulse, Cooldown: c.Cooldown(string(keys.Select))}
	return b
}

func arcadeGestures() map[gesture.Gesture]keys.Action {
	return map[gesture.Gesture]keys.Action{
		gesture.Shoot:      keys.Shoot,
		gesture.BarrelRoll: keys.BarrelRoll,
		gesture.Start:      keys.Start,
		gesture.Select:     keys.Select,
	}
}

// Arcade is the shoot-em-up controller with banded hand position.
func Arcade(c config.Controller) Variant {
	return Variant{
		Name:        NameArcade,
		Mode:        detector.ModeHands,
		Width:       c.Width,
		Height:      c.Height,
		DetectScale: c.DetectScale,
		Classifier: gesture.ClassifierConfig{
			Reference:      gesture.RefMiddleBase,
			Thumb:          gesture.ThumbVsBase,
			FingerMarginPx: c.FingerMarginPx,
			ThumbMarginPx:  c.ThumbMarginPx,
		},
		Rules:    gesture.ArcadeRules(),
		Position: PositionBanded,
		Bands:    c.Bands,
		Bindings: arcadeBindings(c),
		Gestures: arcadeGestures(),
	}
}

// ArcadeMouse is the shoot-em-up controller steered by relative hand motion.
func ArcadeMouse(c config.MouseConfig) Variant {
	v := Arcade(c.Controller)
	v.Name = NameArcadeMouse
	v.Position = PositionRelative
	v.Relative = c.Relative
	v.Relative.Bands = c.Bands
	return v
}

// Dash is the rhythm platformer controller: a pinch jumps.
func Dash(c config.Controller) Variant {
	return Variant{
		Name:        NameDash,
		Mode:        detector.ModeHands,
		Width:       c.Width,
		Height:      c.Height,
		DetectScale: c.DetectScale,
		Classifier: gesture.ClassifierConfig{
			Reference:      gesture.RefOwnBase,
			Thumb:          gesture.ThumbVsWrist,
			FingerMarginPx: c.FingerMarginPx,
			ThumbMarginPx:  c.ThumbMarginPx,
		},
		Rules:    gesture.DashRules(c.PinchPx),
		Filter:   &FilterConfig{Size: 3, Need: 2},
		Position: PositionNone,
		Bindings: map[keys.Action]keys.Binding{
			keys.Jump: {Key: "space", Kind: keys.Hold, Cooldown: c.Cooldown(string(keys.Jump))},
		},
		Gestures: map[gesture.Gesture]keys.Action{
			gesture.Jump: keys.Jump,
		},
	}
}

// Runner is the endless runner controller driven by the whole body.
func Runner(c config.RunnerConfig) Variant {
	b := directionBindings(keys.Tap)
	b[keys.Pause] = keys.Binding{Key: "space", Kind: keys.Tap}
	return Variant{
		Name:        NameRunner,
		Mode:        detector.ModePose,
		Width:       c.Width,
		Height:      c.Height,
		DetectScale: c.DetectScale,
		Position:    PositionBody,
		Session: session.Config{
			JoinFrames:      c.JoinFrames,
			JoinThresholdPx: c.JoinThresholdPx,
			Band:            c.Posture,
			ClickX:          c.ClickX,
			ClickY:          c.ClickY,
		},
		Bindings: b,
	}
}

// ByName builds the named variant from cfg.
func ByName(name string, cfg *config.Config) (Variant, bool) {
	switch name {
	case NameArcade:
		return Arcade(cfg.Arcade), true
	case NameArcadeMouse:
		return ArcadeMouse(cfg.ArcadeMouse), true
	case NameDash:
		return Dash(cfg.Dash), true
	case NameRunner:
		return Runner(cfg.Runner), true
	}
	return Variant{}, false
}

// DetectorConfig returns the landmark service settings for this variant.
func (v Variant) DetectorConfig(c config.DetectorConfig) detector.Config {
	dc := detector.DefaultConfig()
	dc.Mode = v.Mode
	dc.Scale = v.DetectScale
	dc.Python = c.Python
	dc.Script = c.Script
	if c.MinDetection > 0 {
		dc.MinConfidence = c.MinDetection
	}
	if c.MinTracking > 0 {
		dc.MinTrackingConf = c.MinTracking
	}
	dc.ModelComplexity = c.ModelComplexity
	dc.IdleTimeout = c.IdleTimeout.Std()
	return dc
}
