package motion

import (
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/gesture"
)

// Sensitivity and smoothing limits accepted by the mouse-style controller.
const (
	MinSensitivity = 0.5
	MaxSensitivity = 5.0
	MinSmoothing   = 0.0
	MaxSmoothing   = 1.0
)

// RelativeConfig tunes the mouse-style tracker.
type RelativeConfig struct {
	Sensitivity float64 `yaml:"sensitivity"`
	Smoothing   float64 `yaml:"smoothing"`
	MinMovePx   float64 `yaml:"min_move_px"`
	History     int     `yaml:"history"`
	Bands       Bands   `yaml:"bands"`
}

// DefaultRelativeConfig returns the tracker defaults.
func DefaultRelativeConfig() RelativeConfig {
	return RelativeConfig{
		Sensitivity: 2.5,
		Smoothing:   0.5,
		MinMovePx:   5,
		History:     5,
		Bands:       DefaultBands(),
	}
}

// ClampSensitivity limits s to the accepted range.
func ClampSensitivity(s float64) float64 {
	return clamp(s, MinSensitivity, MaxSensitivity)
}

// ClampSmoothing limits s to the accepted range.
func ClampSmoothing(s float64) float64 {
	return clamp(s, MinSmoothing, MaxSmoothing)
}

// RelativeTracker integrates pointer movement into a virtual cursor, like a
// mouse. The cursor starts at the center of [0,1]x[0,1].
type RelativeTracker struct {
	config  RelativeConfig
	prev    detector.Point
	hasPrev bool
	history []detector.Point
	cursorX float64
	cursorY float64
	lastDX  float64
	lastDY  float64
}

// NewRelativeTracker creates a tracker. Sensitivity and smoothing are clamped
// to their valid ranges.
func NewRelativeTracker(config RelativeConfig) *RelativeTracker {
	config.Sensitivity = ClampSensitivity(config.Sensitivity)
	config.Smoothing = ClampSmoothing(config.Smoothing)
	if config.History < 1 {
		config.History = 1
	}
	return &RelativeTracker{
		config:  config,
		cursorX: 0.5,
		cursorY: 0.5,
	}
}

// Update feeds one frame's hand. A nil description resets the tracker and
// yields no direction; the cursor keeps its position.
func (t *RelativeTracker) Update(d *gesture.HandDescription) Direction {
	if d == nil {
		t.Reset()
		return 0
	}

	dx, dy := t.delta(d.Pointer)
	t.lastDX, t.lastDY = dx, dy

	if d.Width > 0 && d.Height > 0 {
		t.cursorX = clamp(t.cursorX+dx/float64(d.Width), 0, 1)
		t.cursorY = clamp(t.cursorY+dy/float64(d.Height), 0, 1)
	}

	return t.config.Bands.Directions(t.cursorX, t.cursorY)
}

func (t *RelativeTracker) delta(p detector.Point) (float64, float64) {
	t.history = append(t.history, p)
	if len(t.history) > t.config.History {
		t.history = t.history[1:]
	}

	if !t.hasPrev {
		t.prev = p
		t.hasPrev = true
		return 0, 0
	}

	dx := p.X - t.prev.X
	dy := p.Y - t.prev.Y
	t.prev = p

	if abs(dx) < t.config.MinMovePx {
		dx = 0
	}
	if abs(dy) < t.config.MinMovePx {
		dy = 0
	}

	dx *= t.config.Sensitivity
	dy *= t.config.Sensitivity

	if n := len(t.history); n >= 3 {
		// Mean of the later samples relative to the oldest one.
		var sx, sy float64
		for _, h := range t.history[1:] {
			sx += h.X
			sy += h.Y
		}
		avgX := sx/float64(n-1) - t.history[0].X
		avgY := sy/float64(n-1) - t.history[0].Y

		f := t.config.Smoothing
		dx = dx*(1-f) + avgX*f
		dy = dy*(1-f) + avgY*f
	}

	return dx, dy
}

// Reset forgets the previous pointer and the history, so the next frame
// reports zero movement.
func (t *RelativeTracker) Reset() {
	t.hasPrev = false
	t.history = t.history[:0]
	t.lastDX, t.lastDY = 0, 0
}

// Cursor returns the virtual cursor position.
func (t *RelativeTracker) Cursor() (float64, float64) {
	return t.cursorX, t.cursorY
}

// SetCursor moves the virtual cursor, clamped to [0,1].
func (t *RelativeTracker) SetCursor(x, y float64) {
	t.cursorX = clamp(x, 0, 1)
	t.cursorY = clamp(y, 0, 1)
}

// LastDelta returns the movement applied on the latest frame, in pixels.
func (t *RelativeTracker) LastDelta() (float64, float64) {
	return t.lastDX, t.lastDY
}

// HistoryLen returns the number of buffered pointer samples.
func (t *RelativeTracker) HistoryLen() int {
	return len(t.history)
}

// Config returns the effective configuration after clamping.
func (t *RelativeTracker) Config() RelativeConfig {
	return t.config
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
