// Package keys turns the per-frame set of desired actions into key press and
// release side effects.
package keys

import (
	"maps"
	"slices"
	"time"

	"github.com/kataras/golog"
)

var log = golog.Child("[keys]")

// Action is a logical control identifier.
type Action string

// Actions shared by the controllers.
const (
	Left       Action = "left"
	Right      Action = "right"
	Up         Action = "up"
	Down       Action = "down"
	Shoot      Action = "shoot"
	BarrelRoll Action = "barrel_roll"
	Start      Action = "start"
	Select     Action = "select"
	Jump       Action = "jump"
	Pause      Action = "pause"
)

// Kind is the press lifecycle of a binding.
type Kind int

const (
	// Hold keeps the key down while the action is desired. Cooldown, when set,
	// is the minimum interval between two presses.
	Hold Kind = iota
	// Pulse presses once, releases on the next later update, and fires again
	// only after Cooldown.
	Pulse
	// Tap presses and releases within the same update.
	Tap
)

func (k Kind) String() string {
	switch k {
	case Pulse:
		return "pulse"
	case Tap:
		return "tap"
	default:
		return "hold"
	}
}

// Binding maps an action to an injector key.
type Binding struct {
	Key      string
	Kind     Kind
	Cooldown time.Duration
}

// Injector receives key side effects. Calls are fire-and-forget.
type Injector interface {
	Press(key string)
	Release(key string)
}

// Stats counts side effects issued by a Machine.
type Stats struct {
	Presses  int `json:"presses"`
	Releases int `json:"releases"`
}

// Machine owns the pressed set and the per-action last-press timestamps.
// It is not safe for concurrent use.
type Machine struct {
	bindings map[Action]Binding
	injector Injector
	pressed  map[Action]time.Time
	last     map[Action]time.Time
	stats    Stats
}

// NewMachine creates a machine over the given bindings.
func NewMachine(bindings map[Action]Binding, injector Injector) *Machine {
	return &Machine{
		bindings: bindings,
		injector: injector,
		pressed:  make(map[Action]time.Time),
		last:     make(map[Action]time.Time),
	}
}

// Update applies this frame's desired actions at time now. Calling it again
// with the same timestamp and set has no further side effects.
func (m *Machine) Update(now time.Time, desired ...Action) {
	want := make(map[Action]struct{}, len(desired))
	for _, a := range desired {
		if _, ok := m.bindings[a]; !ok {
			log.Debugf("ignoring unbound action %q", a)
			continue
		}
		want[a] = struct{}{}
	}

	for _, a := range slices.Sorted(maps.Keys(m.pressed)) {
		at := m.pressed[a]
		_, stillWanted := want[a]
		expired := m.bindings[a].Kind == Pulse && now.After(at)
		if !stillWanted || expired {
			m.release(a)
		}
	}

	for _, a := range slices.Sorted(maps.Keys(want)) {
		if _, held := m.pressed[a]; held {
			continue
		}
		// A pulse released above stays out until it is re-armed.
		if !m.ready(a, now) {
			continue
		}
		m.press(a, now)
	}
}

// ready reports whether the action's cooldown has elapsed.
func (m *Machine) ready(a Action, now time.Time) bool {
	last, ok := m.last[a]
	if !ok {
		return true
	}
	if !now.After(last) {
		return false
	}
	return now.Sub(last) >= m.bindings[a].Cooldown
}

func (m *Machine) press(a Action, now time.Time) {
	b := m.bindings[a]
	m.injector.Press(b.Key)
	m.stats.Presses++
	m.last[a] = now
	log.Debugf("press %s (%s)", b.Key, a)

	if b.Kind == Tap {
		m.injector.Release(b.Key)
		m.stats.Releases++
		return
	}
	m.pressed[a] = now
}

func (m *Machine) release(a Action) {
	b := m.bindings[a]
	m.injector.Release(b.Key)
	m.stats.Releases++
	delete(m.pressed, a)
	log.Debugf("release %s (%s)", b.Key, a)
}

// ReleaseAll releases every held key and returns how many were released.
func (m *Machine) ReleaseAll() int {
	n := 0
	for _, a := range slices.Sorted(maps.Keys(m.pressed)) {
		m.release(a)
		n++
	}
	return n
}

// Pressed returns the held actions in sorted order.
func (m *Machine) Pressed() []Action {
	return slices.Sorted(maps.Keys(m.pressed))
}

// IsPressed reports whether the action is currently held.
func (m *Machine) IsPressed(a Action) bool {
	_, ok := m.pressed[a]
	return ok
}

// Stats returns the side effect counters.
func (m *Machine) Stats() Stats {
	return m.stats
}
