// Package inject sends keyboard and mouse events to the focused application.
package inject

import (
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/kataras/golog"
)

var log = golog.Child("[inject]")

// Injector accepts input commands. Calls never report whether the target
// application received them.
type Injector interface {
	Press(key string)
	Release(key string)
	Click(x, y int, button string)
}

// Robot injects OS-level events through robotgo.
type Robot struct{}

// NewRobot creates a robotgo-backed injector.
func NewRobot() *Robot {
	return &Robot{}
}

// Press holds key down.
func (r *Robot) Press(key string) {
	if err := robotgo.KeyToggle(key, "down"); err != nil {
		log.Warnf("key down %s: %v", key, err)
	}
}

// Release lets key up.
func (r *Robot) Release(key string) {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		log.Warnf("key up %s: %v", key, err)
	}
}

// Click moves the pointer to (x, y) and clicks button.
func (r *Robot) Click(x, y int, button string) {
	robotgo.Move(x, y)
	robotgo.Click(button)
}

// Logger only logs commands. Controllers use it in diagnostics mode.
type Logger struct{}

func (Logger) Press(key string)   { log.Infof("[test] press %s", key) }
func (Logger) Release(key string) { log.Infof("[test] release %s", key) }
func (Logger) Click(x, y int, button string) {
	log.Infof("[test] click %s at (%d, %d)", button, x, y)
}

// Op is the kind of a recorded command.
type Op string

const (
	OpPress   Op = "press"
	OpRelease Op = "release"
	OpClick   Op = "click"
)

// Event is one recorded command.
type Event struct {
	Op     Op
	Key    string
	X, Y   int
	Button string
}

// Recorder keeps every command in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Press(key string)   { r.add(Event{Op: OpPress, Key: key}) }
func (r *Recorder) Release(key string) { r.add(Event{Op: OpRelease, Key: key}) }
func (r *Recorder) Click(x, y int, button string) {
	r.add(Event{Op: OpClick, X: x, Y: y, Button: button})
}

// Events returns a copy of the recorded commands.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many commands match op and key.
func (r *Recorder) Count(op Op, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Op == op && e.Key == key {
			n++
		}
	}
	return n
}

// Held returns keys pressed more often than released.
func (r *Recorder) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := make(map[string]int)
	var order []string
	for _, e := range r.events {
		switch e.Op {
		case OpPress:
			if _, seen := balance[e.Key]; !seen {
				order = append(order, e.Key)
			}
			balance[e.Key]++
		case OpRelease:
			balance[e.Key]--
		}
	}
	var held []string
	for _, k := range order {
		if balance[k] > 0 {
			held = append(held, k)
		}
	}
	return held
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
