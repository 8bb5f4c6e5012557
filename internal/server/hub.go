package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Hub holds the latest controller state and overlay frame and fans state
// updates out to websocket subscribers. The frame loop publishes; handlers read.
type Hub struct {
	mu       sync.RWMutex
	state    []byte
	frame    []byte
	frameSeq uint64
	subs     map[chan []byte]struct{}
	watchers atomic.Int32
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan []byte]struct{}),
	}
}

// PublishState stores v as the latest state and sends it to subscribers.
// Slow subscribers miss messages rather than blocking the caller.
func (h *Hub) PublishState(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Warnf("failed to encode state: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = msg
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// State returns the latest encoded state, or nil before the first publish.
func (h *Hub) State() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// WantsFrames reports whether any stream client is connected.
func (h *Hub) WantsFrames() bool {
	return h.watchers.Load() > 0
}

// PublishFrame stores an encoded JPEG as the latest overlay frame.
func (h *Hub) PublishFrame(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = jpeg
	h.frameSeq++
}

// Frame returns the latest JPEG and its sequence number.
func (h *Hub) Frame() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame, h.frameSeq
}

// Subscribe registers a state subscriber. The returned function unsubscribes.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of state subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) watch() func() {
	h.watchers.Add(1)
	return func() { h.watchers.Add(-1) }
}
