package notify

import (
	"context"
	"sync"
)

// Sent is one event delivered through a Recorder.
type Sent struct {
	UserID string
	Event  Event
}

// Recorder keeps every event in memory. It backs local runs without a push
// gateway and lets tests assert on what was sent.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

func (r *Recorder) Notify(_ context.Context, userID string, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{UserID: userID, Event: e})
	return r.Err
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t EventType) []Sent {
	var out []Sent
	for _, s := range r.Sent() {
		if s.Event.EventType() == t {
			out = append(out, s)
		}
	}
	return out
}
