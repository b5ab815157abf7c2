// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/internal/events"
)

// Recorder keeps published events in memory. A non-nil Err makes every
// publish fail without recording.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []Recorded
}

type Recorded struct {
	Topic string
	Key   string
	Event any
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types lists the event types recorded so far, in order.
func (r *Recorder) Types() []string {
	var out []string
	for _, rec := range r.Events() {
		if e, ok := rec.Event.(events.Event); ok {
			out = append(out, e.Type)
		}
	}
	return out
}
