package room

import (
	"context"
	"sync"

	"github.com/mcoot/impostorgame/internal/model"
)

// Publisher receives an event after each committed state change.
// Delivery is best effort; implementations must not block for long.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// NopPublisher discards events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, model.Event) {}

// RecordingPublisher keeps every published event, for tests
type RecordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the event
func (p *RecordingPublisher) Publish(_ context.Context, event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Event(nil), p.events...)
}

// Types returns the recorded event types in order
func (p *RecordingPublisher) Types() []model.EventType {
	events := p.Events()
	types := make([]model.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
