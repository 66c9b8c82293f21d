package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// EventEmitter records emitted events and returns Err from every call.
type EventEmitter struct {
	mu     sync.Mutex
	Events []*events.Event
	Err    error
}

var _ events.EventEmitter = (*EventEmitter)(nil)

// EmitEvent records event.
func (m *EventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

// Types returns the types of the recorded events in order.
func (m *EventEmitter) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}
