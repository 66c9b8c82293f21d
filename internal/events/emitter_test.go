package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	HandledCount int
	LastEvent    *Event
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent(TypeTaskCreated, TaskPayload{})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent(TypeTaskCreated, TaskPayload{})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		firstErr := errors.New("first")
		failing := &MockEventHandler{HandlerError: firstErr}
		alsoFailing := &MockEventHandler{HandlerError: errors.New("second")}
		succeeding := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(alsoFailing)
		emitter.RegisterHandler(succeeding)

		event, err := NewEvent(TypeTaskDeleted, TaskPayload{})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.Equal(t, firstErr, err)
		assert.Equal(t, 1, succeeding.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var got string
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *Event) error {
			got = e.Type
			return nil
		}))

		event, err := NewEvent(TypeUserCreated, UserPayload{Name: "ada"})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, TypeUserCreated, got)
	})
}

func TestNewEventPayloadRoundTrip(t *testing.T) {
	event, err := NewEvent(TypeTaskStatusChanged, TaskPayload{Status: "done", PreviousStatus: "todo"})
	require.NoError(t, err)

	var payload TaskPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "done", payload.Status)
	assert.Equal(t, "todo", payload.PreviousStatus)
	assert.False(t, event.CreatedAt.IsZero())

	_, err = NewEvent("bad", func() {})
	assert.Error(t, err)
}
