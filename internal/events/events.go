package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskAssigned      = "task.assigned"
	TypeTaskUnassigned    = "task.unassigned"
	TypeTaskStatusChanged = "task.status_changed"
	TypeTaskDeleted       = "task.deleted"
	TypeUserCreated       = "user.created"
	TypeLinksReconciled   = "links.reconciled"
)

// Event is a record of something that happened to a task or user.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload holds the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"createdAt"`
}

// TaskPayload describes a change to one task.
type TaskPayload struct {
	TaskID         uuid.UUID  `json:"taskId"`
	Status         string     `json:"status,omitempty"`
	PreviousStatus string     `json:"previousStatus,omitempty"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	PreviousUserID *uuid.UUID `json:"previousUserId,omitempty"`
}

// UserPayload describes a newly created user.
type UserPayload struct {
	UserID  uuid.UUID   `json:"userId"`
	Name    string      `json:"name"`
	TaskIDs []uuid.UUID `json:"taskIds,omitempty"`
}

// ReconcilePayload reports the outcome of a link reconciliation run.
type ReconcilePayload struct {
	StaleRemoved    int64 `json:"staleRemoved"`
	MissingRestored int64 `json:"missingRestored"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
