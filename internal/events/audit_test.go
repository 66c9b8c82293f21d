package events_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditHandler(t *testing.T) {
	buf, l := logger.NewBufferLogger(slog.LevelInfo)
	handler := events.NewAuditHandler(l)

	taskID := uuid.New()
	event, err := events.NewEvent(events.TypeTaskStatusChanged, events.TaskPayload{
		TaskID:         taskID,
		Status:         "done",
		PreviousStatus: "in-progress",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "audit event", entry["msg"])
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, events.TypeTaskStatusChanged, entry["event_type"])

	payload, ok := entry["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, taskID.String(), payload["taskId"])
	assert.Equal(t, "done", payload["status"])
}

func TestAuditHandlerUsesContextLogger(t *testing.T) {
	_, fallback := logger.NewBufferLogger(slog.LevelInfo)
	scopedBuf, scoped := logger.NewBufferLogger(slog.LevelInfo)

	handler := events.NewAuditHandler(fallback)
	event, err := events.NewEvent(events.TypeUserCreated, events.UserPayload{UserID: uuid.New(), Name: "ada"})
	require.NoError(t, err)

	ctx := logger.WithLogger(context.Background(), scoped.With(slog.String("trace_id", "abc")))
	require.NoError(t, handler.HandleEvent(ctx, event))

	entries, err := scopedBuf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])
}
