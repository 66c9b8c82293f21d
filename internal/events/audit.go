package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// AuditHandler writes every event as one structured log record.
type AuditHandler struct {
	logger *slog.Logger
}

// NewAuditHandler returns an AuditHandler logging through l.
func NewAuditHandler(l *slog.Logger) *AuditHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditHandler{logger: l.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler.
func (h *AuditHandler) HandleEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	attrs := make([]any, 0, len(payload))
	for k, v := range payload {
		attrs = append(attrs, slog.Any(k, v))
	}

	log.InfoContext(ctx, "audit event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Time("occurred_at", event.CreatedAt),
		slog.Group("payload", attrs...),
	)
	return nil
}
