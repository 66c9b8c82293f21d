package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// dayLayout is the date-only form accepted by timestamp filters.
const dayLayout = "2006-01-02"

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "must be a valid UUID")
	}
	return id, nil
}

// parseUUIDs parses every string in raw; field names the input in errors.
func parseUUIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, domain.NewValidationError(field, "must contain valid UUIDs")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTimeFilter accepts an RFC 3339 instant (exact match) or a
// YYYY-MM-DD day (whole UTC day). An empty value means no filter.
func parseTimeFilter(field, value string) (*store.TimeRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		r := store.ExactTime(t)
		return &r, nil
	}
	if d, err := time.Parse(dayLayout, value); err == nil {
		r := store.Day(d)
		return &r, nil
	}
	return nil, domain.NewValidationError(field, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

// parseBoolQuery returns false for an empty value.
func parseBoolQuery(field, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, domain.NewValidationError(field, "must be true or false")
	}
	return b, nil
}

// parseIntQuery returns 0 for an empty value, which the services read as "use the default".
func parseIntQuery(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be an integer")
	}
	return n, nil
}

// parseTaskFilter reads the GET /tasks query string.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	var filter store.TaskFilter

	if s := q.Get("status"); s != "" {
		status, err := domain.ParseTaskStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	var err error
	if filter.CreatedAt, err = parseTimeFilter("createdAt", q.Get("createdAt")); err != nil {
		return filter, err
	}
	if filter.UpdatedAt, err = parseTimeFilter("updatedAt", q.Get("updatedAt")); err != nil {
		return filter, err
	}
	if filter.IncludeDeleted, err = parseBoolQuery("includeDeleted", q.Get("includeDeleted")); err != nil {
		return filter, err
	}
	return filter, nil
}
