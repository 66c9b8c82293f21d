package store

import (
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TimeRange matches timestamps t with Start <= t < End.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ExactTime matches a single instant at the microsecond precision the
// database keeps.
func ExactTime(t time.Time) TimeRange {
	start := t.UTC().Truncate(time.Microsecond)
	return TimeRange{Start: start, End: start.Add(time.Microsecond)}
}

// Day matches the whole UTC calendar day containing d.
func Day(d time.Time) TimeRange {
	d = d.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// TaskFilter narrows a task listing. Nil fields do not filter.
// Deleted tasks are excluded unless IncludeDeleted is set.
type TaskFilter struct {
	Status         *domain.TaskStatus
	CreatedAt      *TimeRange
	UpdatedAt      *TimeRange
	IncludeDeleted bool
}

// Matches applies the filter to a single task.
func (f TaskFilter) Matches(t *domain.Task) bool {
	if t.IsDeleted && !f.IncludeDeleted {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.CreatedAt != nil && !f.CreatedAt.Contains(t.CreatedAt) {
		return false
	}
	if f.UpdatedAt != nil && !f.UpdatedAt.Contains(t.UpdatedAt) {
		return false
	}
	return true
}

// UserFilter narrows a user listing. Deleted users are never listed.
type UserFilter struct {
	// Name is an exact match when not empty.
	Name string
}

// Matches applies the filter to a single user.
func (f UserFilter) Matches(u *domain.User) bool {
	if u.IsDeleted {
		return false
	}
	return f.Name == "" || u.Name == f.Name
}
