package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// AssignmentStore implements store.AssignmentStore on a DB.
type AssignmentStore struct {
	db *DB
}

// NewAssignmentStore returns an AssignmentStore sharing db's state.
func NewAssignmentStore(db *DB) *AssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &AssignmentStore{db: db}
}

var _ store.AssignmentStore = (*AssignmentStore)(nil)

// WithTx implements store.AssignmentStore.
func (s *AssignmentStore) WithTx(_ *sql.Tx) store.AssignmentStore {
	return s
}

// Link implements store.AssignmentStore.
func (s *AssignmentStore) Link(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return fmt.Errorf("%w: user %s does not exist", store.ErrInvalidEntity, userID)
	}
	if _, ok := s.db.tasks[taskID]; !ok {
		return fmt.Errorf("%w: task %s does not exist", store.ErrInvalidEntity, taskID)
	}

	for _, l := range s.db.links {
		if l.taskID != taskID {
			continue
		}
		if l.userID == userID {
			return nil
		}
		return fmt.Errorf("%w: task %s is linked to another user", store.ErrDuplicate, taskID)
	}

	s.appendLocked(userID, taskID)
	return nil
}

// Unlink implements store.AssignmentStore.
func (s *AssignmentStore) Unlink(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.removeLocked(func(l link) bool { return l.userID == userID && l.taskID == taskID }) > 0, nil
}

// UnlinkTask implements store.AssignmentStore.
func (s *AssignmentStore) UnlinkTask(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	previous := uuid.Nil
	s.removeLocked(func(l link) bool {
		if l.taskID == taskID {
			previous = l.userID
			return true
		}
		return false
	})
	return previous, nil
}

// TaskIDsForUser implements store.AssignmentStore.
func (s *AssignmentStore) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.taskIDsLocked(userID), nil
}

// PruneStale implements store.AssignmentStore.
func (s *AssignmentStore) PruneStale(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return int64(s.removeLocked(func(l link) bool {
		t, ok := s.db.tasks[l.taskID]
		return ok && !t.IsAssignedTo(l.userID)
	})), nil
}

// RestoreMissing implements store.AssignmentStore.
func (s *AssignmentStore) RestoreMissing(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	linked := make(map[uuid.UUID]bool, len(s.db.links))
	for _, l := range s.db.links {
		linked[l.taskID] = true
	}

	var missing []*domain.Task
	for _, t := range s.db.tasks {
		if t.AssigneeID != nil && !linked[t.ID] {
			missing = append(missing, t)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if !missing[i].UpdatedAt.Equal(missing[j].UpdatedAt) {
			return missing[i].UpdatedAt.Before(missing[j].UpdatedAt)
		}
		return missing[i].ID.String() < missing[j].ID.String()
	})

	for _, t := range missing {
		s.appendLocked(*t.AssigneeID, t.ID)
	}
	return int64(len(missing)), nil
}

func (s *AssignmentStore) appendLocked(userID, taskID uuid.UUID) {
	s.db.nextPos++
	s.db.links = append(s.db.links, link{userID: userID, taskID: taskID, position: s.db.nextPos})
}

func (s *AssignmentStore) removeLocked(match func(link) bool) int {
	kept := s.db.links[:0:0]
	removed := 0
	for _, l := range s.db.links {
		if match(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.db.links = kept
	return removed
}
