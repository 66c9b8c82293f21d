package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// AssignmentStore is a mock of store.AssignmentStore interface for use with testify/mock
type AssignmentStore struct {
	mock.Mock
}

var _ store.AssignmentStore = (*AssignmentStore)(nil)

// Link is a mock implementation of store.AssignmentStore.Link
func (m *AssignmentStore) Link(ctx context.Context, userID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

// Unlink is a mock implementation of store.AssignmentStore.Unlink
func (m *AssignmentStore) Unlink(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Bool(0), args.Error(1)
}

// UnlinkTask is a mock implementation of store.AssignmentStore.UnlinkTask
func (m *AssignmentStore) UnlinkTask(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, taskID)
	if id, ok := args.Get(0).(uuid.UUID); ok {
		return id, args.Error(1)
	}
	return uuid.Nil, args.Error(1)
}

// TaskIDsForUser is a mock implementation of store.AssignmentStore.TaskIDsForUser
func (m *AssignmentStore) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// PruneStale is a mock implementation of store.AssignmentStore.PruneStale
func (m *AssignmentStore) PruneStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// RestoreMissing is a mock implementation of store.AssignmentStore.RestoreMissing
func (m *AssignmentStore) RestoreMissing(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// WithTx returns the mock itself.
func (m *AssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return m
}
