package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore implements store.UserStore on a DB.
type UserStore struct {
	db *DB
}

// NewUserStore returns a UserStore sharing db's state.
func NewUserStore(db *DB) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.
func (s *UserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}

// Create implements store.UserStore. Tasks on the argument are ignored.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", store.ErrDuplicate, user.ID)
	}

	stored := cloneUser(user)
	stored.Tasks = nil
	s.db.users[user.ID] = stored
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.populated(u), nil
}

// GetByIDs implements store.UserStore.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	users := []*domain.User{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.db.users[id]; ok {
			users = append(users, s.populated(u))
		}
	}
	sortUsers(users)
	return users, nil
}

// FindFirstByName implements store.UserStore.
func (s *UserStore) FindFirstByName(ctx context.Context, name string) (*domain.User, error) {
	users, err := s.matching(ctx, store.UserFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || name == "" {
		return nil, store.ErrUserNotFound
	}
	return users[0], nil
}

// List implements store.UserStore.
func (s *UserStore) List(
	ctx context.Context,
	filter store.UserFilter,
	limit, offset int,
) ([]*domain.User, error) {
	users, err := s.matching(ctx, filter)
	if err != nil {
		return nil, err
	}

	if offset >= len(users) {
		return []*domain.User{}, nil
	}
	end := len(users)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return users[offset:end], nil
}

// Count implements store.UserStore.
func (s *UserStore) Count(ctx context.Context, filter store.UserFilter) (int, error) {
	users, err := s.matching(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (s *UserStore) matching(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := []*domain.User{}
	for _, u := range s.db.users {
		if filter.Matches(u) {
			users = append(users, s.populated(u))
		}
	}
	sortUsers(users)
	return users, nil
}

// populated returns a copy of u with Tasks read from the links. Callers hold mu.
func (s *UserStore) populated(u *domain.User) *domain.User {
	c := cloneUser(u)
	c.Tasks = s.db.taskIDsLocked(u.ID)
	return c
}
