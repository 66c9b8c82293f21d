package memory

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

type link struct {
	userID   uuid.UUID
	taskID   uuid.UUID
	position int64
}

// DB holds every record in memory. The stores it hands out share its state.
// Transactions are serialized; a failed transaction restores the state
// captured when it began.
type DB struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*domain.Task
	users   map[uuid.UUID]*domain.User
	links   []link
	nextPos int64

	txMu   sync.Mutex
	logger *slog.Logger
}

// NewDB returns an empty database.
func NewDB(logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{
		tasks:  make(map[uuid.UUID]*domain.Task),
		users:  make(map[uuid.UUID]*domain.User),
		logger: logger.With(slog.String("component", "memory_db")),
	}
}

var _ store.Transactor = (*DB)(nil)

// RunInTransaction implements store.Transactor. fn receives a nil *sql.Tx.
func (db *DB) RunInTransaction(ctx context.Context, fn store.TxFn) (err error) {
	log := logger.FromContextOrDefault(ctx, db.logger)

	db.txMu.Lock()
	defer db.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := db.snapshot()

	defer func() {
		if p := recover(); p != nil {
			db.restore(snap)
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
			panic(p)
		}
	}()

	var tx *sql.Tx
	if err = fn(ctx, tx); err != nil {
		db.restore(snap)
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	log.Debug("transaction committed successfully")
	return nil
}

// Ping always succeeds; it lets the memory backend stand in for *sql.DB in health checks.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

type snapshot struct {
	tasks   map[uuid.UUID]*domain.Task
	users   map[uuid.UUID]*domain.User
	links   []link
	nextPos int64
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s := snapshot{
		tasks:   make(map[uuid.UUID]*domain.Task, len(db.tasks)),
		users:   make(map[uuid.UUID]*domain.User, len(db.users)),
		links:   append([]link(nil), db.links...),
		nextPos: db.nextPos,
	}
	for id, t := range db.tasks {
		s.tasks[id] = cloneTask(t)
	}
	for id, u := range db.users {
		s.users[id] = cloneUser(u)
	}
	return s
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.tasks = s.tasks
	db.users = s.users
	db.links = s.links
	db.nextPos = s.nextPos
}

// taskIDsLocked returns the user's linked task IDs in link order. Callers hold mu.
func (db *DB) taskIDsLocked(userID uuid.UUID) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, l := range db.links {
		if l.userID == userID {
			ids = append(ids, l.taskID)
		}
	}
	return ids
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		c.AssigneeID = &id
	}
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Tasks = append([]uuid.UUID{}, u.Tasks...)
	return &c
}

func sortTasks(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
}

func sortUsers(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
}
