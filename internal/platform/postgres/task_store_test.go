package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{
	"id", "title", "description", "status", "assignee_id", "is_deleted", "created_at", "updated_at",
}

// arrayArgConverter lets uuid slices through to the mock the way the pgx
// driver accepts them for = ANY($1).
type arrayArgConverter struct{}

func (arrayArgConverter) ConvertValue(v any) (driver.Value, error) {
	if ids, ok := v.([]uuid.UUID); ok {
		return ids, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayArgConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestPostgresTaskStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	task, err := domain.NewTask("Write report", "")
	require.NoError(t, err)
	userID := uuid.New()
	task.AssigneeID = &userID

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(task.ID, "Write report", "", "todo", userID, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), task))
}

func TestPostgresTaskStore_CreateValidationFailure(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	err := s.Create(context.Background(), &domain.Task{ID: uuid.New(), Status: domain.TaskStatusTodo})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostgresTaskStore_CreateForeignKeyViolation(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	task, _ := domain.NewTask("t", "")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).WillReturnError(newPgError("23503"))

	err := s.Create(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Operation)
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	id := uuid.New()
	assignee := uuid.New()

	t.Run("found with assignee", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(id.String(), "t", "d", "in-progress", assignee.String(), false, now, now))

		task, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, assignee, *task.AssigneeID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(taskRowColumns))

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("for update locks the row", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(id.String(), "t", "", "todo", nil, false, now, now))

		task, err := s.GetByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, task.AssigneeID)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks")).WillReturnError(errors.New("connection reset"))

		_, err := s.GetByID(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPostgresTaskStore_List(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	status := domain.TaskStatusDone
	day := store.Day(now)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM tasks WHERE is_deleted = FALSE AND status = $1 AND created_at >= $2 AND created_at < $3 " +
			"ORDER BY created_at, id")).
		WithArgs("done", day.Start, day.End).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(uuid.New().String(), "a", "", "done", nil, false, now, now).
			AddRow(uuid.New().String(), "b", "", "done", nil, false, now, now))

	tasks, err := s.List(context.Background(), store.TaskFilter{Status: &status, CreatedAt: &day})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Title)
}

func TestPostgresTaskStore_ListIncludeDeleted(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " +
		"id, title, description, status, assignee_id, is_deleted, created_at, updated_at " +
		"FROM tasks ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := s.List(context.Background(), store.TaskFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestPostgresTaskStore_GetByIDs(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1) ORDER BY created_at, id")).
		WithArgs([]uuid.UUID{a, b}).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(a.String(), "a", "", "todo", nil, true, now, now))

	tasks, err := s.GetByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsDeleted)

	empty, err := s.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgresTaskStore_Update(t *testing.T) {
	task, _ := domain.NewTask("t", "")
	require.NoError(t, task.TransitionTo(domain.TaskStatusDone))

	t.Run("success", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs("t", "", "done", nil, false, sqlmock.AnyArg(), task.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), task))
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresTaskStore(db, nil)

	assert.Same(t, s, s.WithTx(nil))

	task, _ := domain.NewTask("t", "")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.WithTx(tx).Create(context.Background(), task))
	require.NoError(t, tx.Rollback())
}

func TestNewPostgresTaskStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresTaskStore(nil, nil) })
}
