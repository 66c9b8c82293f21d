package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// Transactor runs the unit of work with a nil transaction.
type Transactor struct{}

var _ store.Transactor = Transactor{}

// RunInTransaction calls fn(ctx, nil) and returns its error.
func (Transactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}
