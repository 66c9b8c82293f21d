// Package mocks provides centralized mock implementations for testing.
//
// Store mocks are built on testify/mock. WithTx returns the mock itself
// unless a test sets an explicit expectation, so a service under test sees
// the same mock inside and outside a transaction. Transactor runs the
// unit of work directly with a nil *sql.Tx.
//
// Usage:
//
//	tasks := &mocks.TaskStore{}
//	tasks.On("GetByID", mock.Anything, id).Return(task, nil)
//	svc, _ := service.NewTaskService(mocks.Transactor{}, tasks, users, links, events.NoopEmitter{}, nil)
package mocks
