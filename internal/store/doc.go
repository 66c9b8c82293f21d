// Package store declares the persistence contracts for tasks, users and the
// user_tasks link table, along with the errors every backend must return.
//
// Every store exposes WithTx so that a service can run several store calls
// inside one transaction obtained from a Transactor.
package store
