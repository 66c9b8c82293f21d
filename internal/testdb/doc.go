// Package testdb provides helpers for tests that need a real PostgreSQL
// database.
//
// Tests using it are guarded by the integration build tag and skip when no
// database URL is configured:
//
//	DATABASE_URL=postgres://localhost:5432/taskboard_test?sslmode=disable \
//	    go test -tags=integration ./...
//
// OpenTestDB applies the embedded migrations once per database handle, and
// ResetTables empties every table so each test starts from a known state.
package testdb
