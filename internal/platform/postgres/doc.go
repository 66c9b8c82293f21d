// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, mapping between domain entities and rows,
// and translating PostgreSQL error codes into store errors. The schema is
// kept as goose migrations embedded in this package.
package postgres
