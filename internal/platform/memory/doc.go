// Package memory provides an in-process implementation of the store
// interfaces. It backs the "memory" database driver used for local runs,
// and the service tests that exercise multi-record operations without
// PostgreSQL.
package memory
