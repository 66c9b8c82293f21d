// Package jobs runs background work on a bounded queue drained by a small
// worker pool. The runner also schedules periodic jobs, such as link
// reconciliation, and tracks the status of every job it has seen.
package jobs
