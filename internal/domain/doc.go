// Package domain contains the core business entities of the task board,
// Task and User, together with the task status state machine and the
// validation rules for both. It has no knowledge of storage or transport.
package domain
