// Package events provides lifecycle events for tasks and users and an
// in-process emitter that dispatches them to registered handlers.
//
// Services emit events after their transaction commits, so handlers only
// ever see changes that were persisted. The audit handler writes one
// structured log record per event.
package events
