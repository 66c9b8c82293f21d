// Package service contains the task board use cases.
//
// TaskService and UserService coordinate the task, user and assignment
// stores. Every operation that writes more than one record runs inside a
// single store.Transactor unit of work, so the task's assignee and the
// user's task list change together or not at all. Lifecycle events are
// emitted only after the unit of work commits.
//
// ReconcileService repairs assignment links that disagree with the task
// side, for data written outside these services.
package service
