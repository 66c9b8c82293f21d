// Package logger configures the process-wide slog JSON logger and carries
// request-scoped loggers through context.Context.
//
// The trace middleware stores a logger tagged with the request's trace_id;
// services and stores retrieve it with FromContextOrDefault so every record
// of one request can be correlated. Buffer captures output for tests.
package logger
