// Package api exposes the task and user services over HTTP.
//
// Handlers decode and validate requests, call one service operation and
// write the shared response envelope. Service errors are mapped to status
// codes and client-safe messages by HandleAPIError; the detailed error is
// logged after redaction.
package api
