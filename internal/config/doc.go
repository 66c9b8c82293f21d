// Package config loads the server, database, auth and job settings from
// config.yaml, TASKBOARD_-prefixed environment variables and built-in
// defaults, then validates the result before any component starts.
package config
