// Package logging provides structured logging for the winremote server.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support. Task execution is concurrent and failures
// inside tools are captured rather than propagated, so structured,
// filterable logs are the primary way to reconstruct what happened to a
// given task after the fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (task ID, tool name, component)
//   - Log rotation with configurable size limits
//   - Optional gzip compression for rotated logs
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access. The
// [RotatingWriter] type uses a mutex to protect file operations during
// rotation. Child loggers created via With* methods share the underlying
// writer safely.
//
// # Basic Usage
//
// Create a logger writing to a log directory:
//
//	logger, err := logging.NewLogger("/var/log/winremote", "INFO", logging.DefaultRotationConfig())
//	if err != nil { ... }
//	defer logger.Close()
//
//	taskLog := logger.WithTask("a1b2c3d4e5f6").WithTool("Shell")
//	taskLog.Info("task running")
package logging
