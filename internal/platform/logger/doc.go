// Package logger provides structured logging for the application.
//
// It builds JSON log/slog loggers, optionally rotating file output through
// lumberjack, and carries request-scoped loggers through context.Context.
package logger
