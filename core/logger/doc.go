// Package logger provides structured logging built on Go's standard slog
// package: a factory with environment-based configuration plus nil-safe
// attribute helpers for the patterns this library logs.
//
//	log := logger.New(
//	    logger.WithApp("dashboard-client"),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithTextFormatter(),
//	)
//
//	log.Warn("transport failure, retrying",
//	    logger.Error(err),
//	    logger.Attempt(2),
//	    logger.Duration(wait),
//	)
package logger
