package main

import "log/slog"

// cron narrates its scheduler lifecycle through Info, keep that at
// debug so it only shows up with -v.
type cronLogger struct{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}

// an overlapping run getting skipped is worth seeing without -v.
type skipLogger struct {
	cronLogger
}

func (l skipLogger) Info(msg string, keysAndValues ...any) {
	slog.Warn("cron: "+msg, keysAndValues...)
}
