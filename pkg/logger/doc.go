// Package logger builds configured log/slog loggers: JSON for
// production aggregation, text for development, with static service and
// environment attributes on every record.
package logger
