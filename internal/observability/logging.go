package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a JSON logger with a component field attached.
func NewLogger(component string) *slog.Logger {
	return NewLoggerTo(os.Stdout, component, os.Getenv("LOG_LEVEL"))
}

func NewLoggerTo(w io.Writer, component, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler)
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

// Discard is a logger for tests and for callers that pass no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func WithRecipe(logger *slog.Logger, recipeID string) *slog.Logger {
	if logger == nil || recipeID == "" {
		return logger
	}
	return logger.With("recipe_id", recipeID)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
