// Package logging sets up structured logging for the converters: prefixed
// console lines on stdout and, optionally, JSON records in weekly rotating files.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/iso639-converter/config"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// consoleOutput is where console lines go
var consoleOutput io.Writer = os.Stdout

var fallbackLogger = slog.New(newConsoleHandler(os.Stdout, slog.LevelInfo))

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
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

// GetConsoleLogLevel returns the console level for env.
// Test runs stay quiet; otherwise an explicit level wins over the environment default.
func GetConsoleLogLevel(env config.Environment, logLevel string) slog.Level {
	if env == config.EnvTest {
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level of the rotating file handler
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// SetupLogger builds the console logger and, when cfg.LogDir is set, the
// rotating file logger. The returned RotatingLogger is nil without a log directory.
func SetupLogger(cfg *config.Config) (*slog.Logger, *RotatingLogger) {
	consoleHandler := newConsoleHandler(consoleOutput, GetConsoleLogLevel(cfg.Env, cfg.LogLevel))

	if cfg.LogDir == "" {
		return slog.New(consoleHandler), nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0750); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory, logging to console only", "error", err)
		return logger, nil
	}

	rotating := NewRotatingLogger(cfg.LogDir, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	rotating.startCleanup()

	// Console gets prefixed text, file gets JSON for better parsing
	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating
}

// InitLogger initializes the global logger instance
func InitLogger(cfg *config.Config) {
	logger, rotating := SetupLogger(cfg)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(logger)
}

// Close releases the rotating log file, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return nil
	}
	return DefaultLoggingService.rotating.Close()
}

// DefaultLogger returns the initialized logger, or the console fallback before InitLogger
func DefaultLogger() *slog.Logger {
	return current()
}

func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallbackLogger
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
