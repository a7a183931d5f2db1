// Package logging sets up slog for the service and the terminal client,
// with console output, weekly rotating JSON files and an HTTP middleware.
package logging

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giygas/druginfo/config"
)

// File name prefixes per process
const (
	ServiceLogPrefix = "druginfo"
	ClientLogPrefix  = "druginfo-tui"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var (
	DefaultLoggingService *LoggingService
	mu                    sync.Mutex
)

// InitLogger logs to the console and to rotating JSON files in logDir.
// The console level depends on env and logLevel, files always get debug.
func InitLogger(logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) error {
	rl := NewRotatingLogger(logDir, ServiceLogPrefix, retentionWeeks, maxFileSize)
	if err := rl.Open(); err != nil {
		return fmt.Errorf("failed to initialize rotating logger: %w", err)
	}

	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(env, logLevel, testVerbose()),
	})
	file := slog.NewJSONHandler(rl, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	install(&LoggingService{
		Logger:   slog.New(&multiHandler{handlers: []slog.Handler{console, file}}),
		rotating: rl,
	})
	return nil
}

// InitFileLogger logs only to rotating files. Used by the terminal UI,
// which owns stdout.
func InitFileLogger(logDir string, logLevel string, retentionWeeks int, maxFileSize int64) error {
	rl := NewRotatingLogger(logDir, ClientLogPrefix, retentionWeeks, maxFileSize)
	if err := rl.Open(); err != nil {
		return fmt.Errorf("failed to initialize rotating logger: %w", err)
	}

	level := GetFileLogLevel()
	if logLevel != "" {
		level = parseLogLevel(logLevel)
	}

	install(&LoggingService{
		Logger:   slog.New(slog.NewJSONHandler(rl, &slog.HandlerOptions{Level: level})),
		rotating: rl,
	})
	return nil
}

// InitDiscardLogger silences all logging
func InitDiscardLogger() {
	install(&LoggingService{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func install(svc *LoggingService) {
	mu.Lock()
	prev := DefaultLoggingService
	DefaultLoggingService = svc
	mu.Unlock()

	slog.SetDefault(svc.Logger)

	if prev != nil && prev.rotating != nil {
		_ = prev.rotating.Close()
	}
}

// Close flushes and closes the log files of the global logger
func Close() error {
	mu.Lock()
	svc := DefaultLoggingService
	DefaultLoggingService = nil
	mu.Unlock()

	if svc == nil || svc.rotating == nil {
		return nil
	}
	return svc.rotating.Close()
}

// GetConsoleLogLevel picks the console level. Tests stay quiet unless run
// verbosely and ignore LOG_LEVEL; otherwise LOG_LEVEL wins over the
// environment default.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
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

// GetFileLogLevel returns the level for log files
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func testVerbose() bool {
	f := flag.Lookup("test.v")
	return f != nil && f.Value.String() == "true"
}

func logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return nil
	}
	return DefaultLoggingService.Logger
}

// fallback is used before InitLogger has run
var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// Logger returns the global logger, or the stderr fallback when none is
// installed
func Logger() *slog.Logger {
	if l := logger(); l != nil {
		return l
	}
	return fallback
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Info(msg, args...)
		return
	}
	fallback.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Error(msg, args...)
		return
	}
	fallback.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Warn(msg, args...)
		return
	}
	fallback.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Debug(msg, args...)
		return
	}
	fallback.Debug(msg, args...)
}
