// Package logging provides config-driven categorized file-based logging.
// Logs are written to the configured logs directory with one file per
// category per day. Logging is controlled by logging.debug_mode: when false,
// every logger is a no-op and nothing touches the disk.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"copilotdesk/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategorySession Category = "session" // Controller state transitions
	CategoryReply   Category = "reply"   // Rule matching and reply timing
	CategoryUI      Category = "ui"      // Key handling, layout
)

type categoryLogger struct {
	logger *zap.Logger
	file   *os.File
}

var (
	mu      sync.RWMutex
	cfg     config.LoggingConfig
	level   zapcore.Level = zapcore.InfoLevel
	loggers               = make(map[Category]*categoryLogger)
)

// Initialize applies the logging config. When debug mode is off this is a
// silent no-op. If the logs directory is unusable, logging is switched off
// and the error returned; every logger is then a no-op. Safe to call again
// after CloseAll.
func Initialize(c config.LoggingConfig) error {
	mu.Lock()
	cfg = c
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	level = lvl
	mu.Unlock()

	if !c.DebugMode {
		return nil
	}
	if c.Dir == "" {
		disable()
		return fmt.Errorf("logging: dir required in debug mode")
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		disable()
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("logging initialized",
		zap.String("dir", c.Dir),
		zap.String("level", level.String()),
		zap.String("format", c.Format))
	return nil
}

// disable turns off debug mode after a failed Initialize.
func disable() {
	mu.Lock()
	defer mu.Unlock()
	cfg.DebugMode = false
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) the logger for a category.
// Returns zap.NewNop() when the category is disabled or the file can't be opened.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l.logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l.logger
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Warn once; the category stays a no-op until CloseAll.
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		loggers[category] = &categoryLogger{logger: zap.NewNop()}
		return loggers[category].logger
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(file), level)
	l := &categoryLogger{
		logger: zap.New(core).Named(string(category)),
		file:   file,
	}
	loggers[category] = l
	return l.logger
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// CloseAll syncs and closes all open log files (call at shutdown)
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		_ = l.logger.Sync()
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*categoryLogger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - printf-style logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Sugar().Infof(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Sugar().Infof(format, args...)
}

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Sugar().Debugf(format, args...)
}

// Reply logs to the reply category
func Reply(format string, args ...interface{}) {
	Get(CategoryReply).Sugar().Infof(format, args...)
}

// ReplyDebug logs debug to the reply category
func ReplyDebug(format string, args ...interface{}) {
	Get(CategoryReply).Sugar().Debugf(format, args...)
}

// UI logs to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Sugar().Infof(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Sugar().Debugf(format, args...)
}
