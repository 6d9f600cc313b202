// Package logging provides config-driven categorized logging for booklib.
// Logs are written to .booklib/logs/ because stdout belongs to the terminal UI.
// Logging is controlled by logging.debug_mode in the config - when false, no logs are written.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"booklib/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot  Category = "boot"  // Startup, config resolution
	CategoryAPI   Category = "api"   // HTTP calls to the library service
	CategoryStore Category = "store" // List state transitions
	CategoryUI    Category = "ui"    // Terminal UI intents
	CategoryCLI   Category = "cli"   // Scriptable subcommands
)

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	cfg     config.LoggingConfig
	logFile *os.File
	logsDir string
)

// Initialize sets up file logging under workspace/.booklib/logs.
// When debug mode is off it is a silent no-op and every Get returns a no-op logger.
func Initialize(workspace string, lc config.LoggingConfig) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	CloseAll()

	mu.Lock()
	cfg = lc
	mu.Unlock()

	if !lc.DebugMode {
		return nil
	}

	dir := filepath.Join(workspace, config.DirName, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	// Date prefix for easy rotation
	name := fmt.Sprintf("%s_booklib.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	logFile = f
	root = build(zapcore.AddSync(f), lc)
	logsDir = dir
	mu.Unlock()

	if err := InitAudit(); err != nil {
		return err
	}

	boot := Get(CategoryBoot)
	boot.Info("logging initialized",
		zap.String("workspace", workspace),
		zap.String("logs_dir", dir),
		zap.String("level", lc.Level))
	if len(lc.Categories) == 0 {
		boot.Debug("all categories enabled (no category filter)")
	}

	return nil
}

// InitializeWriter routes all categories to w regardless of debug mode.
// The CLI uses it for --verbose output on stderr. An open log file and
// audit trail keep receiving entries.
func InitializeWriter(w io.Writer, lc config.LoggingConfig) {
	mu.Lock()
	defer mu.Unlock()

	lc.DebugMode = true
	cfg = lc
	core := newCore(zapcore.AddSync(w), lc)
	if logFile != nil {
		core = zapcore.NewTee(newCore(zapcore.AddSync(logFile), lc), core)
	}
	root = zap.New(core)
}

func build(ws zapcore.WriteSyncer, lc config.LoggingConfig) *zap.Logger {
	return zap.New(newCore(ws, lc))
}

func newCore(ws zapcore.WriteSyncer, lc config.LoggingConfig) zapcore.Core {
	var enc zapcore.Encoder
	if lc.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewCore(enc, ws, parseLevel(lc.Level))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns the logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(string(category))
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

// CloseAll flushes and closes the log file and resets to no-op logging.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	CloseAudit()
	_ = root.Sync()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	root = zap.NewNop()
	cfg = config.LoggingConfig{}
	logsDir = ""
}
