// Package logging provides a unified logging system for the saveguard
// backup agent. All components share one log file with per-component
// level overrides.
//
// Basic usage:
//
//	cfg := logging.Config{
//	    Level: "info",
//	    Path:  logging.DefaultLogPath(),
//	}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "games", 42)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to their log levels, allowing
	// per-component overrides of the default level.
	Components map[string]string

	// ConsoleLevel enables console output at the specified level.
	// Empty string disables console output (default). When set, logs at
	// this level and above also go to stderr.
	ConsoleLevel string
}

// Logger wraps charmbracelet/log with component identification.
// It can output to both file and console with different formatting.
//
// A Logger holds no writers itself: the backing charm loggers are
// resolved from the global state on every call, so loggers captured in
// package-level vars before Init still pick up the configured file.
type Logger struct {
	component string
	context   []interface{} // key-value pairs bound via With
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// log writes to the file logger and, when configured, the console logger.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	file, console := backendsFor(l.component)
	if len(l.context) > 0 {
		merged := make([]interface{}, 0, len(l.context)+len(args))
		merged = append(merged, l.context...)
		merged = append(merged, args...)
		args = merged
	}
	logTo(file, level, msg, args...)
	if console != nil {
		logTo(console, level, msg, args...)
	}
}

// logTo writes a log message to the given logger at the specified level.
func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// With returns a new logger with additional context.
func (l *Logger) With(args ...interface{}) *Logger {
	context := make([]interface{}, 0, len(l.context)+len(args))
	context = append(context, l.context...)
	context = append(context, args...)
	return &Logger{component: l.component, context: context}
}

// backendPair holds the built charm loggers for one component.
type backendPair struct {
	file    *log.Logger
	console *log.Logger
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger
	backends    map[string]*backendPair

	consoleEnabled bool
	consoleLevel   Level
}

var globalState = &state{
	components: make(map[string]Level),
	loggers:    make(map[string]*Logger),
	backends:   make(map[string]*backendPair),
}

// DefaultLogPath returns the default log file path under XDG state home.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "saveguard", "saveguard.log")
}

// Init initializes the logging system with the given configuration.
// Loggers obtained before Init discard output until Init is called,
// then start writing to the configured file.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = LevelInfo
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	// Close any previous writer.
	if globalState.writer != nil {
		_ = globalState.writer.Close()
	}

	globalState.writer = writer
	globalState.level = level
	globalState.initialized = true

	globalState.components = make(map[string]Level, len(cfg.Components))
	for name, levelStr := range cfg.Components {
		componentLevel, err := ParseLevel(levelStr)
		if err != nil {
			continue
		}
		globalState.components[name] = componentLevel
	}

	globalState.consoleEnabled = false
	if cfg.ConsoleLevel != "" {
		consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
		if err == nil {
			globalState.consoleEnabled = true
			globalState.consoleLevel = consoleLevel
		}
	}

	// Drop cached backends; they are rebuilt lazily against the new
	// writer, including for loggers captured before Init.
	globalState.backends = make(map[string]*backendPair)

	return nil
}

// Close flushes and closes the log file.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.writer == nil {
		return nil
	}

	err := globalState.writer.Close()
	globalState.writer = nil
	globalState.initialized = false
	globalState.backends = make(map[string]*backendPair)
	return err
}

// Get returns a logger for the given component, creating it on first use.
// Calling Get before Init is fine; the returned logger starts writing
// once Init has run.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := &Logger{component: component}
	globalState.loggers[component] = logger
	return logger
}

// backendsFor returns the charm loggers for a component, building and
// caching them from the current global state on first use.
func backendsFor(component string) (*log.Logger, *log.Logger) {
	globalState.mu.RLock()
	pair, ok := globalState.backends[component]
	globalState.mu.RUnlock()
	if ok {
		return pair.file, pair.console
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()
	if pair, ok := globalState.backends[component]; ok {
		return pair.file, pair.console
	}

	pair = buildBackends(component)
	globalState.backends[component] = pair
	return pair.file, pair.console
}

// buildBackends constructs the charm loggers for a component using the
// current global state. Caller must hold globalState.mu.
func buildBackends(component string) *backendPair {
	level := globalState.level
	if componentLevel, ok := globalState.components[component]; ok {
		level = componentLevel
	}

	var fileWriter io.Writer = io.Discard
	if globalState.writer != nil {
		fileWriter = globalState.writer
	}

	fileLogger := log.NewWithOptions(fileWriter, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          component,
	})
	fileLogger.SetLevel(level.toCharmLevel())

	pair := &backendPair{file: fileLogger}

	if globalState.consoleEnabled {
		consoleLogger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
		consoleLogger.SetLevel(globalState.consoleLevel.toCharmLevel())
		pair.console = consoleLogger
	}

	return pair
}
