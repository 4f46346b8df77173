// Package logging provides leveled console output for tasklist.
// Task state lives in the store and its backend; these lines are for
// watching what the store does, not a record of it.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger writes one line per entry: LEVEL TIMESTAMP [component] message key=value ...
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a Logger writing to stderr at INFO.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stderr,
		minLevel: LevelInfo,
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	l := New()
	l.output = io.Discard
	l.minLevel = LevelError
	return l
}

// ParseLevel converts a config string such as "warn" to a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		level = LevelWarn
	}
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// WithComponent returns a new logger with the given component name.
// The new logger shares the parent's output and lock.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// Level returns the minimum log level.
func (l *Logger) Level() Level {
	return l.minLevel
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Store event helpers ---

// StoreLoaded logs the result of hydrating a store from its backend.
func (l *Logger) StoreLoaded(tasks int, persistence bool) {
	l.Info("store_loaded", map[string]interface{}{
		"tasks":       tasks,
		"persistence": persistence,
	})
}

// TaskAdded logs a successful add.
func (l *Logger) TaskAdded(id string, textLen int) {
	l.Debug("task_added", map[string]interface{}{
		"id":       id,
		"text_len": textLen,
	})
}

// TaskToggled logs a completion flip.
func (l *Logger) TaskToggled(id string, completed bool) {
	l.Debug("task_toggled", map[string]interface{}{
		"id":        id,
		"completed": completed,
	})
}

// TaskDeleted logs a removal.
func (l *Logger) TaskDeleted(id string) {
	l.Debug("task_deleted", map[string]interface{}{
		"id": id,
	})
}

// ValidationRejected logs input that never became a task.
func (l *Logger) ValidationRejected(code string, textLen int) {
	l.Debug("validation_rejected", map[string]interface{}{
		"code":     code,
		"text_len": textLen,
	})
}

// PersistenceChanged logs a persistence toggle.
func (l *Logger) PersistenceChanged(enabled bool, tasks int) {
	l.Info("persistence_changed", map[string]interface{}{
		"enabled": enabled,
		"tasks":   tasks,
	})
}

// StorageFailure logs a backend error. The store keeps working in memory.
func (l *Logger) StorageFailure(op, key string, err error) {
	fields := map[string]interface{}{
		"op":  op,
		"key": key,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Warn("storage_failure", fields)
}
