package logging

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelInfo)

	// Debug should be filtered
	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should be filtered at INFO level")
	}

	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("info message should be logged")
	}

	output := buf.String()
	if !strings.Contains(output, "INFO") {
		t.Error("log should contain INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("log should contain the message")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.WithComponent("store").Info("test message")

	output := buf.String()
	if !strings.Contains(output, "[store]") {
		t.Errorf("expected component 'store' in log, got: %s", output)
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.Info("event", map[string]interface{}{
		"zeta":  1,
		"alpha": "a",
	})

	output := buf.String()
	if !strings.Contains(output, "alpha=a zeta=1") {
		t.Errorf("expected sorted fields, got: %s", output)
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("test")
	logger.SetOutput(&buf)

	logger.Info("hello world", map[string]interface{}{"key": "value"})

	output := buf.String()
	// Format: LEVEL TIMESTAMP [component] message key=value
	if !strings.HasPrefix(output, "INFO ") {
		t.Errorf("expected line to start with 'INFO ', got: %s", output)
	}
	if !strings.Contains(output, "[test] hello world key=value") {
		t.Errorf("unexpected line: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("line should end with newline")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic or write anywhere visible.
	logger.Error("dropped")
	logger.StorageFailure("put", "todos", fmt.Errorf("boom"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_StoreEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelDebug)

	logger.StoreLoaded(3, true)
	logger.TaskAdded("abc", 8)
	logger.TaskToggled("abc", true)
	logger.TaskDeleted("abc")
	logger.ValidationRejected("EMPTY_TEXT", 0)
	logger.PersistenceChanged(false, 3)

	output := buf.String()
	for _, want := range []string{
		"store_loaded persistence=true tasks=3",
		"task_added id=abc text_len=8",
		"task_toggled completed=true id=abc",
		"task_deleted id=abc",
		"validation_rejected code=EMPTY_TEXT text_len=0",
		"persistence_changed enabled=false tasks=3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in:\n%s", want, output)
		}
	}
}

func TestLogger_StorageFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.StorageFailure("put", "todos", fmt.Errorf("quota exceeded"))

	output := buf.String()
	if !strings.HasPrefix(output, "WARN ") {
		t.Errorf("storage failure should be WARN, got: %s", output)
	}
	if !strings.Contains(output, "error=quota exceeded key=todos op=put") {
		t.Errorf("unexpected fields: %s", output)
	}
}
