package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// ============================================================================
// 1. Error creation with different codes/categories
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         ErrorCode
		message      string
		wantCategory ErrorCategory
	}{
		{"empty_text", ErrCodeEmptyText, "A task cannot be empty.", CategoryValidation},
		{"too_long", ErrCodeTextTooLong, "too long", CategoryValidation},
		{"not_found", ErrCodeNotFound, "no such task", CategoryPermanent},
		{"conflict", ErrCodeConflict, "ambiguous", CategoryPermanent},
		{"unavailable", ErrCodeUnavailable, "store closed", CategoryStorage},
		{"corruption", ErrCodeCorruption, "bad json", CategoryStorage},
		{"internal", ErrCodeInternal, "internal error", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", err.Code(), tt.code)
			}
			if err.Category() != tt.wantCategory {
				t.Errorf("Category() = %v, want %v", err.Category(), tt.wantCategory)
			}
			if err.Error() != tt.message {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.message)
			}
		})
	}
}

func TestKeyAndTaskIDMetadata(t *testing.T) {
	err := NotFound("no task matches ab12", WithTaskID("ab12"), WithKey("todos"))
	md := err.Metadata()
	if md[MetaTaskID] != "ab12" || md[MetaKey] != "todos" {
		t.Errorf("Metadata() = %v", md)
	}
}

func TestUnknownCodeDefaults(t *testing.T) {
	code := ErrorCode("SOMETHING_ELSE")
	if code.DefaultCategory() != CategoryInternal {
		t.Errorf("DefaultCategory() = %v, want internal", code.DefaultCategory())
	}
	if code.Description() != "unknown error" {
		t.Errorf("Description() = %q", code.Description())
	}
}

func TestCategoryIsUserFacing(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     bool
	}{
		{CategoryValidation, true},
		{CategoryPermanent, true},
		{CategoryStorage, false},
		{CategoryInternal, false},
	}
	for _, tt := range tests {
		if got := tt.category.IsUserFacing(); got != tt.want {
			t.Errorf("%s.IsUserFacing() = %v, want %v", tt.category, got, tt.want)
		}
	}
}

// ============================================================================
// 2. Metadata and options
// ============================================================================

func TestMetadataImmutability(t *testing.T) {
	err := New(ErrCodeInternal, "x", WithMetadata("k", "v"))
	md := err.Metadata()
	md["k"] = "changed"
	if err.Metadata()["k"] != "v" {
		t.Error("Metadata() must return a copy")
	}
}

func TestNilMetadata(t *testing.T) {
	err := New(ErrCodeInternal, "x")
	if md := err.Metadata(); md == nil || len(md) != 0 {
		t.Errorf("Metadata() = %v, want empty map", md)
	}
}

func TestWithCategoryOverride(t *testing.T) {
	err := New(ErrCodeInternal, "x", WithCategory(CategoryStorage))
	if !IsStorage(err) {
		t.Error("category override not applied")
	}
}

// ============================================================================
// 3. Wrapping
// ============================================================================

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, "saving tasks")

	if err.Error() != "saving tasks: disk full" {
		t.Errorf("Error() = %v", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return original error")
	}
	if err.Code() != ErrCodeInternal {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeInternal)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "message"); err != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
	if err := WrapWithCode(nil, ErrCodeUnavailable, "message"); err != nil {
		t.Error("WrapWithCode(nil, ...) should return nil")
	}
}

func TestWrapTypedError(t *testing.T) {
	original := New(ErrCodeCorruption, "decode todos",
		WithMetadata("bytes", "12"),
		WithTaskID("task-1"),
		WithKey("todos"),
	)
	wrapped := Wrap(original, "loading")

	if wrapped.Code() != ErrCodeCorruption {
		t.Errorf("wrapped.Code() = %v, want %v", wrapped.Code(), ErrCodeCorruption)
	}
	if wrapped.Metadata()["bytes"] != "12" {
		t.Error("wrapped error should preserve metadata")
	}
	if md := wrapped.Metadata(); md[MetaTaskID] != "task-1" || md[MetaKey] != "todos" {
		t.Error("wrapped error should preserve task ID and key")
	}
	if !errors.Is(wrapped, original) {
		t.Error("wrapped error should be 'Is' original")
	}
}

func TestWrapContextErrors(t *testing.T) {
	if code := Wrap(context.DeadlineExceeded, "put").Code(); code != ErrCodeTimeout {
		t.Errorf("deadline: Code() = %v, want TIMEOUT", code)
	}
	if code := Wrap(context.Canceled, "put").Code(); code != ErrCodeCanceled {
		t.Errorf("canceled: Code() = %v, want CANCELED", code)
	}
	inner := fmt.Errorf("kv put: %w", context.DeadlineExceeded)
	if code := Wrap(inner, "put").Code(); code != ErrCodeTimeout {
		t.Errorf("wrapped deadline: Code() = %v, want TIMEOUT", code)
	}
}

// ============================================================================
// 4. Inspection helpers
// ============================================================================

func TestIsAndCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeTextTooLong, "too long"))
	if !Is(err, ErrCodeTextTooLong) {
		t.Error("Is() should see through fmt wrapping")
	}
	if Is(err, ErrCodeEmptyText) {
		t.Error("Is() matched the wrong code")
	}
	if Code(err) != ErrCodeTextTooLong {
		t.Errorf("Code() = %v", Code(err))
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false")
	}
}

func TestHelpersOnPlainErrors(t *testing.T) {
	plain := fmt.Errorf("plain")
	if Is(plain, ErrCodeInternal) || IsCategory(plain, CategoryInternal) {
		t.Error("plain errors carry no code or category")
	}
	if Code(plain) != "" {
		t.Errorf("Code() = %q, want empty", Code(plain))
	}
	if As(plain) != nil {
		t.Error("As() should return nil for plain errors")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", New(ErrCodeEmptyText, "A task cannot be empty."), "A task cannot be empty."},
		{"wrapped validation", fmt.Errorf("add: %w", New(ErrCodeEmptyText, "A task cannot be empty.")), "A task cannot be empty."},
		{"storage", WrapWithCode(fmt.Errorf("bolt: tx closed"), ErrCodeUnavailable, "put todos"), "storage unavailable"},
		{"plain", fmt.Errorf("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	if RecoverPanic(nil) != nil {
		t.Error("RecoverPanic(nil) should be nil")
	}
	err := RecoverPanic("index out of range")
	if err.Code() != ErrCodePanic || err.Error() != "index out of range" {
		t.Errorf("got %v / %q", err.Code(), err.Error())
	}
	if err.Metadata()["panic_value"] != "string" {
		t.Errorf("panic_value = %q", err.Metadata()["panic_value"])
	}
	if UserMessage(err) != "recovered from panic" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}

	wrapped := RecoverPanic(errors.New("nil map"))
	if wrapped.Error() != "nil map" || wrapped.Metadata()["panic_value"] != "*errors.errorString" {
		t.Errorf("got %q / %v", wrapped.Error(), wrapped.Metadata())
	}
}
