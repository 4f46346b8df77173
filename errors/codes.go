package errors

// ErrorCategory classifies errors by how the caller should react.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryValidation indicates rejected user input. Nothing changed.
	// Examples: empty task text, task text over the length limit.
	CategoryValidation ErrorCategory = "validation"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: unknown task id, ambiguous id prefix.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryStorage indicates the persistence backend failed.
	// Examples: backend closed, quota exceeded, undecodable stored data.
	CategoryStorage ErrorCategory = "storage"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsUserFacing returns true if the error message is meant to be shown
// to the user verbatim.
func (c ErrorCategory) IsUserFacing() bool {
	switch c {
	case CategoryValidation, CategoryPermanent:
		return true
	default:
		return false
	}
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for the task list.
const (
	// Validation errors
	ErrCodeEmptyText    ErrorCode = "EMPTY_TEXT"    // Task text is empty after trimming
	ErrCodeTextTooLong  ErrorCode = "TEXT_TOO_LONG" // Task text exceeds the length limit
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed option or argument

	// Permanent errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND" // No task matches
	ErrCodeConflict ErrorCode = "CONFLICT"  // More than one task matches
	ErrCodeCanceled ErrorCode = "CANCELED"  // Operation was canceled

	// Storage errors
	ErrCodeUnavailable   ErrorCode = "UNAVAILABLE"    // Backend closed or unreachable
	ErrCodeTimeout       ErrorCode = "TIMEOUT"        // Backend call timed out
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED" // Backend refused the write for size
	ErrCodeCorruption    ErrorCode = "CORRUPTION"     // Stored data could not be decoded

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
	ErrCodePanic    ErrorCode = "PANIC"    // Recovered from panic
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeEmptyText, ErrCodeTextTooLong, ErrCodeInvalidInput:
		return CategoryValidation

	case ErrCodeNotFound, ErrCodeConflict, ErrCodeCanceled:
		return CategoryPermanent

	case ErrCodeUnavailable, ErrCodeTimeout, ErrCodeQuotaExceeded, ErrCodeCorruption:
		return CategoryStorage

	default:
		return CategoryInternal
	}
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeEmptyText:     "task text is empty",
	ErrCodeTextTooLong:   "task text is too long",
	ErrCodeInvalidInput:  "invalid input provided",
	ErrCodeNotFound:      "task not found",
	ErrCodeConflict:      "more than one task matches",
	ErrCodeCanceled:      "operation canceled",
	ErrCodeUnavailable:   "storage unavailable",
	ErrCodeTimeout:       "storage operation timed out",
	ErrCodeQuotaExceeded: "storage quota exceeded",
	ErrCodeCorruption:    "stored data is corrupt",
	ErrCodeInternal:      "internal error",
	ErrCodePanic:         "recovered from panic",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
