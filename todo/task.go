package todo

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vinayprograms/tasklist/errors"
)

// MaxTextLength is the longest task text accepted, in characters.
const MaxTextLength = 100

// User-facing validation messages.
const (
	EmptyTextMessage   = "A task cannot be empty."
	TextTooLongMessage = "A task description cannot be longer than 100 characters. Try to make it a little more concise."
)

// Task is a single entry in the list.
type Task struct {
	// ID is the unique identifier. Never changes.
	ID string

	// Text is the trimmed description, 1 to MaxTextLength characters.
	Text string

	// Completed is flipped by Store.Toggle.
	Completed bool

	// CreatedAt is the creation time at millisecond precision.
	// Used only for ordering.
	CreatedAt time.Time
}

// ValidateText trims raw and checks it can become a task's text.
// It returns the trimmed text, or a validation error whose message is
// meant for the user.
func ValidateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "", errors.New(errors.ErrCodeEmptyText, EmptyTextMessage)
	case n > MaxTextLength:
		return "", errors.New(errors.ErrCodeTextTooLong, TextTooLongMessage,
			errors.WithMetadata("length", strconv.Itoa(n)))
	}
	return text, nil
}

// truncateMillis drops precision below a millisecond and the monotonic
// clock reading, so a time survives the persisted epoch-ms form unchanged.
func truncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}
