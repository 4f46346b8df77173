package todo

import (
	"strings"
	"testing"
	"time"

	"github.com/vinayprograms/tasklist/errors"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantCode errors.ErrorCode
	}{
		{"plain", "Buy milk", "Buy milk", ""},
		{"trimmed", "  Buy milk \n", "Buy milk", ""},
		{"empty", "", "", errors.ErrCodeEmptyText},
		{"whitespace only", "  \t ", "", errors.ErrCodeEmptyText},
		{"exactly 100", strings.Repeat("a", 100), strings.Repeat("a", 100), ""},
		{"101", strings.Repeat("a", 101), "", errors.ErrCodeTextTooLong},
		{"100 after trim", "   " + strings.Repeat("a", 100) + "   ", strings.Repeat("a", 100), ""},
		{"100 multibyte", strings.Repeat("é", 100), strings.Repeat("é", 100), ""},
		{"101 multibyte", strings.Repeat("日", 101), "", errors.ErrCodeTextTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateText(tt.raw)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("ValidateText() err = %v, want code %s", err, tt.wantCode)
				}
				if !errors.IsValidation(err) {
					t.Error("validation failures must be in the validation category")
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateText() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateText_Messages(t *testing.T) {
	_, err := ValidateText(" ")
	if errors.UserMessage(err) != EmptyTextMessage {
		t.Errorf("empty message = %q", errors.UserMessage(err))
	}

	_, err = ValidateText(strings.Repeat("x", 101))
	if errors.UserMessage(err) != TextTooLongMessage {
		t.Errorf("too long message = %q", errors.UserMessage(err))
	}
	if errors.As(err).Metadata()["length"] != "101" {
		t.Errorf("length metadata = %q", errors.As(err).Metadata()["length"])
	}
}

func TestTruncateMillis(t *testing.T) {
	in := time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)
	got := truncateMillis(in)
	if got.UnixMilli() != in.UnixMilli() {
		t.Errorf("UnixMilli changed: %d vs %d", got.UnixMilli(), in.UnixMilli())
	}
	if got.Nanosecond()%int(time.Millisecond) != 0 {
		t.Errorf("sub-millisecond precision left: %d", got.Nanosecond())
	}
	if got != time.UnixMilli(got.UnixMilli()) {
		t.Error("truncated time should equal its own epoch-ms round trip")
	}
}
