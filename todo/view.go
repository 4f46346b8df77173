package todo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/vinayprograms/tasklist/errors"
)

// Filter selects tasks by completion state.
type Filter int

const (
	// FilterAll keeps every task.
	FilterAll Filter = iota
	// FilterCompleted keeps tasks with Completed set.
	FilterCompleted
	// FilterIncomplete keeps tasks with Completed unset.
	FilterIncomplete
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterCompleted:
		return "completed"
	case FilterIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Valid reports whether f is one of the defined filters.
func (f Filter) Valid() bool {
	return f >= FilterAll && f <= FilterIncomplete
}

// Match reports whether t passes the filter. Unknown filters keep everything.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterIncomplete:
		return !t.Completed
	default:
		return true
	}
}

// ParseFilter converts a name such as "completed" to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return FilterAll, nil
	case "completed", "complete", "done":
		return FilterCompleted, nil
	case "incomplete", "active", "pending", "open":
		return FilterIncomplete, nil
	}
	return FilterAll, errors.InvalidInput(
		"unknown filter " + strconv.Quote(s) + " (want all, completed or incomplete)")
}

// SortOrder orders tasks by creation time.
type SortOrder int

const (
	// RecentFirst puts the newest task first.
	RecentFirst SortOrder = iota
	// OldestFirst puts the oldest task first.
	OldestFirst
)

// String returns the sort order name.
func (o SortOrder) String() string {
	switch o {
	case RecentFirst:
		return "recent"
	case OldestFirst:
		return "oldest"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the defined orders.
func (o SortOrder) Valid() bool {
	return o == RecentFirst || o == OldestFirst
}

// ParseSortOrder converts a name such as "oldest" to a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recent", "newest", "desc", "":
		return RecentFirst, nil
	case "oldest", "asc":
		return OldestFirst, nil
	}
	return RecentFirst, errors.InvalidInput(
		"unknown sort order " + strconv.Quote(s) + " (want recent or oldest)")
}

// Project returns the tasks passing f, ordered by o. The input is not
// modified. Tasks created in the same millisecond keep their relative
// input order in both directions.
func Project(tasks []Task, f Filter, o SortOrder) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b Task) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if o == OldestFirst {
			return c
		}
		return -c
	})
	return out
}

// Summary counts tasks by completion state.
type Summary struct {
	Total     int
	Completed int
	Remaining int
}

// Summarize counts tasks.
func Summarize(tasks []Task) Summary {
	var s Summary
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}
