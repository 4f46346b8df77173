package cli

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/vinayprograms/tasklist/state"
	"github.com/vinayprograms/tasklist/todo"
)

func TestShell_Session(t *testing.T) {
	backend := state.NewMemoryStore()
	input := strings.Join([]string{
		"add Buy milk",
		"add    ",
		"add " + strings.Repeat("x", 101),
		"list",
		"quit",
		"add never reached",
	}, "\n")

	out, errOut, code := run(t, backend, input, "shell")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}

	for _, want := range []string{
		"Local storage: on",
		": Buy milk",
		todo.EmptyTextMessage,
		todo.TextTooLongMessage,
		"1 task, 0 completed, 1 remaining",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "never reached") {
		t.Error("input after quit was processed")
	}
}

func TestShell_StorageOffKeepsSessionTasks(t *testing.T) {
	backend := state.NewMemoryStore()
	input := strings.Join([]string{
		"storage off",
		"add Walk the dog",
		"add Read a book",
		"list",
	}, "\n")

	out, _, code := run(t, backend, input, "shell")
	if code != 0 {
		t.Fatal("shell failed")
	}
	if !strings.Contains(out, todo.PersistenceDisabledMessage) {
		t.Errorf("missing confirmation:\n%s", out)
	}
	if !strings.Contains(out, "2 tasks, 0 completed, 2 remaining") {
		t.Errorf("session tasks lost:\n%s", out)
	}
	if _, err := backend.Get(todo.KeyTodos); err != state.ErrNotFound {
		t.Error("tasks saved while storage is off")
	}
}

func TestShell_OverlongLineKeepsSession(t *testing.T) {
	backend := state.NewMemoryStore()
	input := strings.Join([]string{
		"storage off",
		"add Walk the dog",
		"add " + strings.Repeat("x", maxLineBytes+10),
		"add Read a book",
		"list",
	}, "\n")

	out, errOut, code := run(t, backend, input, "shell")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Line ignored") {
		t.Errorf("overlong line not reported:\n%s", out)
	}
	if !strings.Contains(out, "2 tasks, 0 completed, 2 remaining") {
		t.Errorf("session did not survive the long line:\n%s", out)
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("short\r\n"+strings.Repeat("y", 40)+"\nlast"), 16)

	tests := []struct {
		line    string
		tooLong bool
	}{
		{"short", false},
		{"", true},
		{"last", false},
	}
	for i, tt := range tests {
		line, tooLong, err := readLine(r)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if line != tt.line || tooLong != tt.tooLong {
			t.Errorf("line %d = %q, %v; want %q, %v", i, line, tooLong, tt.line, tt.tooLong)
		}
	}
	if _, _, err := readLine(r); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func newTestShell(store *todo.Store) (*shell, *bytes.Buffer) {
	var out bytes.Buffer
	return &shell{
		in:     strings.NewReader(""),
		out:    &out,
		store:  store,
		render: newRenderer(&out),
	}, &out
}

func TestShell_FilterAndSort(t *testing.T) {
	backend := state.NewMemoryStore()
	seed(t, backend, seeded)
	sh, out := newTestShell(todo.Open(backend))

	sh.handleInput("filter done")
	sh.handleInput("sort oldest")
	if sh.store.Filter() != todo.FilterCompleted || sh.store.SortOrder() != todo.OldestFirst {
		t.Fatalf("view = %v/%v", sh.store.Filter(), sh.store.SortOrder())
	}

	out.Reset()
	sh.handleInput("list")
	if !strings.Contains(out.String(), "Walk the dog") || strings.Contains(out.String(), "Buy milk") {
		t.Errorf("filtered list:\n%s", out)
	}

	out.Reset()
	sh.handleInput("filter archived")
	if !strings.Contains(out.String(), "unknown filter") {
		t.Errorf("output = %q", out)
	}
	if sh.store.Filter() != todo.FilterCompleted {
		t.Error("bad filter changed the view")
	}

	out.Reset()
	sh.handleInput("sort")
	if strings.TrimSpace(out.String()) != "Sort: oldest" {
		t.Errorf("output = %q", out)
	}
}

func TestShell_ToggleDelete(t *testing.T) {
	backend := state.NewMemoryStore()
	seed(t, backend, seeded)
	sh, out := newTestShell(todo.Open(backend))

	sh.handleInput("toggle cccc")
	if !strings.Contains(out.String(), "Completed cccc3333") {
		t.Errorf("output = %q", out)
	}

	out.Reset()
	sh.handleInput("rm aaaa")
	if !strings.Contains(out.String(), "Deleted aaaa1111") {
		t.Errorf("output = %q", out)
	}
	if sh.store.Len() != 2 {
		t.Errorf("Len() = %d", sh.store.Len())
	}

	out.Reset()
	sh.handleInput("toggle")
	if !strings.Contains(out.String(), "task id required") {
		t.Errorf("output = %q", out)
	}
}

func TestShell_UnknownCommandAndHelp(t *testing.T) {
	sh, out := newTestShell(todo.Open(nil))

	if sh.handleInput("frobnicate") {
		t.Error("unknown command should not quit")
	}
	if !strings.Contains(out.String(), "unknown command frobnicate") {
		t.Errorf("output = %q", out)
	}

	out.Reset()
	sh.handleInput("help")
	if !strings.Contains(out.String(), "storage [on|off]") {
		t.Errorf("help = %q", out)
	}

	if !sh.handleInput("exit") {
		t.Error("exit should quit")
	}
	if sh.handleInput("   ") {
		t.Error("blank line should not quit")
	}
}

func TestShell_DegradedNotice(t *testing.T) {
	backend := state.NewMemoryStore(state.WithMaxBytes(10))
	sh, out := newTestShell(todo.Open(backend))

	sh.handleInput("add Buy milk")
	sh.handleInput("add Walk the dog")
	if n := strings.Count(out.String(), "no longer being saved"); n != 1 {
		t.Errorf("notice shown %d times, want 1:\n%s", n, out)
	}
	if sh.store.Len() != 2 {
		t.Errorf("Len() = %d", sh.store.Len())
	}
}

func TestRenderer_Row(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out)
	created := time.Date(2026, 3, 4, 9, 5, 0, 0, time.Local)

	open := r.Row(todo.Task{ID: "0123456789ab", Text: "Buy milk", CreatedAt: created})
	if !strings.HasPrefix(open, "○ 01234567") || !strings.Contains(open, "Buy milk") {
		t.Errorf("open row = %q", open)
	}
	if !strings.Contains(open, "Mar  4 09:05") {
		t.Errorf("open row missing time: %q", open)
	}

	done := r.Row(todo.Task{ID: "abc", Text: "Walk", Completed: true, CreatedAt: created})
	if !strings.HasPrefix(done, "✓ abc") {
		t.Errorf("done row = %q", done)
	}
}

func TestFooterPlural(t *testing.T) {
	got := footer(todo.Summary{Total: 1, Completed: 1}, todo.FilterAll, todo.OldestFirst)
	if got != "1 task, 1 completed, 0 remaining (showing all, oldest first)" {
		t.Errorf("footer = %q", got)
	}
}
