package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vinayprograms/tasklist/todo"
)

const (
	columnWidthID = 10
	timeLayout    = "Jan _2 15:04"
)

// renderer writes task lists. Colors follow the writer's terminal profile,
// so output to a pipe or buffer is plain text.
type renderer struct {
	w io.Writer

	doneIcon lipgloss.Style
	openIcon lipgloss.Style
	id       lipgloss.Style
	text     lipgloss.Style
	doneText lipgloss.Style
	meta     lipgloss.Style
}

func newRenderer(w io.Writer) *renderer {
	lg := lipgloss.NewRenderer(w)
	return &renderer{
		w:        w,
		doneIcon: lg.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		openIcon: lg.NewStyle().Foreground(lipgloss.Color("8")),
		id:       lg.NewStyle().Width(columnWidthID).Foreground(lipgloss.Color("6")),
		text:     lg.NewStyle(),
		doneText: lg.NewStyle().Strikethrough(true).Faint(true),
		meta:     lg.NewStyle().Faint(true),
	}
}

// Row renders one task.
func (r *renderer) Row(t todo.Task) string {
	icon, text := r.openIcon.Render("○"), r.text.Render(t.Text)
	if t.Completed {
		icon, text = r.doneIcon.Render("✓"), r.doneText.Render(t.Text)
	}
	return icon + " " +
		r.id.Render(shortID(t.ID)) +
		text + "  " +
		r.meta.Render(t.CreatedAt.Local().Format(timeLayout))
}

// List renders a view followed by a summary of the whole list.
func (r *renderer) List(tasks []todo.Task, sum todo.Summary, f todo.Filter, o todo.SortOrder) {
	if len(tasks) == 0 {
		fmt.Fprintln(r.w, emptyMessage(f))
	}
	for _, t := range tasks {
		fmt.Fprintln(r.w, r.Row(t))
	}
	fmt.Fprintln(r.w, r.meta.Render(footer(sum, f, o)))
}

func emptyMessage(f todo.Filter) string {
	if f == todo.FilterAll {
		return "No tasks."
	}
	return "No " + f.String() + " tasks."
}

func footer(sum todo.Summary, f todo.Filter, o todo.SortOrder) string {
	var b strings.Builder
	b.WriteString(plural(sum.Total, "task"))
	fmt.Fprintf(&b, ", %d completed, %d remaining", sum.Completed, sum.Remaining)
	fmt.Fprintf(&b, " (showing %s, %s first)", f, o)
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
