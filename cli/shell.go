package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/todo"
)

const shellHelp = `Commands:
  add <text>          add a task
  toggle <id>         complete or reopen a task (id or unique prefix)
  delete <id>         delete a task
  list                show tasks with the current filter and sort
  filter <name>       all, completed, incomplete
  sort <name>         recent, oldest
  storage [on|off]    show or change whether tasks are saved
  help                show this help
  quit                leave the shell`

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work with the task list interactively",
		Long: `shell keeps one task list open until you quit. With storage off,
tasks added here last for the whole session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *session) error {
				sh := &shell{
					in:     a.opts.Stdin,
					out:    a.opts.Stdout,
					store:  s.store,
					render: newRenderer(a.opts.Stdout),
				}
				return sh.Run()
			})
		},
	}
}

// shell is a line-oriented session over one store.
type shell struct {
	in     io.Reader
	out    io.Writer
	store  *todo.Store
	render *renderer

	// degradedSeen is set once the user has been told saving failed.
	degradedSeen bool
}

// maxLineBytes bounds one shell input line. Longer lines are skipped.
const maxLineBytes = 64 * 1024

// Run reads commands until quit or end of input.
func (sh *shell) Run() error {
	fmt.Fprintln(sh.out, "tasklist shell. Type help for commands.")
	printStorage(sh.out, sh.store)

	r := bufio.NewReaderSize(sh.in, maxLineBytes)
	for {
		fmt.Fprint(sh.out, "> ")
		line, tooLong, err := readLine(r)
		if err != nil {
			fmt.Fprintln(sh.out)
			if err == io.EOF {
				return nil
			}
			return err
		}
		if tooLong {
			fmt.Fprintf(sh.out, "Line ignored: longer than %d KiB.\n", maxLineBytes/1024)
			continue
		}
		if quit := sh.handleInput(line); quit {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. A line that does
// not fit the reader's buffer is consumed and reported as tooLong.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	b, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(b), false, nil
	}
	for isPrefix {
		if _, isPrefix, err = r.ReadLine(); err != nil {
			if err == io.EOF {
				break
			}
			return "", true, err
		}
	}
	return "", true, nil
}

// handleInput runs one command line and reports whether to quit.
func (sh *shell) handleInput(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "add", "a":
		err = addTask(sh.out, sh.store, rest)
	case "toggle", "t", "done":
		err = toggleTask(sh.out, sh.store, rest)
	case "delete", "rm", "d":
		err = deleteTask(sh.out, sh.store, rest)
	case "list", "ls", "l":
		sh.render.List(sh.store.Visible(), sh.store.Summary(), sh.store.Filter(), sh.store.SortOrder())
	case "filter":
		err = sh.setFilter(rest)
	case "sort":
		err = sh.setSort(rest)
	case "storage":
		if rest == "" {
			printStorage(sh.out, sh.store)
		} else {
			err = setStorage(sh.out, sh.store, rest)
		}
	default:
		err = errors.InvalidInput("unknown command " + name + "; type help for commands")
	}

	if err != nil {
		fmt.Fprintln(sh.out, errors.UserMessage(err))
	}
	sh.noteDegraded()
	return false
}

func (sh *shell) setFilter(name string) error {
	if name == "" {
		fmt.Fprintln(sh.out, "Filter:", sh.store.Filter())
		return nil
	}
	f, err := todo.ParseFilter(name)
	if err != nil {
		return err
	}
	if err := sh.store.SetFilter(f); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Filter:", f)
	return nil
}

func (sh *shell) setSort(name string) error {
	if name == "" {
		fmt.Fprintln(sh.out, "Sort:", sh.store.SortOrder())
		return nil
	}
	o, err := todo.ParseSortOrder(name)
	if err != nil {
		return err
	}
	if err := sh.store.SetSortOrder(o); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Sort:", o)
	return nil
}

// noteDegraded tells the user when saving stops working. After a
// successful retry the next failure is reported again.
func (sh *shell) noteDegraded() {
	degraded := sh.store.Degraded()
	if degraded && !sh.degradedSeen {
		fmt.Fprintln(sh.out, "Tasks are no longer being saved: "+errors.UserMessage(sh.store.StorageErr())+
			". Type 'storage on' to retry.")
	}
	sh.degradedSeen = degraded
}
