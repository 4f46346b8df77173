package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/todo"
)

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *session) error {
				if err := addTask(a.opts.Stdout, s.store, strings.Join(args, " ")); err != nil {
					return err
				}
				if !s.store.PersistenceEnabled() {
					fmt.Fprintln(a.opts.Stderr, "warning: local storage is off, so this task is gone when tasklist exits.",
						"Use 'tasklist shell' to keep tasks for a session, or 'tasklist storage on' to save them.")
				}
				return nil
			})
		},
	}
}

func (a *app) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done"},
		Short:   "Mark a task completed, or incomplete again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *session) error {
				return toggleTask(a.opts.Stdout, s.store, args[0])
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *session) error {
				return deleteTask(a.opts.Stdout, s.store, args[0])
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filterName, _ := cmd.Flags().GetString("filter")
			sortName, _ := cmd.Flags().GetString("sort")
			asJSON, _ := cmd.Flags().GetBool("json")

			return a.withStore(func(s *session) error {
				f, o := s.store.Filter(), s.store.SortOrder()
				if cmd.Flags().Changed("filter") {
					parsed, err := todo.ParseFilter(filterName)
					if err != nil {
						return err
					}
					f = parsed
				}
				if cmd.Flags().Changed("sort") {
					parsed, err := todo.ParseSortOrder(sortName)
					if err != nil {
						return err
					}
					o = parsed
				}

				view := s.store.View(f, o)
				if asJSON {
					data, err := todo.Encode(view)
					if err != nil {
						return err
					}
					fmt.Fprintln(a.opts.Stdout, string(data))
					return nil
				}
				newRenderer(a.opts.Stdout).List(view, s.store.Summary(), f, o)
				return nil
			})
		},
	}

	cmd.Flags().StringP("filter", "f", "all", "Filter: all, completed, incomplete")
	cmd.Flags().StringP("sort", "s", "recent", "Sort: recent, oldest")
	cmd.Flags().Bool("json", false, "Print the view as JSON")
	return cmd
}

func (a *app) storageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "storage [on|off]",
		Short:     "Show or change whether tasks are saved",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			showKeys, _ := cmd.Flags().GetBool("keys")
			return a.withStore(func(s *session) error {
				if len(args) == 0 {
					printStorage(a.opts.Stdout, s.store)
					if showKeys {
						return printSavedKeys(a.opts.Stdout, s.store)
					}
					return nil
				}
				return setStorage(a.opts.Stdout, s.store, args[0])
			})
		},
	}

	cmd.Flags().Bool("keys", false, "Also list the keys saved in the backend")
	return cmd
}

// --- operations shared by commands and the shell ---

func addTask(w io.Writer, store *todo.Store, text string) error {
	task, err := store.Add(text)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added %s: %s\n", shortID(task.ID), task.Text)
	return nil
}

func toggleTask(w io.Writer, store *todo.Store, ref string) error {
	task, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	task, ok := store.Toggle(task.ID)
	if !ok {
		return errors.NotFound("no task matches "+ref, errors.WithTaskID(ref))
	}
	if task.Completed {
		fmt.Fprintf(w, "Completed %s: %s\n", shortID(task.ID), task.Text)
	} else {
		fmt.Fprintf(w, "Reopened %s: %s\n", shortID(task.ID), task.Text)
	}
	return nil
}

func deleteTask(w io.Writer, store *todo.Store, ref string) error {
	task, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	if !store.Delete(task.ID) {
		return errors.NotFound("no task matches "+ref, errors.WithTaskID(ref))
	}
	fmt.Fprintf(w, "Deleted %s: %s\n", shortID(task.ID), task.Text)
	return nil
}

func printStorage(w io.Writer, store *todo.Store) {
	switch {
	case !store.PersistenceEnabled():
		fmt.Fprintln(w, "Local storage: off")
	case store.Degraded():
		fmt.Fprintln(w, "Local storage: on (failing: "+errors.UserMessage(store.StorageErr())+")")
	default:
		fmt.Fprintln(w, "Local storage: on")
	}
}

func printSavedKeys(w io.Writer, store *todo.Store) error {
	keys, err := store.SavedKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "Saved keys: none")
		return nil
	}
	fmt.Fprintln(w, "Saved keys: "+strings.Join(keys, ", "))
	return nil
}

func setStorage(w io.Writer, store *todo.Store, arg string) error {
	enabled, err := parseSwitch(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, store.SetPersistenceEnabled(enabled))
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "enable", "enabled", "true", "yes":
		return true, nil
	case "off", "disable", "disabled", "false", "no":
		return false, nil
	}
	return false, errors.InvalidInput("expected on or off, got " + s)
}

// shortID returns the id prefix shown to users.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
