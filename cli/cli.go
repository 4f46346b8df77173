// Package cli implements the tasklist command line: one-shot commands over
// the configured backend plus an interactive shell over a single store.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/tasklist/config"
	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/logging"
	"github.com/vinayprograms/tasklist/state"
	"github.com/vinayprograms/tasklist/todo"
)

// Version is set at build time.
var Version = "dev"

// Options wires the command to its environment.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Backend, when set, replaces the configured backend. Commands do not
	// close it.
	Backend state.StateStore
}

// app carries flag values and IO for one command tree.
type app struct {
	opts Options

	configPath string
	backend    string
	verbose    bool
}

// Execute runs the CLI with the given arguments and returns the exit code.
// A panic below it is reported like any other error.
func Execute(args []string, opts Options) (code int) {
	opts = opts.withDefaults()
	defer func() {
		if err := errors.RecoverPanic(recover()); err != nil {
			fmt.Fprintln(opts.Stderr, "Error:", errors.UserMessage(err)+":", err.Message())
			code = 1
		}
	}()

	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(opts.Stderr, "Error:", errors.UserMessage(err))
		return 1
	}
	return 0
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// NewRootCommand builds the tasklist command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:   "tasklist",
		Short: "A small task list",
		Long: `tasklist keeps a list of short tasks you can add, complete, delete,
filter and sort. Tasks are saved to local storage unless you turn it off.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.opts.Stdin)
	root.SetOut(a.opts.Stdout)
	root.SetErr(a.opts.Stderr)

	// Global flags
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: ./tasklist.toml or ~/.config/tasklist/config.toml)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend: memory, bolt, sqlite, nats")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.addCmd())
	root.AddCommand(a.toggleCmd())
	root.AddCommand(a.deleteCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.storageCmd())
	root.AddCommand(a.shellCmd())

	return root
}

// session is an open store and the resources behind it.
type session struct {
	cfg   *config.Config
	store *todo.Store
	close func() error
}

// open loads config, opens the backend and hydrates a store.
func (a *app) open() (*session, error) {
	cfg, _, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.backend != "" {
		cfg.Storage.Backend = a.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger := logging.New()
	logger.SetOutput(a.opts.Stderr)
	logger.SetLevel(cfg.LogLevel())
	if a.verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	backend := a.opts.Backend
	closeFn := func() error { return nil }
	if backend == nil {
		backend, err = cfg.OpenStateStore()
		if err != nil {
			return nil, err
		}
		closeFn = backend.Close
	}

	store := todo.Open(backend,
		todo.WithLogger(logger),
		todo.WithFilter(cfg.Filter()),
		todo.WithSortOrder(cfg.SortOrder()),
	)
	if err := store.LoadErr(); err != nil {
		fmt.Fprintln(a.opts.Stderr, "warning: saved tasks could not be fully read:", errors.UserMessage(err))
	}
	return &session{cfg: cfg, store: store, close: closeFn}, nil
}

// withStore runs fn against a freshly opened store and closes it after.
func (a *app) withStore(fn func(s *session) error) error {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()

	err = fn(s)
	a.warnDegraded(s.store)
	return err
}

// warnDegraded tells the user once per command that changes are not saved.
func (a *app) warnDegraded(store *todo.Store) {
	if !store.Degraded() {
		return
	}
	fmt.Fprintln(a.opts.Stderr, "warning: changes are not being saved:", errors.UserMessage(store.StorageErr()))
}
