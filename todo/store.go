package todo

import (
	"context"
	stderrors "errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/logging"
	"github.com/vinayprograms/tasklist/state"
)

// Confirmation messages returned by SetPersistenceEnabled.
const (
	PersistenceEnabledMessage  = "Local storage enabled. Your tasks will be saved."
	PersistenceDisabledMessage = "Local storage disabled. Saved tasks were cleared; tasks you add now last only for this session."
	StorageUnavailableMessage  = "Local storage is still unavailable. Your tasks are not being saved."
)

// maxIDAttempts bounds retries when the id generator repeats itself.
const maxIDAttempts = 8

// Store owns the task list and the persistence flag. It is the only
// writer of both; every accessor hands out copies.
type Store struct {
	mu      sync.Mutex
	backend state.StateStore
	logger  *logging.Logger
	now     func() time.Time
	idGen   func() string

	tasks   []Task
	persist bool
	filter  Filter
	order   SortOrder

	// degraded is set after a failed backend call. While set, mutations
	// stay in memory only.
	degraded   bool
	storageErr error
	loadErr    error

	// loaded is false until the backend has been read successfully.
	// Nothing is written before that, so a failed read cannot be
	// followed by a write that replaces the saved list.
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent("store")
		}
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets a custom ID generator function.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.idGen = gen
	}
}

// WithFilter sets the initial filter used by Visible.
func WithFilter(f Filter) Option {
	return func(s *Store) {
		if f.Valid() {
			s.filter = f
		}
	}
}

// WithSortOrder sets the initial sort order used by Visible.
func WithSortOrder(o SortOrder) Option {
	return func(s *Store) {
		if o.Valid() {
			s.order = o
		}
	}
}

// Open creates a Store and hydrates it from backend. Open never fails:
// missing keys mean an empty, persisting list; unreadable data is logged,
// kept in LoadErr, and replaced by an empty list. A nil backend behaves
// like an empty in-memory one.
func Open(backend state.StateStore, opts ...Option) *Store {
	if backend == nil {
		backend = state.NewMemoryStore()
	}
	s := &Store{
		backend: backend,
		logger:  logging.Discard(),
		now:     time.Now,
		idGen:   uuid.NewString,
		persist: true,
		filter:  FilterAll,
		order:   RecentFirst,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	s.logger.StoreLoaded(len(s.tasks), s.persist)
	return s
}

// load hydrates the store from the backend. Must be called with lock held.
func (s *Store) load() {
	persist, tasks, problem, err := s.readLocked()
	if err != nil {
		s.loadErr = err
		return
	}
	s.loaded = true
	s.persist = persist
	s.tasks = tasks
	s.loadErr = problem
}

// readLocked reads the persistence flag and, when persisting, the task
// list. Unreadable or invalid stored data is reported as problem and
// yields what could be kept. A backend failure degrades the store and is
// returned as err. Must be called with lock held.
func (s *Store) readLocked() (persist bool, tasks []Task, problem error, err error) {
	flag, err := s.backend.Get(KeyStorageDisabled)
	switch {
	case err == nil:
		persist = string(flag) != "true"
	case stderrors.Is(err, state.ErrNotFound):
		persist = true
	default:
		return false, nil, nil, s.degradeLocked("get", KeyStorageDisabled, err)
	}

	if !persist {
		return false, nil, nil, nil
	}

	data, err := s.backend.Get(KeyTodos)
	if err != nil {
		if stderrors.Is(err, state.ErrNotFound) {
			return true, nil, nil, nil
		}
		return false, nil, nil, s.degradeLocked("get", KeyTodos, err)
	}

	decoded, err := Decode(data)
	if err != nil {
		s.logger.Warn("stored tasks unreadable, starting empty", map[string]interface{}{
			"key":   KeyTodos,
			"error": err.Error(),
		})
		return true, nil, err, nil
	}

	kept, dropped := sanitize(decoded)
	if dropped > 0 {
		problem = errors.Corruption("dropped invalid stored tasks",
			errors.WithKey(KeyTodos),
			errors.WithMetadata("dropped", strconv.Itoa(dropped)))
		s.logger.Warn("dropped invalid stored tasks", map[string]interface{}{
			"dropped": dropped,
			"kept":    len(kept),
		})
	}
	return true, kept, problem, nil
}

// reloadLocked retries a load that failed at Open. Tasks read from the
// backend go first; tasks added during the session follow unless their
// id is already stored. Must be called with lock held.
func (s *Store) reloadLocked() error {
	_, stored, problem, err := s.readLocked()
	if err != nil {
		return err
	}

	merged := make([]Task, 0, len(stored)+len(s.tasks))
	merged = append(merged, stored...)
	for _, t := range s.tasks {
		if !slices.ContainsFunc(stored, func(st Task) bool { return st.ID == t.ID }) {
			merged = append(merged, t)
		}
	}
	s.tasks = merged
	s.loaded = true
	s.loadErr = problem
	s.logger.StoreLoaded(len(stored), true)
	return nil
}

// Add validates rawText and appends a new task. On a validation error
// nothing changes and the error's message is meant for the user.
func (s *Store) Add(rawText string) (Task, error) {
	text, err := ValidateText(rawText)
	if err != nil {
		s.logger.ValidationRejected(string(errors.Code(err)),
			utf8.RuneCountInString(strings.TrimSpace(rawText)))
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newIDLocked()
	if err != nil {
		return Task{}, err
	}

	task := Task{
		ID:        id,
		Text:      text,
		CreatedAt: truncateMillis(s.now()),
	}
	s.tasks = append(s.tasks, task)
	s.logger.TaskAdded(task.ID, utf8.RuneCountInString(text))

	s.persistLocked()
	return task, nil
}

func (s *Store) newIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.idGen()
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", errors.Internal("could not generate a unique task id")
}

// Toggle flips Completed on the task with the given id and returns the
// updated task. An unknown id changes nothing and returns false.
func (s *Store) Toggle(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}

	s.tasks[i].Completed = !s.tasks[i].Completed
	task := s.tasks[i]
	s.logger.TaskToggled(task.ID, task.Completed)

	s.persistLocked()
	return task, true
}

// Delete removes the task with the given id. An unknown id changes
// nothing and returns false.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}

	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.logger.TaskDeleted(id)

	s.persistLocked()
	return true
}

// SetPersistenceEnabled turns saving on or off and returns a message
// confirming the new state.
//
// Turning it off removes the saved list and records the preference; the
// tasks in memory stay. Turning it on saves the current list and clears
// the preference. Turning it on while already on retries a store that
// has degraded after a backend failure. If the list could not be read at
// Open, the retry reads it first and keeps the saved tasks; when that
// read fails again nothing is written and StorageUnavailableMessage is
// returned.
func (s *Store) SetPersistenceEnabled(enabled bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		if s.persist && !s.degraded {
			return PersistenceEnabledMessage
		}
		s.degraded = false
		s.storageErr = nil
		if !s.loaded {
			if err := s.reloadLocked(); err != nil {
				return StorageUnavailableMessage
			}
		}
		s.persist = true

		s.persistLocked()
		if err := s.backend.Delete(KeyStorageDisabled); err != nil {
			s.degradeLocked("delete", KeyStorageDisabled, err)
		}
		s.logger.PersistenceChanged(true, len(s.tasks))
		return PersistenceEnabledMessage
	}

	if !s.persist {
		return PersistenceDisabledMessage
	}
	s.persist = false

	if err := s.backend.Delete(KeyTodos); err != nil {
		s.degradeLocked("delete", KeyTodos, err)
	}
	if err := s.backend.Put(KeyStorageDisabled, []byte("true")); err != nil {
		s.degradeLocked("put", KeyStorageDisabled, err)
	}
	s.logger.PersistenceChanged(false, len(s.tasks))
	return PersistenceDisabledMessage
}

// persistLocked writes the task list when persistence is on, the saved
// list has been read, and the backend has not failed. Must be called with
// lock held.
func (s *Store) persistLocked() {
	if !s.persist || s.degraded || !s.loaded {
		return
	}

	data, err := Encode(s.tasks)
	if err != nil {
		s.degradeLocked("encode", KeyTodos, err)
		return
	}
	if err := s.backend.Put(KeyTodos, data); err != nil {
		s.degradeLocked("put", KeyTodos, err)
	}
}

// degradeLocked records a backend failure and stops further writes for
// the session. Must be called with lock held.
func (s *Store) degradeLocked(op, key string, err error) error {
	wrapped := storageError(op, key, err)
	if !s.degraded {
		s.logger.StorageFailure(op, key, err)
	}
	s.degraded = true
	s.storageErr = wrapped
	return wrapped
}

// storageError maps backend errors onto the error taxonomy.
func storageError(op, key string, err error) error {
	msg := "storage " + op + " " + key
	opts := []errors.Option{errors.WithKey(key), errors.WithCategory(errors.CategoryStorage)}
	switch {
	case stderrors.Is(err, state.ErrClosed):
		return errors.WrapWithCode(err, errors.ErrCodeUnavailable, msg, opts...)
	case stderrors.Is(err, state.ErrQuotaExceeded):
		return errors.WrapWithCode(err, errors.ErrCodeQuotaExceeded, msg, opts...)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapWithCode(err, errors.ErrCodeTimeout, msg, opts...)
	case errors.As(err) != nil:
		return errors.Wrap(err, msg, opts...)
	default:
		return errors.WrapWithCode(err, errors.ErrCodeInternal, msg, opts...)
	}
}

// SavedKeys lists the tasklist keys currently held by the backend. It
// reads only and never degrades the store.
func (s *Store) SavedKeys() ([]string, error) {
	keys, err := s.backend.Keys("*")
	if err != nil {
		return nil, storageError("keys", "*", err)
	}
	return slices.DeleteFunc(keys, func(k string) bool {
		return k != KeyTodos && k != KeyStorageDisabled
	}), nil
}

// SetFilter sets the filter used by Visible.
func (s *Store) SetFilter(f Filter) error {
	if !f.Valid() {
		return errors.InvalidInput("unknown filter " + strconv.Itoa(int(f)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return nil
}

// SetSortOrder sets the sort order used by Visible.
func (s *Store) SetSortOrder(o SortOrder) error {
	if !o.Valid() {
		return errors.InvalidInput("unknown sort order " + strconv.Itoa(int(o)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = o
	return nil
}

// Filter returns the current filter.
func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SortOrder returns the current sort order.
func (s *Store) SortOrder() SortOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// View returns the tasks passing f, ordered by o. It does not change
// the store.
func (s *Store) View(f Filter, o SortOrder) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.tasks, f, o)
}

// Visible returns View with the current filter and sort order.
func (s *Store) Visible() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.tasks, s.filter, s.order)
}

// Tasks returns a copy of the list in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Resolve finds the one task whose id equals ref or starts with it.
func (s *Store) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, errors.InvalidInput("task id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(ref); i >= 0 {
		return s.tasks[i], nil
	}

	var matches []Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return Task{}, errors.NotFound("no task matches "+strconv.Quote(ref), errors.WithTaskID(ref))
	case 1:
		return matches[0], nil
	default:
		return Task{}, errors.Conflict(
			strconv.Itoa(len(matches))+" tasks match "+strconv.Quote(ref)+"; use more of the id",
			errors.WithTaskID(ref))
	}
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Summary counts all tasks by completion state.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.tasks)
}

// PersistenceEnabled reports whether mutations are being saved.
func (s *Store) PersistenceEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist
}

// Degraded reports whether a backend failure has stopped saving for
// this session.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// StorageErr returns the most recent backend failure, or nil.
func (s *Store) StorageErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageErr
}

// LoadErr returns the problem found while hydrating, or nil.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
