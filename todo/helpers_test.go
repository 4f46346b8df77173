package todo

import (
	"fmt"
	"sync"
	"time"

	"github.com/vinayprograms/tasklist/state"
)

// stepClock advances one millisecond per call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

// counterIDs yields task-1, task-2, ...
func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

// flakyStore wraps a MemoryStore and fails chosen operations.
type flakyStore struct {
	*state.MemoryStore
	failGet    error
	failPut    error
	failDelete error
	puts       int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: state.NewMemoryStore()}
}

func (f *flakyStore) Get(key string) ([]byte, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	return f.MemoryStore.Get(key)
}

func (f *flakyStore) Put(key string, value []byte) error {
	f.puts++
	if f.failPut != nil {
		return f.failPut
	}
	return f.MemoryStore.Put(key, value)
}

func (f *flakyStore) Delete(key string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	return f.MemoryStore.Delete(key)
}

func openTestStore(backend state.StateStore, opts ...Option) *Store {
	base := []Option{
		WithClock(newStepClock().Now),
		WithIDGenerator(counterIDs()),
	}
	return Open(backend, append(base, opts...)...)
}
