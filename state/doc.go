// Package state provides the key-value backends a task list persists to.
//
// StateStore has five methods: Get, Put, Delete, Keys and Close. Every
// backend returns ErrNotFound for absent keys and treats Delete of an
// absent key as success.
//
// # Backends
//
//   - MemoryStore: in-process map (testing, throwaway sessions)
//   - BoltStore: single bbolt file (default for the CLI)
//   - SQLiteStore: single SQLite file with one kv table
//   - NATSStore: NATS JetStream KV bucket
//
// # Usage
//
//	store, _ := state.NewBoltStore(state.BoltStoreConfig{
//	    Path: filepath.Join(home, ".config", "tasklist", "tasks.db"),
//	})
//	defer store.Close()
//
//	store.Put("todos", data)
//	val, err := store.Get("todos")
//	if err == state.ErrNotFound {
//	    // nothing saved yet
//	}
package state
