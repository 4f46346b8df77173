// Package todo implements the task list: an ordered collection of short
// text tasks that can be added, completed, uncompleted, deleted, filtered
// and sorted, optionally saved to a state.StateStore after every change.
//
// # Model
//
// Insertion order is the canonical order and the only one saved. Filtering
// and sorting are projections computed on read (see View and Project) and
// never reorder the stored list.
//
// # Persistence
//
// The backend holds two keys: "todos" (the JSON list) and
// "storageDisabled" ("true" while saving is off). Saving is on unless the
// user turned it off. A backend failure never loses in-memory tasks: the
// store logs it, marks itself degraded, and keeps working in memory until
// SetPersistenceEnabled(true) retries.
//
// # Usage
//
//	backend, _ := state.NewBoltStore(state.BoltStoreConfig{Path: path})
//	defer backend.Close()
//
//	store := todo.Open(backend, todo.WithLogger(logger))
//
//	task, err := store.Add("Buy milk")
//	if err != nil {
//	    fmt.Println(errors.UserMessage(err)) // "A task cannot be empty."
//	}
//	store.Toggle(task.ID)
//
//	for _, t := range store.View(todo.FilterCompleted, todo.OldestFirst) {
//	    fmt.Println(t.Text)
//	}
//
//	fmt.Println(store.SetPersistenceEnabled(false))
package todo
