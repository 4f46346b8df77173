package todo

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/vinayprograms/tasklist/errors"
)

// Backend keys.
const (
	// KeyTodos holds the JSON array of tasks in canonical order.
	KeyTodos = "todos"

	// KeyStorageDisabled is present with value "true" while persistence
	// is turned off.
	KeyStorageDisabled = "storageDisabled"
)

// record is the persisted form of a Task.
type record struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// Encode serializes tasks, in order, to the persisted JSON form.
func Encode(tasks []Task) ([]byte, error) {
	records := make([]record, len(tasks))
	for i, t := range tasks {
		records[i] = record{
			ID:        t.ID,
			Completed: t.Completed,
			Text:      t.Text,
			CreatedAt: t.CreatedAt.UnixMilli(),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "encode tasks")
	}
	return data, nil
}

// Decode parses the persisted JSON form. It checks structure only; records
// are returned as stored, in order. A JSON null decodes to no tasks.
func Decode(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Corruption("decode tasks: empty value", errors.WithKey(KeyTodos))
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeCorruption, "decode tasks",
			errors.WithKey(KeyTodos))
	}

	tasks := make([]Task, len(records))
	for i, r := range records {
		tasks[i] = Task{
			ID:        r.ID,
			Text:      r.Text,
			Completed: r.Completed,
			CreatedAt: time.UnixMilli(r.CreatedAt),
		}
	}
	return tasks, nil
}

// sanitize drops records that break the task invariants: empty or
// repeated ids and text that would fail ValidateText. Surviving text is
// stored trimmed. It returns the kept tasks and how many were dropped.
func sanitize(tasks []Task) ([]Task, int) {
	seen := make(map[string]bool, len(tasks))
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		text, err := ValidateText(t.Text)
		if err != nil {
			continue
		}
		seen[t.ID] = true
		t.Text = text
		kept = append(kept, t)
	}
	return kept, len(tasks) - len(kept)
}
