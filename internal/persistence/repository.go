// Package persistence stores the task collection and UI preferences in a kv.Store.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/task"
)

const (
	// TasksKey holds the whole task collection as one JSON array.
	TasksKey = "tasks"

	// DarkModeKey holds the dark-mode preference as a JSON boolean.
	DarkModeKey = "isDarkMode"
)

// Repository loads and saves the full task collection under one key.
type Repository struct {
	store kv.Store
	key   string
}

// NewRepository returns a Repository that uses TasksKey.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store, key: TasksKey}
}

// Key returns the key the collection is stored under.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the stored collection. A missing key yields an empty
// collection and no error. Any other failure yields an empty collection and
// the error.
func (r *Repository) Load(ctx context.Context) ([]task.Task, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []task.Task{}, nil
		}
		return []task.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	tasks, err := task.Decode(data)
	if err != nil {
		return []task.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// Save overwrites the stored collection.
func (r *Repository) Save(ctx context.Context, tasks []task.Task) error {
	data, err := task.Encode(tasks)
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Raw returns the stored blob without decoding it. The bool is false when
// nothing has been stored yet.
func (r *Repository) Raw(ctx context.Context) ([]byte, bool, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Preferences stores UI settings next to the task collection.
type Preferences struct {
	store kv.Store
}

// NewPreferences returns Preferences backed by store.
func NewPreferences(store kv.Store) *Preferences {
	return &Preferences{store: store}
}

// DarkMode returns the stored dark-mode flag, false when unset.
func (p *Preferences) DarkMode(ctx context.Context) (bool, error) {
	data, err := p.store.Get(ctx, DarkModeKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", DarkModeKey, err)
	}
	var on bool
	if err := json.Unmarshal(data, &on); err != nil {
		return false, fmt.Errorf("load %s: %w", DarkModeKey, err)
	}
	return on, nil
}

// SetDarkMode stores the dark-mode flag.
func (p *Preferences) SetDarkMode(ctx context.Context, on bool) error {
	data, _ := json.Marshal(on)
	if err := p.store.Set(ctx, DarkModeKey, data); err != nil {
		return fmt.Errorf("save %s: %w", DarkModeKey, err)
	}
	return nil
}
