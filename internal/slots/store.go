// Package slots keeps named scene blobs, the board's save/load slots.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound  = errors.New("drawing not found")
	ErrEmptyName = errors.New("drawing name is required")
)

// Entry is one saved drawing.
type Entry struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Summary lists a drawing without its data.
type Summary struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists drawings by name. Saving an existing name replaces it.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (Entry, error)
	Load(ctx context.Context, name string) (Entry, error)
	// List returns every drawing, newest first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, name string) error
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// MemoryStore keeps drawings in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, name string, data []byte) (Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Name:      name,
		Data:      append(json.RawMessage(nil), data...),
		Timestamp: m.now().UTC(),
	}
	m.mu.Lock()
	m.entries[name] = e
	m.mu.Unlock()
	return e, nil
}

func (m *MemoryStore) Load(_ context.Context, name string) (Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.Data = append(json.RawMessage(nil), e.Data...)
	return e, nil
}

func (m *MemoryStore) List(context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, Summary{Name: e.Name, Timestamp: e.Timestamp})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return ErrNotFound
	}
	delete(m.entries, name)
	return nil
}
