// Package sessions hosts active quiz sessions between HTTP requests and
// hands finished attempts to quiz history.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

// Entry is what a store holds for one quiz. Unsaved carries the snapshot
// of a finished quiz whose result has not been persisted yet.
type Entry struct {
	Session quiz.Session   `json:"session"`
	Unsaved *quiz.Snapshot `json:"unsaved,omitempty"`
}

// Store keeps entries by session id. Get returns models.ErrNotFound for
// unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (Entry, error)
	Put(ctx context.Context, e Entry, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// MemoryStore keeps sessions in process. Expired entries are dropped on
// access and by Sweep.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return Entry{}, models.ErrNotFound
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, id)
		return Entry{}, models.ErrNotFound
	}
	return item.entry, nil
}

func (m *MemoryStore) Put(ctx context.Context, e Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	m.items[e.Session.ID] = memoryItem{entry: e, expires: expires}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, item := range m.items {
		if !item.expires.IsZero() && !now.Before(item.expires) {
			delete(m.items, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
