// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default journal when no history database is configured.
//
// Characteristics:
//   - Keeps accepted guesses in commit order in a slice.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/robalobadob/wordchain/internal/game"
)

// DefaultLimit is used by Recent when limit <= 0.
const DefaultLimit = 20

// Store is a journal of accepted guesses that can be queried.
// Implementations may be backed by memory (this file), SQLite, etc.
type Store interface {
	game.Journal

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]game.Entry, error)

	// Close releases any underlying resources.
	Close() error
}

// memory is an in-memory slice-based Store implementation.
type memory struct {
	mu      sync.RWMutex // guards entries
	entries []game.Entry // kept sorted by Seq
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{}
}

// Record appends an entry. Entries may arrive slightly out of commit order
// when two commits race to their journals; they are kept sorted by Seq.
func (m *memory) Record(_ context.Context, e game.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].Seq > e.Seq })
	m.entries = append(m.entries, game.Entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	return nil
}

// Recent returns the newest entries first.
func (m *memory) Recent(_ context.Context, limit int) ([]game.Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > n {
		limit = n
	}
	out := make([]game.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
