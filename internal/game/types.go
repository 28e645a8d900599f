// internal/game/types.go
//
// Core type definitions for the word-chain game.
// Defines:
//   - Commit:   the outcome of one accepted guess.
//   - Snapshot: a consistent read of the shared state.
//   - Entry:    a journal record of an accepted guess.
//   - Journal:  sink for accepted guesses (history store, relay, ...).

package game

import (
	"context"
	"time"
)

// Commit describes a guess that became the current word.
type Commit struct {
	Seq      uint64 // 1 for the first accepted guess, then strictly increasing
	Word     string // the accepted guess, now the current word
	Previous string // the word it continued from
}

// Snapshot is a point-in-time view of the game, taken under the read lock.
type Snapshot struct {
	Word       string `json:"word"`
	Used       int    `json:"used"`       // size of the used-word set, initial word included
	Accepted   uint64 `json:"accepted"`   // accepted guesses so far
	Dictionary int    `json:"dictionary"` // dictionary size
}

// Entry is a journal record of one accepted guess.
type Entry struct {
	Seq        uint64    `json:"seq"`
	Word       string    `json:"word"`
	Previous   string    `json:"previous"`
	Origin     string    `json:"origin"` // session id or "http"
	AcceptedAt time.Time `json:"acceptedAt"`
}

// Journal receives every accepted guess after it is committed.
// Implementations may be backed by memory, SQLite, a message broker, etc.
type Journal interface {
	Record(ctx context.Context, e Entry) error
}
