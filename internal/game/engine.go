// internal/game/engine.go
//
// Engine ties the guarded state to its observers.
// Responsibilities:
//   - Commit a guess through State (write lock held only inside Commit).
//   - Publish a wake on the hub after the lock is released, so any woken
//     session reading under the read lock sees the new word.
//   - Hand the commit to every journal, best effort.

package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/broadcast"
)

// Engine is the guess-submission entry point shared by all transports.
type Engine struct {
	state    *State
	hub      *broadcast.Hub
	journals []Journal
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine wires state, hub and journals together.
func NewEngine(state *State, hub *broadcast.Hub, logger zerolog.Logger, journals ...Journal) *Engine {
	return &Engine{
		state:    state,
		hub:      hub,
		journals: journals,
		log:      logger,
		now:      time.Now,
	}
}

// State returns the shared state.
func (e *Engine) State() *State { return e.state }

// Hub returns the broadcast hub.
func (e *Engine) Hub() *broadcast.Hub { return e.hub }

// Submit evaluates guess on behalf of origin and reports whether it was
// accepted.
func (e *Engine) Submit(ctx context.Context, origin, guess string) bool {
	c, ok := e.state.Commit(guess)
	if !ok {
		e.log.Debug().Str("origin", origin).Str("guess", guess).Msg("guess rejected")
		return false
	}

	version := e.hub.Publish()
	e.log.Info().
		Str("origin", origin).
		Str("word", c.Word).
		Str("previous", c.Previous).
		Uint64("seq", c.Seq).
		Uint64("version", version).
		Msg("guess accepted")

	entry := Entry{
		Seq:        c.Seq,
		Word:       c.Word,
		Previous:   c.Previous,
		Origin:     origin,
		AcceptedAt: e.now().UTC(),
	}
	for _, j := range e.journals {
		if err := j.Record(ctx, entry); err != nil {
			e.log.Warn().Err(err).Uint64("seq", c.Seq).Msg("journal accepted guess")
		}
	}
	return true
}
