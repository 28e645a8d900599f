// internal/game/state.go
//
// Shared game state and its guard.
//
// State owns the current word, the matcher derived from it, the immutable
// dictionary and the set of used words. A sync.RWMutex guards all of it:
//   - readers (Word, Snapshot, IsUsed) may run concurrently;
//   - the single writer path (Commit/TryAccept) holds the write lock for the
//     whole evaluate-then-commit sequence, so two guesses can never both be
//     judged against the same stale word.
//
// Commit rules, applied in order against the word at the time the lock is
// acquired:
//   1. guess differs from the current word;
//   2. guess has not been used;
//   3. guess is in the dictionary;
//   4. the current word's matcher accepts the guess.
// A failed check leaves the state untouched. Rejection is not an error.

package game

import (
	"errors"
	"sync"

	"github.com/robalobadob/wordchain/internal/matcher"
	"github.com/robalobadob/wordchain/internal/words"
)

var (
	ErrEmptyDictionary = errors.New("game: dictionary is empty")
	ErrUnknownInitial  = errors.New("game: initial word is not in the dictionary")
)

// State is the single shared game record.
type State struct {
	mu       sync.RWMutex
	word     string
	matcher  *matcher.Matcher // always built from word
	dict     *words.Dictionary
	used     map[string]struct{}
	accepted uint64
}

// NewState starts a game on initial. The initial word counts as used.
func NewState(dict *words.Dictionary, initial string) (*State, error) {
	if dict == nil || dict.Len() == 0 {
		return nil, ErrEmptyDictionary
	}
	if !dict.Contains(initial) {
		return nil, ErrUnknownInitial
	}
	return &State{
		word:    initial,
		matcher: matcher.New(initial),
		dict:    dict,
		used:    map[string]struct{}{initial: {}},
	}, nil
}

// TryAccept evaluates guess and, if it passes every rule, makes it the
// current word.
func (s *State) TryAccept(guess string) bool {
	_, ok := s.Commit(guess)
	return ok
}

// Commit is TryAccept that also reports what changed.
func (s *State) Commit(guess string) (Commit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guess == s.word {
		return Commit{}, false
	}
	if _, used := s.used[guess]; used {
		return Commit{}, false
	}
	if !s.dict.Contains(guess) {
		return Commit{}, false
	}
	if !s.matcher.Matches(guess) {
		return Commit{}, false
	}

	prev := s.word
	s.used[guess] = struct{}{}
	s.matcher = matcher.New(guess)
	s.word = guess
	s.accepted++
	return Commit{Seq: s.accepted, Word: guess, Previous: prev}, true
}

// Word returns the current word.
func (s *State) Word() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.word
}

// IsUsed reports whether w has already been played.
func (s *State) IsUsed(w string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.used[w]
	return ok
}

// Snapshot returns a consistent view of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Word:       s.word,
		Used:       len(s.used),
		Accepted:   s.accepted,
		Dictionary: s.dict.Len(),
	}
}
