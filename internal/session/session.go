// internal/session/session.go
//
// Per-connection control loop.
//
// A session is Active until it reaches Closed, which is terminal. Each
// iteration races three sources with no priority between them:
//   - an inbound line: decode errors (over-long lines included) are logged
//     and ignored; "guess" is submitted to the engine and answered with
//     accept/reject; "exit" closes; end of input closes;
//   - a broadcast wake: the current word is re-read under the read lock and
//     sent as "update <word>"; a torn-down hub closes the session;
//   - context cancellation (server shutdown) closes the session.
//
// The accept/reject reply and the update for the session's own commit may
// reach the client in either order.

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/protocol"
)

// Phase is the session lifecycle state.
type Phase int32

const (
	Active Phase = iota
	Closed
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session serves one client.
type Session struct {
	id     string
	t      Transport
	engine *game.Engine
	log    zerolog.Logger
	phase  atomic.Int32

	decodeErrors atomic.Uint64
}

// New prepares a session; call Run to serve it.
func New(id string, t Transport, engine *game.Engine, logger zerolog.Logger) *Session {
	return &Session{
		id:     id,
		t:      t,
		engine: engine,
		log:    logger.With().Str("session", id).Str("remote", t.RemoteAddr()).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return Phase(s.phase.Load()) }

// DecodeErrors returns how many malformed lines the client has sent.
func (s *Session) DecodeErrors() uint64 { return s.decodeErrors.Load() }

type readResult struct {
	line string
	err  error
}

// Run serves the client until the session closes. It returns nil for every
// normal ending (exit, end of input, shutdown) and an error for I/O failures.
// The transport is closed on return.
func (s *Session) Run(ctx context.Context) error {
	sub := s.engine.Hub().Subscribe()
	defer sub.Close()
	defer s.t.Close()

	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go s.readLoop(lines, done)

	defer s.phase.Store(int32(Closed))
	s.log.Info().Msg("session started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session closed by shutdown")
			s.sayGoodbye()
			return nil

		case r := <-lines:
			if errors.Is(r.err, ErrLineTooLong) {
				s.decodeErrors.Add(1)
				s.log.Warn().Err(r.err).Msg("cannot decode command")
				continue
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					s.log.Info().Msg("session closed by peer")
					return nil
				}
				return fmt.Errorf("read: %w", r.err)
			}
			exit, err := s.handleLine(ctx, r.line)
			if err != nil {
				return err
			}
			if exit {
				s.log.Info().Msg("session exited")
				return nil
			}

		case _, ok := <-sub.C():
			if !ok {
				s.log.Info().Msg("session closed by hub teardown")
				s.sayGoodbye()
				return nil
			}
			word := s.engine.State().Word()
			if err := s.t.WriteLine(protocol.Update(word).String()); err != nil {
				return fmt.Errorf("write update: %w", err)
			}
		}
	}
}

// handleLine processes one inbound line and reports whether the client asked
// to exit.
func (s *Session) handleLine(ctx context.Context, line string) (bool, error) {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		s.decodeErrors.Add(1)
		s.log.Warn().Err(err).Str("line", line).Msg("cannot decode command")
		return false, nil
	}

	switch cmd.Kind {
	case protocol.CommandExit:
		return true, nil
	case protocol.CommandGuess:
		reply := protocol.Rejected
		if s.engine.Submit(ctx, s.id, cmd.Word) {
			reply = protocol.Accepted
		}
		if err := s.t.WriteLine(reply.String()); err != nil {
			return false, fmt.Errorf("write reply: %w", err)
		}
	}
	return false, nil
}

// sayGoodbye tells the client the server is going away. Best effort.
func (s *Session) sayGoodbye() {
	if err := s.t.WriteLine(protocol.Close.String()); err != nil {
		s.log.Debug().Err(err).Msg("write close")
	}
}

func (s *Session) readLoop(out chan<- readResult, done <-chan struct{}) {
	for {
		line, err := s.t.ReadLine()
		select {
		case out <- readResult{line: line, err: err}:
		case <-done:
			return
		}
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return
		}
	}
}
