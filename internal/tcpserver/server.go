// internal/tcpserver/server.go
//
// TCP accept loop for the line protocol.
// Responsibilities:
//   - Accept connections and run one session goroutine per connection.
//   - Tag each session with a uuid for logs and the accept journal.
//   - Log (never retry) session failures; one client's I/O error never
//     affects another.
//   - On context cancellation: stop accepting, let sessions say goodbye, and
//     wait for them before returning.

package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/session"
)

// Server serves the game over TCP.
type Server struct {
	engine       *game.Engine
	log          zerolog.Logger
	writeTimeout time.Duration

	wg     sync.WaitGroup
	active atomic.Int64
	served atomic.Uint64
}

// New constructs a Server. writeTimeout bounds each socket write; zero
// disables the deadline.
func New(engine *game.Engine, logger zerolog.Logger, writeTimeout time.Duration) *Server {
	return &Server{engine: engine, log: logger, writeTimeout: writeTimeout}
}

// Serve accepts on ln until ctx is cancelled or the listener fails. It closes
// ln and waits for every session before returning. Cancellation is a clean
// stop and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
	}()
	defer s.wg.Wait()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("accepting game connections")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn().Err(err).Msg("accept")
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		id := uuid.NewString()
		s.log.Info().Str("session", id).Str("remote", conn.RemoteAddr().String()).Msg("accepted a client")
		s.wg.Add(1)
		go s.serveConn(ctx, id, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, id string, conn net.Conn) {
	defer s.wg.Done()
	s.active.Add(1)
	defer s.active.Add(-1)
	defer s.served.Add(1)

	sess := session.New(id, session.NewLineTransport(conn, s.writeTimeout), s.engine, s.log)
	if err := sess.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID()).Msg("session failed")
	}
}

// Active returns the number of sessions currently running.
func (s *Server) Active() int { return int(s.active.Load()) }

// Served returns the number of sessions that have finished.
func (s *Server) Served() uint64 { return s.served.Load() }
