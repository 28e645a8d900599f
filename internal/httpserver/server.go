// internal/httpserver/server.go
//
// HTTP surface of the wordchain server.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: GET /state, GET /history, POST /guess (routes_game.go).
//   - WebSocket gateway: GET /ws runs a full game session over text frames
//     (ws.go).
//
// Notes:
//   - Every route except /ws is bounded by a handler timeout; /ws sessions
//     live until the client leaves or the server shuts down.
//   - CORS allows a single configured origin, or any origin with "*".

package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/store"
)

// Options configures a Server.
type Options struct {
	Origin       string        // allowed browser origin; "*" allows any
	WriteTimeout time.Duration // deadline for each WebSocket write
	TCP          Counter       // line-protocol sessions reported by /state; nil omits them
}

// Counter reports session counts of another listener.
type Counter interface {
	Active() int
	Served() uint64
}

// Server bundles router, game engine and history store.
type Server struct {
	r       *chi.Mux
	engine  *game.Engine
	history store.Store
	log     zerolog.Logger
	opts    Options

	upgrader websocket.Upgrader
	ctx      context.Context // parent of every /ws session
	sessions sync.WaitGroup
}

// New constructs a Server, installs middleware, and registers routes.
// Cancelling ctx ends every WebSocket session.
func New(ctx context.Context, engine *game.Engine, history store.Store, logger zerolog.Logger, opts Options) *Server {
	if opts.Origin == "" {
		opts.Origin = "*"
	}
	s := &Server{
		r:       chi.NewRouter(),
		engine:  engine,
		history: history,
		log:     logger,
		opts:    opts,
		ctx:     ctx,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // single-origin CORS

	// --- websocket (no handler timeout) ---
	s.r.Get("/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordchain","endpoints":["/health","/state","/history","POST /guess","/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountGame(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	return s
}

// Handler exposes the router (useful for tests and custom listeners).
func (s *Server) Handler() http.Handler { return s.r }

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully
// and waits for WebSocket sessions to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("serving http")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	s.sessions.Wait()
	if serveErr := <-errc; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.Origin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin gates WebSocket upgrades with the same origin rule as CORS.
// Requests without an Origin header (non-browser clients) are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return s.opts.Origin == "*" || origin == "" || origin == s.opts.Origin
}
