// internal/httpserver/routes_game.go
//
// Game routes:
//   - GET  /state            → current word, hub and TCP session counters
//   - GET  /history?limit=N  → recent accepted guesses, newest first
//   - POST /guess            → submit a guess outside a live session
//
// POST /guess goes through the same Engine.Submit path as line-protocol
// sessions, so an accepted HTTP guess wakes every connected session.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/wordchain/internal/game"
)

// maxHistory caps the limit query parameter.
const maxHistory = 200

func (s *Server) mountGame(r chi.Router) {
	r.Get("/state", s.handleState)
	r.Get("/history", s.handleHistory)
	r.Post("/guess", s.handleGuess)
}

type stateRes struct {
	game.Snapshot
	Subscribers int         `json:"subscribers"`
	Version     uint64      `json:"version"`
	TCP         *sessionRes `json:"tcp,omitempty"`
}

type sessionRes struct {
	Active int    `json:"active"`
	Served uint64 `json:"served"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	hub := s.engine.Hub()
	res := stateRes{
		Snapshot:    s.engine.State().Snapshot(),
		Subscribers: hub.Subscribers(),
		Version:     hub.Version(),
	}
	if s.opts.TCP != nil {
		res.TCP = &sessionRes{Active: s.opts.TCP.Active(), Served: s.opts.TCP.Served()}
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = min(n, maxHistory)
	}
	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("load history")
		writeError(w, http.StatusInternalServerError, "history_failed")
		return
	}
	if entries == nil {
		entries = []game.Entry{}
	}
	_ = json.NewEncoder(w).Encode(entries)
}

// guessReq/Res payloads for POST /guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	Accepted bool   `json:"accepted"`
	Word     string `json:"word"` // current word after the attempt
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess := strings.TrimSpace(req.Guess)
	if guess == "" || strings.ContainsAny(guess, " \t\r\n") {
		writeError(w, http.StatusBadRequest, "bad_guess")
		return
	}

	origin := "http"
	if id := chimw.GetReqID(r.Context()); id != "" {
		origin = "http:" + id
	}
	accepted := s.engine.Submit(r.Context(), origin, guess)
	_ = json.NewEncoder(w).Encode(guessRes{Accepted: accepted, Word: s.engine.State().Word()})
}

// writeError sends {"error": code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
