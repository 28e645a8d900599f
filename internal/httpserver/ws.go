package httpserver

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/robalobadob/wordchain/internal/session"
)

const (
	// maxFrame bounds one inbound protocol line. Longer messages are drained
	// and reported as session.ErrLineTooLong.
	maxFrame = 4096
	// hardFrameLimit is the largest message the connection reads at all;
	// past it gorilla closes with 1009 (message too big).
	hardFrameLimit = 64 << 10
)

// wsTransport carries one protocol line per text frame. The frame boundary
// terminates the line, so no newline is added.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	wmu          sync.Mutex
}

func newWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *wsTransport {
	conn.SetReadLimit(hardFrameLimit)
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) ReadLine() (string, error) {
	_, r, err := t.conn.NextReader()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return "", io.EOF
		}
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(r, maxFrame+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxFrame {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return "", err
		}
		return "", session.ErrLineTooLong
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (t *wsTransport) WriteLine(line string) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) Close() error { return t.conn.Close() }

func (t *wsTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

// handleWS upgrades the request and serves a game session until it closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	sess := session.New(uuid.NewString(), newWSTransport(conn, s.opts.WriteTimeout), s.engine, s.log)
	if err := sess.Run(s.ctx); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID()).Msg("websocket session failed")
	}
}
