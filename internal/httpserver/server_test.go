package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordchain/internal/broadcast"
	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/store"
	"github.com/robalobadob/wordchain/internal/words"
)

type fixture struct {
	engine *game.Engine
	ts     *httptest.Server
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	dict, err := words.New([]string{"cat", "tac", "tap", "act"})
	require.NoError(t, err)
	st, err := game.NewState(dict, "cat")
	require.NoError(t, err)
	history := store.NewMemoryStore()
	engine := game.NewEngine(st, broadcast.NewHub(), zerolog.Nop(), history)

	ctx, cancel := context.WithCancel(context.Background())
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = time.Second
	}
	srv := New(ctx, engine, history, zerolog.Nop(), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return &fixture{engine: engine, ts: ts}
}

func (f *fixture) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	res, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func (f *fixture) guess(t *testing.T, word string) guessRes {
	t.Helper()
	res, err := http.Post(f.ts.URL+"/guess", "application/json", strings.NewReader(`{"guess":"`+word+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out guessRes
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestHealthAndIndex(t *testing.T) {
	f := newFixture(t, Options{})
	var health map[string]bool
	res := f.getJSON(t, "/health", &health)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, health["ok"])
	assert.Contains(t, res.Header.Get("Content-Type"), "application/json")
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	var index map[string]any
	f.getJSON(t, "/", &index)
	assert.Equal(t, "wordchain", index["service"])

	var nf map[string]string
	res = f.getJSON(t, "/nope", &nf)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", nf["error"])
}

func TestGuessStateAndHistory(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Equal(t, guessRes{Accepted: false, Word: "cat"}, f.guess(t, "tap"))
	assert.Equal(t, guessRes{Accepted: true, Word: "tac"}, f.guess(t, "tac"))
	assert.Equal(t, guessRes{Accepted: false, Word: "tac"}, f.guess(t, "cat"))

	var st stateRes
	f.getJSON(t, "/state", &st)
	assert.Equal(t, "tac", st.Word)
	assert.Equal(t, 2, st.Used)
	assert.Equal(t, uint64(1), st.Accepted)
	assert.Equal(t, 4, st.Dictionary)
	assert.Equal(t, uint64(1), st.Version)
	assert.Nil(t, st.TCP, "no TCP listener configured")

	var history []game.Entry
	f.getJSON(t, "/history?limit=5", &history)
	require.Len(t, history, 1)
	assert.Equal(t, "tac", history[0].Word)
	assert.Equal(t, "cat", history[0].Previous)
	assert.True(t, strings.HasPrefix(history[0].Origin, "http"))

	res := f.getJSON(t, "/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGuessBadRequests(t *testing.T) {
	f := newFixture(t, Options{})
	for _, body := range []string{`not json`, `{"guess":""}`, `{"guess":"two words"}`} {
		res, err := http.Post(f.ts.URL+"/guess", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
	}
	assert.Equal(t, "cat", f.engine.State().Word())
}

func dialWS(t *testing.T, f *fixture, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func readFrame(t *testing.T, c *websocket.Conn) string {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestWebSocketSession(t *testing.T) {
	f := newFixture(t, Options{})
	conn, _, err := dialWS(t, f, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.engine.Hub().Subscribers() == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("guess tap")))
	assert.Equal(t, "reject", readFrame(t, conn))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("guess tac")))
	got := []string{readFrame(t, conn), readFrame(t, conn)}
	sort.Strings(got)
	assert.Equal(t, []string{"accept", "update tac"}, got)

	// A guess over HTTP wakes the WebSocket session.
	assert.True(t, f.guess(t, "act").Accepted)
	assert.Equal(t, "update act", readFrame(t, conn))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return f.engine.Hub().Subscribers() == 0 }, 2*time.Second, time.Millisecond)
}

func TestWebSocketOriginCheck(t *testing.T) {
	f := newFixture(t, Options{Origin: "https://play.example"})

	_, res, err := dialWS(t, f, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	conn, _, err := dialWS(t, f, http.Header{"Origin": {"https://play.example"}})
	require.NoError(t, err)
	conn.Close()
}

type staticCounter struct {
	active int
	served uint64
}

func (c staticCounter) Active() int    { return c.active }
func (c staticCounter) Served() uint64 { return c.served }

func TestStateReportsTCPSessions(t *testing.T) {
	f := newFixture(t, Options{TCP: staticCounter{active: 2, served: 7}})

	var st stateRes
	f.getJSON(t, "/state", &st)
	require.NotNil(t, st.TCP)
	assert.Equal(t, sessionRes{Active: 2, Served: 7}, *st.TCP)
}

func TestWebSocketLongFrameIsDecodeError(t *testing.T) {
	f := newFixture(t, Options{})
	conn, _, err := dialWS(t, f, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.engine.Hub().Subscribers() == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("guess "+strings.Repeat("x", 5000))))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("guess tac")))
	got := []string{readFrame(t, conn), readFrame(t, conn)}
	sort.Strings(got)
	assert.Equal(t, []string{"accept", "update tac"}, got)
}
