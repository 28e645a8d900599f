package session

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// Transport moves protocol lines between a session and its client.
// ReadLine is called from one goroutine and WriteLine from another; Close
// must unblock a pending ReadLine.
type Transport interface {
	// ReadLine returns the next line without its terminator, or io.EOF when
	// the peer has finished sending.
	ReadLine() (string, error)
	// WriteLine sends one line; the transport adds the terminator.
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// maxLineLength bounds a single inbound line.
const maxLineLength = 4096

// ErrLineTooLong is returned by ReadLine for an inbound line longer than the
// transport accepts. The rest of that line has been discarded and the next
// ReadLine starts on the following line.
var ErrLineTooLong = errors.New("session: line too long")

type lineTransport struct {
	conn         net.Conn
	r            *bufio.Reader
	writeTimeout time.Duration
	wmu          sync.Mutex
}

// NewLineTransport speaks newline-terminated lines over conn. A positive
// writeTimeout bounds every write.
func NewLineTransport(conn net.Conn, writeTimeout time.Duration) Transport {
	return &lineTransport{conn: conn, r: bufio.NewReader(conn), writeTimeout: writeTimeout}
}

func (t *lineTransport) ReadLine() (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := t.r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(bytes.TrimRight(line, "\r\n")) > maxLineLength {
				tooLong, line = true, nil
			}
		}
		switch {
		case err == nil:
			if tooLong {
				return "", ErrLineTooLong
			}
			return string(bytes.TrimRight(line, "\r\n")), nil
		case errors.Is(err, bufio.ErrBufferFull):
			// keep reading the same line
		case errors.Is(err, io.EOF):
			if tooLong {
				return "", ErrLineTooLong
			}
			if len(line) > 0 {
				// final line without a terminator
				return string(bytes.TrimRight(line, "\r")), nil
			}
			return "", io.EOF
		default:
			return "", err
		}
	}
}

func (t *lineTransport) WriteLine(line string) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(t.conn, line+"\n")
	return err
}

func (t *lineTransport) Close() error { return t.conn.Close() }

func (t *lineTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }
