package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer reads n lines from conn, running reply after each one.
func fakeServer(t *testing.T, conn net.Conn, n int, reply func(i int, line string)) <-chan []string {
	t.Helper()
	got := make(chan []string, 1)
	go func() {
		var lines []string
		r := bufio.NewReader(conn)
		for i := 0; i < n; i++ {
			line, err := r.ReadString('\n')
			if err != nil {
				break
			}
			lines = append(lines, line)
			reply(i, line)
		}
		got <- lines
	}()
	return got
}

func TestPlayGuessThenExit(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	got := fakeServer(t, server, 2, func(i int, _ string) {
		if i == 0 {
			_, _ = io.WriteString(server, "update tac\naccept\n")
		}
	})

	var out bytes.Buffer
	in := bytes.NewBufferString("guess tac\nbogus\n\nexit\n")
	err := play(context.Background(), client, in, &out, zerolog.Nop())
	require.NoError(t, err)

	select {
	case lines := <-got:
		assert.Equal(t, []string{"guess tac\n", "exit\n"}, lines)
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw exit")
	}
	assert.Contains(t, out.String(), "word is now tac\n")
	assert.Contains(t, out.String(), "accepted\n")
}

func TestPlayStopsOnServerClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	// Stdin that never produces a line.
	stdin, stdinW := io.Pipe()
	defer stdinW.Close()

	go func() { _, _ = io.WriteString(server, "close\n") }()

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- play(context.Background(), client, stdin, &out, zerolog.Nop()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("play did not return after close")
	}
	assert.Equal(t, "server closed the game\n", out.String())
}

func TestPlayEndOfInputSendsExit(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	got := fakeServer(t, server, 1, func(int, string) {})

	err := play(context.Background(), client, bytes.NewReader(nil), io.Discard, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"exit\n"}, <-got)
}

func TestPlayContextCancel(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	stdin, stdinW := io.Pipe()
	defer stdinW.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- play(ctx, client, stdin, io.Discard, zerolog.Nop()) }()

	cancel()
	select {
	case <-done:
		// The receiver sees the closed conn; either outcome ends play.
	case <-time.After(2 * time.Second):
		t.Fatal("play ignored cancellation")
	}
}

func TestRunFlags(t *testing.T) {
	assert.NoError(t, run([]string{"--help"}))
	assert.Error(t, run([]string{"--nope"}))
	assert.ErrorContains(t, run([]string{"extra"}), "unexpected arguments")
}

func TestRunDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	assert.ErrorContains(t, run([]string{"--server", addr}), "dial "+addr)
}
