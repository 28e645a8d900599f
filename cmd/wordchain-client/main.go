// cmd/wordchain-client/main.go
//
// Interactive line client for the wordchain server.
// Responsibilities:
//   - Dial the server and print every message it sends.
//   - Read commands from stdin ("guess <word>", "exit") and forward them.
//   - Stop on "exit", end of stdin, a server "close", or Ctrl-C.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordchain/internal/protocol"
)

// errDone ends the client without reporting a failure.
var errDone = errors.New("done")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		server  string
		verbose bool
	)
	flagSet := pflag.NewFlagSet("wordchain-client", pflag.ContinueOnError)
	flagSet.StringVar(&server, "server", "127.0.0.1:7373", "wordchain server address")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", server)
	if err != nil {
		return fmt.Errorf("dial %s: %w", server, err)
	}
	logger.Debug().Str("server", server).Msg("connected")
	fmt.Fprintln(os.Stdout, `commands: "guess <word>" or "exit"`)

	if err := play(ctx, conn, os.Stdin, os.Stdout, logger); err != nil {
		return fmt.Errorf("connection lost: %w", err)
	}
	return nil
}

// play drives one connection until either side ends it. conn is closed on
// return.
func play(ctx context.Context, conn net.Conn, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	// Stdin cannot be interrupted, so it is fed through a channel the sender
	// can abandon.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error { return receive(conn, out, logger) })
	g.Go(func() error { return send(gctx, conn, lines, logger) })
	g.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errDone) {
		return err
	}
	return nil
}

// receive prints server messages until "close" or EOF.
func receive(conn net.Conn, out io.Writer, logger zerolog.Logger) error {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		msg, err := protocol.ParseMessage(sc.Text())
		if err != nil {
			logger.Warn().Err(err).Msg("unreadable server message")
			continue
		}
		switch msg.Kind {
		case protocol.MessageUpdate:
			fmt.Fprintf(out, "word is now %s\n", msg.Word)
		case protocol.MessageAccepted:
			fmt.Fprintln(out, "accepted")
		case protocol.MessageRejected:
			fmt.Fprintln(out, "rejected")
		case protocol.MessageClose:
			fmt.Fprintln(out, "server closed the game")
			return errDone
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	fmt.Fprintln(out, "disconnected")
	return errDone
}

// send forwards stdin commands. End of stdin counts as exit.
func send(ctx context.Context, conn net.Conn, lines <-chan string, logger zerolog.Logger) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				line = "exit"
			} else {
				line = l
			}
		}

		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			if !errors.Is(err, protocol.ErrEmpty) {
				logger.Warn().Err(err).Msg(`expected "guess <word>" or "exit"`)
			}
			continue
		}
		if _, err := io.WriteString(conn, cmd.String()+"\n"); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		logger.Debug().Stringer("cmd", cmd).Msg("sent")
		if cmd.Kind == protocol.CommandExit {
			return errDone
		}
	}
}
