// Package relay republishes accepted guesses to a NATS subject so that
// processes outside the game (scoreboards, bots, loggers) can follow the chain
// without holding a game connection.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/robalobadob/wordchain/internal/game"
)

// Subject carries one JSON-encoded game.Entry per accepted guess.
const Subject = "wordchain.accepted"

// publisher is the subset of *nats.Conn the relay needs.
type publisher interface {
	Publish(subj string, data []byte) error
}

// Relay is a game.Journal that publishes to NATS.
type Relay struct {
	pub     publisher
	subject string
	close   func()
}

// Connect dials url with the same options the other broker clients use.
func Connect(url, name string) (*Relay, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return &Relay{pub: nc, subject: Subject, close: nc.Close}, nil
}

// Record publishes e. The context is unused; NATS publishes are buffered.
func (r *Relay) Record(_ context.Context, e game.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := r.pub.Publish(r.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", r.subject, err)
	}
	return nil
}

// Close drops the broker connection.
func (r *Relay) Close() {
	if r.close != nil {
		r.close()
	}
}
