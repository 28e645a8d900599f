// internal/protocol/protocol.go
//
// Line protocol spoken between wordchain clients and the server.
//
//   client → server:  "guess <word>", "exit"
//   server → client:  "accept", "reject", "update <word>", "close"
//
// Lines are tokenized on whitespace. Parsers never panic on malformed input;
// they return ErrEmpty or an error wrapping ErrUnknown. The String methods
// produce the wire form without a line terminator; transports append "\n".
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned for blank lines.
	ErrEmpty = errors.New("protocol: empty line")
	// ErrUnknown is wrapped for unknown verbs or wrong arity.
	ErrUnknown = errors.New("protocol: unknown command")
)

// CommandKind enumerates client commands.
type CommandKind int

const (
	CommandGuess CommandKind = iota + 1
	CommandExit
)

// Command is a decoded client line.
type Command struct {
	Kind CommandKind
	Word string // set for CommandGuess
}

// Guess builds a guess command.
func Guess(word string) Command { return Command{Kind: CommandGuess, Word: word} }

// Exit builds an exit command.
func Exit() Command { return Command{Kind: CommandExit} }

// String renders the wire form.
func (c Command) String() string {
	switch c.Kind {
	case CommandGuess:
		return "guess " + c.Word
	case CommandExit:
		return "exit"
	default:
		return ""
	}
}

// ParseCommand decodes a client line.
func ParseCommand(line string) (Command, error) {
	tokens := strings.Fields(line)
	switch {
	case len(tokens) == 0:
		return Command{}, ErrEmpty
	case len(tokens) == 2 && tokens[0] == "guess":
		return Guess(tokens[1]), nil
	case len(tokens) == 1 && tokens[0] == "exit":
		return Exit(), nil
	default:
		return Command{}, fmt.Errorf("%w %q", ErrUnknown, tokens[0])
	}
}

// MessageKind enumerates server messages.
type MessageKind int

const (
	MessageUpdate MessageKind = iota + 1
	MessageAccepted
	MessageRejected
	MessageClose
)

// Message is a decoded server line.
type Message struct {
	Kind MessageKind
	Word string // set for MessageUpdate
}

// Update builds an update message for word.
func Update(word string) Message { return Message{Kind: MessageUpdate, Word: word} }

// Accepted and Rejected are the replies to a guess; Close ends a session.
var (
	Accepted = Message{Kind: MessageAccepted}
	Rejected = Message{Kind: MessageRejected}
	Close    = Message{Kind: MessageClose}
)

// String renders the wire form.
func (m Message) String() string {
	switch m.Kind {
	case MessageUpdate:
		return "update " + m.Word
	case MessageAccepted:
		return "accept"
	case MessageRejected:
		return "reject"
	case MessageClose:
		return "close"
	default:
		return ""
	}
}

// ParseMessage decodes a server line. "accepted" and "rejected" are
// accepted as aliases of the short forms.
func ParseMessage(line string) (Message, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Message{}, ErrEmpty
	}
	switch tokens[0] {
	case "update":
		if len(tokens) == 2 {
			return Update(tokens[1]), nil
		}
	case "accept", "accepted":
		if len(tokens) == 1 {
			return Accepted, nil
		}
	case "reject", "rejected":
		if len(tokens) == 1 {
			return Rejected, nil
		}
	case "close":
		if len(tokens) == 1 {
			return Close, nil
		}
	}
	return Message{}, fmt.Errorf("%w %q", ErrUnknown, tokens[0])
}
