// internal/config/config.go
//
// Server configuration.
//
// Sources, lowest to highest precedence:
//   1. built-in defaults;
//   2. environment variables (a .env file in the working directory is loaded
//      first if present);
//   3. command-line flags.
//
// Environment variables:
//   ADDR, HTTP_ADDR, CLIENT_ORIGIN, DICT_FILE, INITIAL_WORD, WORD_SEED, HISTORY_DB,
//   NATS_URL, LOG_LEVEL, LOG_FORMAT, WRITE_TIMEOUT

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Config holds the server's configuration values.
type Config struct {
	Addr     string // TCP address for the line protocol
	HTTPAddr string // status API and WebSocket gateway; empty disables
	Origin   string // allowed browser origin for CORS and /ws; "*" allows any

	DictFile    string // dictionary path; empty uses the embedded list
	InitialWord string // forces the opening word; must be in the dictionary
	Seed        string // deterministic opening word per UTC day; ignored if InitialWord is set

	HistoryDB string // SQLite path for the accept history; empty keeps it in memory
	NATSURL   string // relay accepted words to NATS; empty disables

	LogLevel     zerolog.Level
	LogFormat    string // "json" or "console"
	WriteTimeout time.Duration
}

// ErrHelp is returned by Load when -h/--help was requested.
var ErrHelp = pflag.ErrHelp

// Load builds the configuration for program name from args (without the
// program name itself).
func Load(name string, args []string) (*Config, error) {
	// Missing .env is fine; anything else worth reporting is the caller's call.
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("WRITE_TIMEOUT: %w", err)
	}

	var (
		cfg      Config
		logLevel string
	)
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getEnv("ADDR", "0.0.0.0:7373"), "TCP address for game connections")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", getEnv("HTTP_ADDR", ""), "HTTP address for the status API and /ws (empty disables)")
	fs.StringVar(&cfg.Origin, "client-origin", getEnv("CLIENT_ORIGIN", "*"), "allowed browser origin for the HTTP API and /ws")
	fs.StringVar(&cfg.DictFile, "dict-file", getEnv("DICT_FILE", ""), "dictionary file, one word per line (empty uses the built-in list)")
	fs.StringVar(&cfg.InitialWord, "initial-word", getEnv("INITIAL_WORD", ""), "opening word (must be in the dictionary)")
	fs.StringVar(&cfg.Seed, "seed", getEnv("WORD_SEED", ""), "seed for a deterministic opening word per UTC day")
	fs.StringVar(&cfg.HistoryDB, "history-db", getEnv("HISTORY_DB", ""), "SQLite file for the accept history (empty keeps it in memory)")
	fs.StringVar(&cfg.NATSURL, "nats-url", getEnv("NATS_URL", ""), "NATS server to relay accepted words to (empty disables)")
	fs.StringVar(&logLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level: trace, debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "json"), "log format: json or console")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", timeout, "deadline for each socket write (0 disables)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg.LogLevel, err = zerolog.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format %q: want json or console", c.LogFormat)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write timeout %s must not be negative", c.WriteTimeout)
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
