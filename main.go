package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordchain/internal/broadcast"
	"github.com/robalobadob/wordchain/internal/config"
	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/httpserver"
	"github.com/robalobadob/wordchain/internal/relay"
	"github.com/robalobadob/wordchain/internal/store"
	"github.com/robalobadob/wordchain/internal/tcpserver"
	"github.com/robalobadob/wordchain/internal/words"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	logger := log.Logger

	dict, err := loadDictionary(cfg.DictFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load dictionary")
	}
	initial, err := openingWord(cfg, dict)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to pick opening word")
	}
	state, err := game.NewState(dict, initial)
	if err != nil {
		logger.Fatal().Err(err).Str("word", initial).Msg("invalid opening word")
	}
	logger.Info().Int("words", dict.Len()).Str("word", initial).Msg("game ready")

	// --- accept history ---
	var history store.Store
	if cfg.HistoryDB != "" {
		runID := uuid.NewString()
		history, err = store.OpenSQLite(cfg.HistoryDB, runID, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open history db")
		}
		logger.Info().Str("db", cfg.HistoryDB).Str("run", runID).Msg("history persisted")
	} else {
		history = store.NewMemoryStore()
	}
	defer history.Close()

	journals := []game.Journal{history}
	if cfg.NATSURL != "" {
		r, err := relay.Connect(cfg.NATSURL, "wordchain")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect relay")
		}
		defer r.Close()
		journals = append(journals, r)
		logger.Info().Str("url", cfg.NATSURL).Str("subject", relay.Subject).Msg("relay connected")
	}

	hub := broadcast.NewHub()
	engine := game.NewEngine(state, hub, logger, journals...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Addr).Msg("listen")
	}

	tcp := tcpserver.New(engine, logger, cfg.WriteTimeout)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tcp.Serve(gctx, ln) })
	if cfg.HTTPAddr != "" {
		hln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.HTTPAddr).Msg("listen http")
		}
		srv := httpserver.New(gctx, engine, history, logger, httpserver.Options{
			Origin:       cfg.Origin,
			WriteTimeout: cfg.WriteTimeout,
			TCP:          tcp,
		})
		g.Go(func() error { return srv.Serve(gctx, hln) })
	}

	err = g.Wait()
	hub.Close()
	if err != nil {
		logger.Error().Err(err).Msg("server exited")
		history.Close()
		os.Exit(1)
	}
	logger.Info().Uint64("version", hub.Version()).Msg("server stopped")
}

func loadDictionary(path string) (*words.Dictionary, error) {
	if path == "" {
		return words.Default()
	}
	return words.Load(path)
}

// openingWord picks the configured word, else the seeded word of the day,
// else a random one.
func openingWord(cfg *config.Config, dict *words.Dictionary) (string, error) {
	switch {
	case cfg.InitialWord != "":
		return cfg.InitialWord, nil
	case cfg.Seed != "":
		return dict.Seeded(cfg.Seed, time.Now()), nil
	default:
		return dict.Random()
	}
}
