// Package main is the entry point for the Telegram terminal games bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/calkeo/calkeo-terminal-sub000/internal/bot"
	"github.com/calkeo/calkeo-terminal-sub000/internal/config"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/chess"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/connectfour"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/hangman"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/tictactoe"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/wordchain"
	"github.com/calkeo/calkeo-terminal-sub000/internal/pkg/db"
	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
	"github.com/calkeo/calkeo-terminal-sub000/internal/terminal"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Str("session_driver", cfg.Session.Driver).Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()

	store, sessions, closeStore := openStore(ctx, cfg)
	defer closeStore()

	if purger, ok := store.(session.Purger); ok {
		sweeper := session.NewSweeper(purger, cfg.Session.TTL)
		if _, err := sweeper.Schedule(scheduler, cfg.Session.SweepSchedule); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule session sweep")
		}
	}

	source := words.NewSource(words.FileLoader{}, cfg.Words.CacheTTL)

	registry := newRegistry(cfg, source)

	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Names()).
		Msg("Games registered")

	term := terminal.New(registry, store, terminal.WithLockTimeout(cfg.Session.LockTimeout))

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:   cfg,
		Terminal: term,
		Registry: registry,
		Words:    source,
		Sessions: sessions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	scheduler.Start()
	defer scheduler.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// newRegistry registers every game.
func newRegistry(cfg *config.Config, source *words.Source) *game.Registry {
	dictionary := cfg.Words.Source
	if dictionary == "" {
		dictionary = words.EmbeddedSource
	}

	registry := game.NewRegistry()
	commands := []game.Command{
		chess.New(&chess.Config{SearchNodes: cfg.Games.SearchNodes}),
		connectfour.New(&connectfour.Config{SearchNodes: cfg.Games.SearchNodes}),
		tictactoe.New(&tictactoe.Config{SearchNodes: cfg.Games.SearchNodes}),
		hangman.New(&hangman.Config{Words: source, Dictionary: dictionary}),
		wordchain.New(&wordchain.Config{Words: source, Dictionary: dictionary}),
	}
	for _, c := range commands {
		if err := registry.Register(c); err != nil {
			log.Fatal().Err(err).Str("game", c.Name()).Msg("Failed to register game")
		}
	}
	return registry
}

// openStore connects the configured session store. sessions is nil when the
// store cannot count its sessions.
func openStore(ctx context.Context, cfg *config.Config) (store session.Store, sessions func() int, closeFn func()) {
	switch cfg.Session.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		pg := session.NewPostgresStore(pool.Pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		return pg, nil, pool.Close

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to redis")
		return session.NewRedisStore(rdb, cfg.Session.TTL), nil, func() { _ = rdb.Close() }

	default:
		mem := session.NewMemoryStore()
		return mem, mem.Count, func() {}
	}
}
