package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/luishacm/poc-youtube-data-livestream/internal/collector"
	"github.com/luishacm/poc-youtube-data-livestream/internal/config"
	"github.com/luishacm/poc-youtube-data-livestream/internal/schedule"
	"github.com/luishacm/poc-youtube-data-livestream/internal/store"
	"github.com/luishacm/poc-youtube-data-livestream/internal/youtube"
)

func main() {
	if path, err := config.LoadDotEnv(); err != nil {
		log.Printf("env: %v", err)
	} else if path != "" {
		log.Printf("env: loaded %s", path)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	yt, err := youtube.New(cfg.YouTubeAPIKey,
		youtube.WithBaseURL(cfg.YouTubeBaseURL),
		youtube.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("youtube client")
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	if cfg.Bootstrap {
		if bs, ok := st.(store.Initializer); ok {
			if err := bs.Init(ctx); err != nil {
				logger.Fatal().Err(err).Msg("store: bootstrap")
			}
		}
	}

	c := collector.New(yt, st, logger)
	c.RequestTimeout = cfg.RequestTimeout

	if cfg.RedisURL != "" {
		rdb, err := store.DialRedis(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer func() { _ = rdb.Close() }()
		c.Publisher = store.NewRedisMirror(rdb)
		logger.Info().Str("key", store.LatestKey).Msg("redis: mirroring latest snapshots")
	}

	runner := &schedule.Runner{
		Interval:  cfg.PollInterval,
		OnError:   cfg.OnPassError,
		MaxPasses: cfg.MaxPasses,
		Logger:    logger,
	}

	logger.Info().
		Strs("ids", cfg.ChannelIDs).
		Str("store", cfg.StoreKind).
		Dur("interval", cfg.PollInterval).
		Str("on_error", cfg.OnPassError.String()).
		Msg("livesnap: starting")

	err = runner.Run(ctx, func(ctx context.Context) error {
		return c.RunPass(ctx, cfg.ChannelIDs)
	})
	if err != nil {
		logger.Error().Err(err).Msg("livesnap: stopped")
		closeStore()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreKind {
	case config.StorePostgres:
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return &store.PostgresStore{Pool: pool}, pool.Close, nil
	default:
		return store.NewXLSXStore(cfg.FileBase), func() {}, nil
	}
}
