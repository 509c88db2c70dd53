package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/luishacm/poc-youtube-data-livestream/internal/config"
	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
	"github.com/luishacm/poc-youtube-data-livestream/internal/store"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		log.Printf("env: %v", err)
	}

	tail := flag.Int("tail", 0, "Print only the last N rows (0 = all)")
	latest := flag.Bool("latest", false, "Print the Redis mirror (latest row per live id) instead of the table")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var rows snapshot.Table
	if *latest {
		rows, err = loadLatest(ctx, cfg)
	} else {
		rows, err = loadTable(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	if *tail > 0 && len(rows) > *tail {
		rows = rows[len(rows)-*tail:]
	}
	if err := writeCSV(os.Stdout, rows); err != nil {
		log.Fatalf("write: %v", err)
	}
}

func loadTable(ctx context.Context, cfg config.Config) (snapshot.Table, error) {
	switch cfg.StoreKind {
	case config.StorePostgres:
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return (&store.PostgresStore{Pool: pool}).Load(ctx)
	default:
		return store.NewXLSXStore(cfg.FileBase).Load(ctx)
	}
}

func loadLatest(ctx context.Context, cfg config.Config) (snapshot.Table, error) {
	rdb, err := store.DialRedis(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rdb.Close() }()

	byID, err := store.NewRedisMirror(rdb).Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make(snapshot.Table, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CurrentDate.Before(out[j].CurrentDate)
	})
	return out, nil
}

func writeCSV(w io.Writer, rows snapshot.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshot.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			snapshot.Deref(r.ChannelTitle),
			snapshot.Deref(r.LivestreamTitle),
			snapshot.Deref(r.LiveID),
			snapshot.Deref(r.CreatedAt),
			r.CurrentDate.Format(time.RFC3339Nano),
			snapshot.Deref(r.ConcurrentViewersCount),
			snapshot.Deref(r.LikeCount),
			snapshot.Deref(r.ViewCount),
			r.TopicCategories,
			snapshot.Deref(r.ThumbnailMaxresURL),
			snapshot.Deref(r.Description),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
