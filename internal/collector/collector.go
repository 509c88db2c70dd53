package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
	"github.com/luishacm/poc-youtube-data-livestream/internal/store"
	"github.com/luishacm/poc-youtube-data-livestream/internal/youtube"
)

type Fetcher interface {
	FetchLiveVideo(ctx context.Context, id string) (*youtube.VideoListResponse, error)
}

type Publisher interface {
	Publish(ctx context.Context, rows []snapshot.Row) error
}

type Collector struct {
	Fetcher Fetcher
	Store   store.Store
	// Publisher is optional; a failed publish is logged and the pass still succeeds.
	Publisher Publisher

	RequestTimeout time.Duration
	Now            func() time.Time
	Logger         zerolog.Logger
}

func New(f Fetcher, s store.Store, logger zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:        f,
		Store:          s,
		RequestTimeout: 20 * time.Second,
		Now:            time.Now,
		Logger:         logger,
	}
}

// RunPass loads the persisted table and extends it with one row per id.
func (c *Collector) RunPass(ctx context.Context, ids []string) error {
	prior, err := c.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}
	_, err = c.CollectAndPersist(ctx, ids, prior)
	return err
}

// CollectAndPersist fetches each id in order, appends the extracted rows after
// prior, and saves the whole table once. Any failure returns before Save, so
// the stored table is left as it was.
func (c *Collector) CollectAndPersist(ctx context.Context, ids []string, prior snapshot.Table) (snapshot.Table, error) {
	tbl := prior.Clone()
	fresh := make([]snapshot.Row, 0, len(ids))

	for i, id := range ids {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		row, err := c.collectOne(ctx, id)
		if err != nil {
			c.Logger.Error().Err(err).Str("id", id).Msgf("collect: failed (%d/%d), aborting pass", i+1, len(ids))
			return nil, err
		}
		fresh = append(fresh, row)

		c.Logger.Info().
			Str("id", id).
			Str("viewers", snapshot.Deref(row.ConcurrentViewersCount)).
			Str("views", snapshot.Deref(row.ViewCount)).
			Msgf("collect: ok (%d/%d)", i+1, len(ids))
	}

	tbl = tbl.Append(fresh...)
	if err := c.Store.Save(ctx, tbl); err != nil {
		return nil, fmt.Errorf("save table: %w", err)
	}
	c.Logger.Info().Int("rows", len(tbl)).Int("new", len(fresh)).Msg("collect: table saved")

	if c.Publisher != nil {
		if err := c.Publisher.Publish(ctx, fresh); err != nil {
			c.Logger.Warn().Err(err).Msg("collect: mirror publish failed")
		}
	}
	return tbl, nil
}

func (c *Collector) collectOne(ctx context.Context, id string) (snapshot.Row, error) {
	fctx := ctx
	if c.RequestTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
	}

	resp, err := c.Fetcher.FetchLiveVideo(fctx, id)
	if err != nil {
		return snapshot.Row{}, err
	}
	row, err := snapshot.Extract(resp, c.now())
	if err != nil {
		return snapshot.Row{}, fmt.Errorf("id=%s: %w", id, err)
	}
	return row, nil
}

func (c *Collector) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
