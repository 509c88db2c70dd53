package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
)

// SchemaSQL creates the snapshot table. current_date is a reserved word and stays quoted.
const SchemaSQL = `
CREATE SCHEMA IF NOT EXISTS yt;

CREATE TABLE IF NOT EXISTS yt.live_snapshots (
	seq                      BIGINT PRIMARY KEY,
	channel_title            TEXT,
	livestream_title         TEXT,
	live_id                  TEXT,
	created_at               TEXT,
	"current_date"           TIMESTAMPTZ NOT NULL,
	concurrent_viewers_count TEXT,
	like_count               TEXT,
	view_count               TEXT,
	topic_categories         TEXT NOT NULL DEFAULT '',
	thumbnail_maxres_url     TEXT,
	description              TEXT
);

CREATE INDEX IF NOT EXISTS live_snapshots_live_id_idx
	ON yt.live_snapshots (live_id, "current_date" DESC);
`

var snapshotTable = pgx.Identifier{"yt", "live_snapshots"}

// PostgresStore keeps the table in yt.live_snapshots, ordered by seq.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPool connects with PoolConfig and checks the server answers.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, persistErr("connect postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, persistErr("ping postgres", err)
	}
	return pool, nil
}

// PoolConfig parses DATABASE_URL. A schema= query parameter is not a libpq
// option; it is lifted out and becomes the search_path. A pass is a single
// writer, so the pool stays small.
func PoolConfig(databaseURL string) (*pgxpool.Config, error) {
	dsn, searchPath := splitSchemaParam(databaseURL)
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, persistErr("parse DATABASE_URL", err)
	}
	params := cfg.ConnConfig.RuntimeParams
	if params == nil {
		params = map[string]string{}
		cfg.ConnConfig.RuntimeParams = params
	}
	if searchPath != "" {
		params["search_path"] = searchPath
	}
	if params["application_name"] == "" {
		params["application_name"] = "livesnap"
	}
	cfg.MaxConns = 2
	// SchemaSQL holds several statements and only runs in one Exec under the simple protocol.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return cfg, nil
}

func splitSchemaParam(databaseURL string) (dsn, searchPath string) {
	u, err := url.Parse(databaseURL)
	if err != nil || !u.Query().Has("schema") {
		return databaseURL, ""
	}
	q := u.Query()
	searchPath = q.Get("schema")
	q.Del("schema")
	u.RawQuery = q.Encode()
	return u.String(), searchPath
}

// Init applies SchemaSQL.
func (s *PostgresStore) Init(ctx context.Context) error {
	if s == nil || s.Pool == nil {
		return persistErr("apply schema", fmt.Errorf("nil pool"))
	}
	if _, err := s.Pool.Exec(ctx, SchemaSQL); err != nil {
		return persistErr("apply schema", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (snapshot.Table, error) {
	if s == nil || s.Pool == nil {
		return nil, persistErr("load", fmt.Errorf("nil pool"))
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT channel_title, livestream_title, live_id, created_at, "current_date",
		       concurrent_viewers_count, like_count, view_count, topic_categories,
		       thumbnail_maxres_url, description
		FROM yt.live_snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, persistErr("query snapshots", err)
	}
	defer rows.Close()

	out := snapshot.Table{}
	for rows.Next() {
		var r snapshot.Row
		if err := rows.Scan(
			&r.ChannelTitle, &r.LivestreamTitle, &r.LiveID, &r.CreatedAt, &r.CurrentDate,
			&r.ConcurrentViewersCount, &r.LikeCount, &r.ViewCount, &r.TopicCategories,
			&r.ThumbnailMaxresURL, &r.Description,
		); err != nil {
			return nil, persistErr("scan snapshot", err)
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, persistErr("iterate snapshots", rows.Err())
	}
	return out, nil
}

// Save swaps the table contents in a single transaction.
func (s *PostgresStore) Save(ctx context.Context, tbl snapshot.Table) error {
	if s == nil || s.Pool == nil {
		return persistErr("save", fmt.Errorf("nil pool"))
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return persistErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM yt.live_snapshots`); err != nil {
		return persistErr("clear snapshots", err)
	}

	cols := append([]string{"seq"}, snapshot.Columns...)
	n, err := tx.CopyFrom(ctx, snapshotTable, cols, pgx.CopyFromSlice(len(tbl), func(i int) ([]any, error) {
		r := tbl[i]
		return []any{
			int64(i + 1),
			r.ChannelTitle, r.LivestreamTitle, r.LiveID, r.CreatedAt, r.CurrentDate,
			r.ConcurrentViewersCount, r.LikeCount, r.ViewCount, r.TopicCategories,
			r.ThumbnailMaxresURL, r.Description,
		}, nil
	}))
	if err != nil {
		return persistErr("copy snapshots", err)
	}
	if int(n) != len(tbl) {
		return persistErr("copy snapshots", fmt.Errorf("copied %d of %d rows", n, len(tbl)))
	}

	if err := tx.Commit(ctx); err != nil {
		return persistErr("commit", err)
	}
	return nil
}
