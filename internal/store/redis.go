package store

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
)

const (
	LatestKey = "livesnap:latest"
	LatestTTL = 7 * 24 * time.Hour
)

// RedisMirror keeps the most recent row per live id in one hash, for readers
// that want current numbers without opening the workbook.
type RedisMirror struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

// DialRedis opens a client for REDIS_URL. A non-empty password replaces the
// one in the URL. The connection is checked before returning.
func DialRedis(ctx context.Context, redisURL, password string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("missing REDIS_URL")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if password != "" {
		opt.Password = password
	}

	rdb := redis.NewClient(opt)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}
	return rdb, nil
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{Client: client, Key: LatestKey, TTL: LatestTTL}
}

// Publish overwrites the hash field for each row's live id. Rows without an id are skipped.
func (m *RedisMirror) Publish(ctx context.Context, rows []snapshot.Row) error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("nil redis client")
	}
	if len(rows) == 0 {
		return nil
	}
	key := m.key()

	pipe := m.Client.Pipeline()
	for _, r := range rows {
		if r.LiveID == nil || *r.LiveID == "" {
			continue
		}
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", *r.LiveID, err)
		}
		// Later rows in the same pipeline win, so duplicates keep the newest.
		pipe.HSet(ctx, key, *r.LiveID, string(b))
	}
	if ttl := m.ttl(); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec %s: %w", key, err)
	}
	return nil
}

// Latest returns the mirrored rows keyed by live id.
func (m *RedisMirror) Latest(ctx context.Context) (map[string]snapshot.Row, error) {
	if m == nil || m.Client == nil {
		return nil, fmt.Errorf("nil redis client")
	}
	key := m.key()
	raw, err := m.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", key, err)
	}
	out := make(map[string]snapshot.Row, len(raw))
	for id, v := range raw {
		var r snapshot.Row
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s: %w", id, err)
		}
		out[id] = r
	}
	return out, nil
}

func (m *RedisMirror) key() string {
	if m.Key == "" {
		return LatestKey
	}
	return m.Key
}

func (m *RedisMirror) ttl() time.Duration {
	if m.TTL == 0 {
		return LatestTTL
	}
	return m.TTL
}
