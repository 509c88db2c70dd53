package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
)

func newMirror(t *testing.T) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisMirror(rdb), mr
}

func TestRedisMirror_PublishKeepsLatestPerID(t *testing.T) {
	ctx := context.Background()
	m, mr := newMirror(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleRow("-gsnysgeWP4", t0)
	newer := sampleRow("-gsnysgeWP4", t0.Add(time.Minute))
	newer.ConcurrentViewersCount = snapshot.StringPtr("99")
	other := sampleRow("iYst4wufCgc", t0)

	require.NoError(t, m.Publish(ctx, []snapshot.Row{older, other, newer}))

	got, err := m.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "99", snapshot.Deref(got["-gsnysgeWP4"].ConcurrentViewersCount))
	assert.True(t, newer.CurrentDate.Equal(got["-gsnysgeWP4"].CurrentDate))
	assert.Equal(t, "Lofi Girl", snapshot.Deref(got["iYst4wufCgc"].ChannelTitle))

	assert.Equal(t, LatestTTL, mr.TTL(LatestKey))
}

func TestRedisMirror_SkipsRowsWithoutID(t *testing.T) {
	ctx := context.Background()
	m, mr := newMirror(t)

	require.NoError(t, m.Publish(ctx, []snapshot.Row{{CurrentDate: time.Now()}}))
	assert.False(t, mr.Exists(LatestKey))

	require.NoError(t, m.Publish(ctx, nil))
}

func TestRedisMirror_NilClient(t *testing.T) {
	var m *RedisMirror
	assert.Error(t, m.Publish(context.Background(), []snapshot.Row{{}}))
	_, err := m.Latest(context.Background())
	assert.Error(t, err)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	defer func() { _ = rdb.Close() }()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestDialRedis_PasswordOverridesURL(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("right")

	_, err := DialRedis(context.Background(), "redis://:wrong@"+mr.Addr(), "")
	assert.Error(t, err)

	rdb, err := DialRedis(context.Background(), "redis://:wrong@"+mr.Addr(), "right")
	require.NoError(t, err)
	_ = rdb.Close()
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "", "")
	assert.Error(t, err)

	_, err = DialRedis(context.Background(), "http://nope", "")
	assert.Error(t, err)
}
