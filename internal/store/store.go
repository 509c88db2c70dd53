package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
)

var ErrPersistence = errors.New("snapshot persistence failed")

// Store holds the full snapshot table. Save replaces whatever was there.
type Store interface {
	Load(ctx context.Context) (snapshot.Table, error)
	Save(ctx context.Context, tbl snapshot.Table) error
}

// Initializer is implemented by stores that can create an empty table on first run.
type Initializer interface {
	Init(ctx context.Context) error
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// currentDateLayouts are tried in order when reading current_date back.
// The last two cover workbooks written without a zone.
var currentDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseCurrentDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range currentDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func formatCurrentDate(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
