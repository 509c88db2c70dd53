package snapshot

import "time"

// Columns is the persisted header, in order.
var Columns = []string{
	"channel_title",
	"livestream_title",
	"live_id",
	"created_at",
	"current_date",
	"concurrent_viewers_count",
	"like_count",
	"view_count",
	"topic_categories",
	"thumbnail_maxres_url",
	"description",
}

// Row is one observation of one broadcast at one point in time.
type Row struct {
	ChannelTitle           *string   `json:"channel_title"`
	LivestreamTitle        *string   `json:"livestream_title"`
	LiveID                 *string   `json:"live_id"`
	CreatedAt              *string   `json:"created_at"`
	CurrentDate            time.Time `json:"current_date"`
	ConcurrentViewersCount *string   `json:"concurrent_viewers_count"`
	LikeCount              *string   `json:"like_count"`
	ViewCount              *string   `json:"view_count"`
	TopicCategories        string    `json:"topic_categories"`
	ThumbnailMaxresURL     *string   `json:"thumbnail_maxres_url"`
	Description            *string   `json:"description"`
}

// Table is an ordered, append-only run of rows. There is no key; the same
// live id shows up once per pass.
type Table []Row

func (t Table) Append(rows ...Row) Table {
	return append(t, rows...)
}

// Clone returns a copy that does not share the backing array.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

func StringPtr(s string) *string {
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
