package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luishacm/poc-youtube-data-livestream/internal/youtube"
)

var ErrMalformedResponse = errors.New("malformed videos.list response")

// Extract maps the first item of a videos.list document onto a Row stamped with now.
//
// Optional leaves come back nil. Missing items, a missing sub-section, or a
// snippet without a maxres thumbnail are ErrMalformedResponse.
func Extract(resp *youtube.VideoListResponse, now time.Time) (Row, error) {
	if resp == nil || len(resp.Items) == 0 {
		return Row{}, fmt.Errorf("%w: no items (no live broadcast or invalid id)", ErrMalformedResponse)
	}
	item := resp.Items[0]

	switch {
	case item.Snippet == nil:
		return Row{}, missingSection("snippet")
	case item.Statistics == nil:
		return Row{}, missingSection("statistics")
	case item.TopicDetails == nil:
		return Row{}, missingSection("topicDetails")
	case item.LiveStreamingDetails == nil:
		return Row{}, missingSection("liveStreamingDetails")
	}

	snip := item.Snippet
	if snip.Thumbnails == nil {
		return Row{}, missingSection("snippet.thumbnails")
	}
	if snip.Thumbnails.Maxres == nil {
		return Row{}, missingSection("snippet.thumbnails.maxres")
	}

	return Row{
		ChannelTitle:           snip.ChannelTitle,
		LivestreamTitle:        snip.Title,
		LiveID:                 item.ID,
		CreatedAt:              snip.PublishedAt,
		CurrentDate:            now,
		ConcurrentViewersCount: item.LiveStreamingDetails.ConcurrentViewers,
		LikeCount:              item.Statistics.LikeCount,
		ViewCount:              item.Statistics.ViewCount,
		TopicCategories:        strings.Join(item.TopicDetails.TopicCategories, ", "),
		ThumbnailMaxresURL:     snip.Thumbnails.Maxres.URL,
		Description:            snip.Description,
	}, nil
}

func missingSection(name string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, name)
}
