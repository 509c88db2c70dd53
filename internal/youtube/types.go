package youtube

// VideoListResponse is the subset of a videos.list response the collector reads.
// Sub-sections are pointers so a missing section can be told apart from an empty one.
type VideoListResponse struct {
	Items []VideoItem `json:"items"`
}

type VideoItem struct {
	ID                   *string               `json:"id"`
	Snippet              *Snippet              `json:"snippet"`
	Statistics           *Statistics           `json:"statistics"`
	TopicDetails         *TopicDetails         `json:"topicDetails"`
	LiveStreamingDetails *LiveStreamingDetails `json:"liveStreamingDetails"`
}

type Snippet struct {
	PublishedAt  *string     `json:"publishedAt"`
	ChannelID    *string     `json:"channelId"`
	ChannelTitle *string     `json:"channelTitle"`
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Thumbnails   *Thumbnails `json:"thumbnails"`
}

type Thumbnails struct {
	Default  *Thumbnail `json:"default"`
	Medium   *Thumbnail `json:"medium"`
	High     *Thumbnail `json:"high"`
	Standard *Thumbnail `json:"standard"`
	Maxres   *Thumbnail `json:"maxres"`
}

type Thumbnail struct {
	URL    *string `json:"url"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

type Statistics struct {
	ViewCount    *string `json:"viewCount"`
	LikeCount    *string `json:"likeCount"`
	CommentCount *string `json:"commentCount"`
}

type TopicDetails struct {
	TopicCategories []string `json:"topicCategories"`
}

type LiveStreamingDetails struct {
	ActualStartTime    *string `json:"actualStartTime"`
	ScheduledStartTime *string `json:"scheduledStartTime"`
	ConcurrentViewers  *string `json:"concurrentViewers"`
	ActiveLiveChatID   *string `json:"activeLiveChatId"`
}
