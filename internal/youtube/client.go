package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

const DefaultBaseURL = "https://youtube.googleapis.com/youtube/v3"

// LiveParts are the videos.list parts requested for every monitored broadcast.
var LiveParts = []string{"liveStreamingDetails", "snippet", "statistics", "topicDetails"}

var (
	ErrMissingCredential = errors.New("missing YOUTUBE_API_KEY")
	ErrFetch             = errors.New("youtube fetch failed")
)

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.BaseURL = strings.TrimRight(base, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// New builds a client with no transport-level timeout; requests are bounded by
// the context passed to FetchLiveVideo. WithHTTPClient installs one.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	c := &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchLiveVideo runs videos.list for a single id and returns the decoded document.
// Structural checks are left to the caller.
func (c *Client) FetchLiveVideo(ctx context.Context, id string) (*VideoListResponse, error) {
	u, err := url.Parse(c.BaseURL + "/videos")
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrFetch, err)
	}
	q := u.Query()
	q.Set("part", strings.Join(LiveParts, ","))
	q.Set("id", id)
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()

	var resp VideoListResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("videos.list id=%s: %w", id, err)
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return fmt.Errorf("%w: http request: %v", ErrFetch, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: youtube api http %d: %s", ErrFetch, res.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode json: %v", ErrFetch, err)
	}
	return nil
}
