package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKey(t *testing.T) {
	c, err := New("")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestNew_Options(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c, err := New("k", WithBaseURL("http://example.test/v3/"), WithHTTPClient(hc))
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/v3", c.BaseURL)
	assert.Same(t, hc, c.HTTPClient)
}

func TestNew_NoHiddenTimeout(t *testing.T) {
	c, err := New("k")
	require.NoError(t, err)
	require.NotNil(t, c.HTTPClient)
	assert.Zero(t, c.HTTPClient.Timeout)
}

func TestFetchLiveVideo_RequestShape(t *testing.T) {
	var gotPath, gotPart, gotID, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPart = r.URL.Query().Get("part")
		gotID = r.URL.Query().Get("id")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"abc","snippet":{"title":"t","thumbnails":{"maxres":{"url":"u"}}},"statistics":{"viewCount":"5"},"topicDetails":{},"liveStreamingDetails":{"concurrentViewers":"7"}}]}`))
	}))
	defer srv.Close()

	c, err := New("secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	resp, err := c.FetchLiveVideo(context.Background(), "-gsnysgeWP4")
	require.NoError(t, err)

	assert.Equal(t, "/videos", gotPath)
	assert.Equal(t, "liveStreamingDetails,snippet,statistics,topicDetails", gotPart)
	assert.Equal(t, "-gsnysgeWP4", gotID)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	require.NotNil(t, item.ID)
	assert.Equal(t, "abc", *item.ID)
	require.NotNil(t, item.Snippet)
	require.NotNil(t, item.Snippet.Thumbnails)
	require.NotNil(t, item.Snippet.Thumbnails.Maxres)
	assert.Nil(t, item.Snippet.Thumbnails.High)
	require.NotNil(t, item.LiveStreamingDetails)
	assert.Equal(t, "7", *item.LiveStreamingDetails.ConcurrentViewers)
	require.NotNil(t, item.TopicDetails)
	assert.Empty(t, item.TopicDetails.TopicCategories)
}

func TestFetchLiveVideo_Non2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c, err := New("bad", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.FetchLiveVideo(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "http 400")
}

func TestFetchLiveVideo_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.FetchLiveVideo(context.Background(), "x")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchLiveVideo_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New("very-secret-key", WithBaseURL(base))
	require.NoError(t, err)

	_, err = c.FetchLiveVideo(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.False(t, strings.Contains(err.Error(), "very-secret-key"))
}

func TestFetchLiveVideo_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchLiveVideo(ctx, "x")
	assert.ErrorIs(t, err, ErrFetch)
}
