package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

func testConfig() domain.ConnectorConfig {
	return domain.ConnectorConfig{
		Credentials: map[string]string{CredentialAPIKey: "test-key"},
	}
}

// newTestConnector points the generated client at an httptest server.
// The service has to be rebuilt after the endpoint override because
// New wires the production endpoint in.
func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conn, err := New(testConfig())
	require.NoError(t, err)
	conn.endpoint = srv.URL + "/"
	svc, err := conn.newService(conn.cfg)
	require.NoError(t, err)
	conn.svc = svc
	return conn
}

const searchBody = `{
	"kind": "youtube#searchListResponse",
	"nextPageToken": "CAUQAA",
	"pageInfo": {"totalResults": 2, "resultsPerPage": 25},
	"items": [
		{
			"id": {"kind": "youtube#video", "videoId": "vid-1"},
			"snippet": {
				"publishedAt": "2026-03-14T10:00:00Z",
				"channelId": "chan-1",
				"channelTitle": "Growth Channel",
				"title": "Lead gen walkthrough",
				"description": "How we fill the pipeline.",
				"thumbnails": {"high": {"url": "https://i.ytimg.com/vi/vid-1/hq.jpg"}}
			}
		},
		{
			"id": {"kind": "youtube#video", "videoId": "vid-2"}
		}
	]
}`

const videosBody = `{
	"kind": "youtube#videoListResponse",
	"items": [
		{
			"id": "vid-1",
			"statistics": {"viewCount": "5000", "likeCount": "120", "commentCount": "34"}
		}
	]
}`

func searchHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/youtube/v3/search":
			fmt.Fprint(w, searchBody)
		case r.URL.Path == "/youtube/v3/videos":
			fmt.Fprint(w, videosBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(domain.ConnectorConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetchSignalsMapsVideos(t *testing.T) {
	var searchQuery string
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/youtube/v3/search" {
			searchQuery = r.URL.Query().Get("q")
			assert.Equal(t, "video", r.URL.Query().Get("type"))
			assert.Equal(t, "date", r.URL.Query().Get("order"))
		}
		searchHandler(t)(w, r)
	})

	res, err := conn.FetchSignals(context.Background(),
		domain.FetchOptions{Query: "lead generation", MaxResults: 25})
	require.NoError(t, err)

	assert.Equal(t, "lead generation", searchQuery)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed, "hit without snippet is a mapping failure")
	assert.Equal(t, 2, res.TotalFound)
	assert.Equal(t, "CAUQAA", res.NextPageToken)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "vid-2", res.Errors[0].ItemID)

	signal := res.Signals[0]
	assert.Equal(t, domain.SourceYouTube, signal.Source)
	assert.Equal(t, "vid-1", signal.PlatformID)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid-1", signal.OriginalURL)
	assert.Equal(t, "Lead gen walkthrough\n\nHow we fill the pipeline.", signal.ContentText)
	assert.Equal(t, "Growth Channel", signal.Author.DisplayName)
	assert.Equal(t, []string{"https://i.ytimg.com/vi/vid-1/hq.jpg"}, signal.MediaURLs)
	assert.Equal(t, signal.DedupID(), signal.ID)

	assert.Equal(t, int64(5000), signal.Engagement.Views)
	assert.Equal(t, int64(120), signal.Engagement.Likes)
	assert.Equal(t, int64(34), signal.Engagement.Comments)
}

func TestFetchSignalsSurvivesStatisticsFailure(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/youtube/v3/videos" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"backend"}}`)
			return
		}
		fmt.Fprint(w, searchBody)
	})

	res, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	require.NoError(t, err)
	require.Len(t, res.Signals, 1)
	assert.Zero(t, res.Signals[0].Engagement.Views)
}

func TestFetchSignalsClampsToCeiling(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/youtube/v3/search" {
			assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
		}
		searchHandler(t)(w, r)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 500})
	require.NoError(t, err)
}

func TestFetchSignalsValidatesOptions(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid options")
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrValidation, se.Kind)
}

func TestFetchSignalsQuotaExceeded(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"quota exhausted",
			"errors":[{"domain":"youtube.quota","reason":"quotaExceeded"}]}}`)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrRateLimit, se.Kind, "quota errors are rate limits, not auth failures")
	assert.True(t, se.Retryable)
}

func TestFetchSignalsBadAPIKey(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid",
			"errors":[{"domain":"global","reason":"forbidden"}]}}`)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrAuth, se.Kind)
}

func TestHealthCheckUsesVideoCategories(t *testing.T) {
	var path string
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `{"kind":"youtube#videoCategoryListResponse","items":[]}`)
	})

	health := conn.HealthCheck(context.Background())
	assert.True(t, health.IsHealthy)
	assert.Equal(t, "/youtube/v3/videoCategories", path)
	assert.False(t, health.LastSuccessfulCheck.IsZero())
}

func TestHealthCheckReportsFailure(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"unauthorized"}}`)
	})

	health := conn.HealthCheck(context.Background())
	assert.False(t, health.IsHealthy)
	assert.Contains(t, health.Message, "401")
}

func TestUpdateConfigRejectsMissingKey(t *testing.T) {
	conn, err := New(testConfig())
	require.NoError(t, err)

	err = conn.UpdateConfig(domain.ConnectorConfig{
		Credentials: map[string]string{CredentialAPIKey: ""},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClosedConnector(t *testing.T) {
	conn, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)

	health := conn.HealthCheck(context.Background())
	assert.False(t, health.IsHealthy)
	assert.ErrorIs(t, conn.Close(), domain.ErrConnectorClosed)
}
