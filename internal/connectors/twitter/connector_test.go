package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

func testConfig() domain.ConnectorConfig {
	return domain.ConnectorConfig{
		Credentials: map[string]string{CredentialBearerToken: "test-token"},
	}
}

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conn, err := New(testConfig())
	require.NoError(t, err)
	conn.client.baseURL = srv.URL
	return conn
}

const searchBody = `{
	"data": [
		{
			"id": "1001",
			"text": "lead gen is hard",
			"created_at": "2026-03-14T12:00:00Z",
			"author_id": "u1",
			"lang": "en",
			"public_metrics": {"retweet_count": 4, "reply_count": 2, "like_count": 10, "quote_count": 1, "impression_count": 500}
		},
		{
			"id": "1002",
			"text": "broken item",
			"author_id": "u1",
			"lang": "en"
		}
	],
	"includes": {
		"users": [
			{"id": "u1", "username": "acme", "name": "Acme Inc", "verified": true,
			 "public_metrics": {"followers_count": 1000, "following_count": 50}}
		]
	},
	"meta": {"result_count": 2}
}`

func TestNewRequiresBearerToken(t *testing.T) {
	_, err := New(domain.ConnectorConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetchSignalsMapsTweets(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "b2b saas", r.URL.Query().Get("query"))
		fmt.Fprint(w, searchBody)
	})

	res, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "b2b saas", MaxResults: 50})
	require.NoError(t, err)

	// Item 1002 has no created_at: a mapping failure, not an abort.
	require.Len(t, res.Signals, 1)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "1002", res.Errors[0].ItemID)
	assert.Equal(t, 2, res.TotalFound)

	signal := res.Signals[0]
	assert.Equal(t, domain.SourceTwitter, signal.Source)
	assert.Equal(t, "1001", signal.PlatformID)
	assert.Equal(t, "lead gen is hard", signal.ContentText)
	assert.Equal(t, "https://twitter.com/i/web/status/1001", signal.OriginalURL)
	assert.Equal(t, signal.DedupID(), signal.ID)
	assert.Equal(t, domain.StatusPending, signal.ProcessingStatus)

	assert.Equal(t, "@acme", signal.Author.Handle)
	assert.True(t, signal.Author.Verified)
	assert.Equal(t, int64(1000), signal.Author.Followers)
	assert.Greater(t, signal.Author.InfluenceScore, 0.0)

	// Shares fold retweets and quotes together.
	assert.Equal(t, int64(5), signal.Engagement.Shares)
	assert.Equal(t, int64(10), signal.Engagement.Likes)
	assert.Greater(t, signal.Engagement.EngagementRate, 0.0)
}

func TestFetchSignalsLanguageFilter(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	})

	res, err := conn.FetchSignals(context.Background(),
		domain.FetchOptions{Query: "q", MaxResults: 10, Language: "es"})
	require.NoError(t, err)

	// The en tweet is filtered, not counted as a failure.
	assert.Empty(t, res.Signals)
	assert.Equal(t, 1, res.Failed)
}

func TestFetchSignalsClampsMaxResults(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("max_results"))
		fmt.Fprint(w, `{"meta":{"result_count":0}}`)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 5000})
	require.NoError(t, err)
}

func TestFetchSignalsRejectsInvalidOptions(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: ""})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrValidation, se.Kind)
}

func TestFetchSignalsRateLimited(t *testing.T) {
	reset := time.Now().Add(90 * time.Second).Unix()
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", fmt.Sprint(reset))
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrRateLimit, se.Kind)
	assert.True(t, se.Retryable)
	assert.Greater(t, se.RetryAfter, time.Minute)
}

func TestFetchSignalsAuthFailure(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	se, ok := domain.AsSourceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrAuth, se.Kind)
	assert.False(t, se.Retryable)
}

func TestHealthCheck(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-remaining", "442")
		fmt.Fprint(w, `{"meta":{"result_count":0}}`)
	})

	health := conn.HealthCheck(context.Background())
	assert.True(t, health.IsHealthy)
	assert.Equal(t, domain.SourceTwitter, health.Source)
	assert.Equal(t, 442, health.RateLimitRemaining)
	assert.False(t, health.LastSuccessfulCheck.IsZero())
}

func TestHealthCheckUnhealthyOnAPIError(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	health := conn.HealthCheck(context.Background())
	assert.False(t, health.IsHealthy)
	assert.NotEmpty(t, health.Message)
}

func TestUpdateConfigRejectsInvalidMerge(t *testing.T) {
	conn, err := New(testConfig())
	require.NoError(t, err)

	err = conn.UpdateConfig(domain.ConnectorConfig{MaxResults: -1})
	assert.NoError(t, err, "merge ignores non-positive overrides")

	require.NoError(t, conn.UpdateConfig(domain.ConnectorConfig{MaxResults: 80}))
	conn.mu.Lock()
	assert.Equal(t, 80, conn.cfg.MaxResults)
	conn.mu.Unlock()
}

func TestClosedConnector(t *testing.T) {
	conn, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = conn.FetchSignals(context.Background(), domain.FetchOptions{Query: "q", MaxResults: 10})
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)
	assert.ErrorIs(t, conn.Close(), domain.ErrConnectorClosed)
	assert.ErrorIs(t, conn.UpdateConfig(domain.ConnectorConfig{}), domain.ErrConnectorClosed)
}
