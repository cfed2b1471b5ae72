package agentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"product-advisor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		AgentBaseURL:       baseURL,
		APIKey:             "secret",
		UserID:             "tester@local",
		AgentName:          "Product Recommendation Agent",
		RequestTimeout:     5 * time.Second,
		MaxRetries:         3,
		RetryDelaySeconds:  time.Millisecond,
		BackoffMaxSeconds:  5 * time.Millisecond,
		BackoffJitterRatio: 0.1,
	}
	c := New(cfg, zap.NewNop())
	c.wait = func(context.Context, time.Duration) error { return nil }
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func TestSendPostsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/inference/chat/", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"result":{"greeting":"Hi"}},"metadata":{"agent_name":"Advisor","timestamp":"2026-01-01T00:00:00Z"}}`))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "best sellers?", "agent-1", Options{SessionID: "session_abc"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, chatRequest{UserID: "tester@local", AgentID: "agent-1", SessionID: "session_abc", Message: "best sellers?"}, got)
	assert.Equal(t, map[string]any{"result": map[string]any{"greeting": "Hi"}}, res.Response)
	assert.Equal(t, "Advisor", res.Metadata.AgentName)
	assert.Equal(t, "2026-01-01T00:00:00Z", res.Metadata.Timestamp)
}

func TestSendWithoutResponseFieldReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"plain answer","count":3}`))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	require.True(t, res.Success)
	assert.Equal(t, map[string]any{"message": "plain answer", "count": json.Number("3")}, res.Response)
	assert.Equal(t, "Product Recommendation Agent", res.Metadata.AgentName)
	assert.Equal(t, "2026-01-02T03:04:05Z", res.Metadata.Timestamp)
}

func TestSendNonJSONBodyPassesThroughAsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("just some words"))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	require.True(t, res.Success)
	assert.Equal(t, "just some words", res.Response)
}

func TestSendRetriesServiceUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "ok", res.Response)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.Equal(t, unavailableMessage, res.Error)
	assert.NotContains(t, res.Error, srv.URL)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendWaitsOnlyBetweenAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	var waits []time.Duration
	c.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	res := c.Send(context.Background(), "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	require.Len(t, waits, 2, "three attempts need two pauses")
	for _, d := range waits {
		assert.LessOrEqual(t, d, 6*time.Millisecond)
	}
}

func TestSendStopsWaitingWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.cfg.RetryDelaySeconds = time.Minute
	c.cfg.BackoffMaxSeconds = time.Minute
	c.wait = sleepContext
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	res := c.Send(ctx, "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid API key"}`))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid API key", res.Error)
	assert.Nil(t, res.Response)
}

func TestSendErrorStatusWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>upstream stack trace</html>"))
	}))
	defer srv.Close()

	res := testClient(t, srv.URL).Send(context.Background(), "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.Equal(t, failedMessage, res.Error)
	assert.NotContains(t, res.Error, "stack trace")
}

func TestSendConnectionErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := testClient(t, url).Send(context.Background(), "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.Equal(t, unavailableMessage, res.Error)
	assert.NotContains(t, res.Error, url)
	assert.NotContains(t, res.Error, "127.0.0.1")
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	res := testClient(t, "http://127.0.0.1:0").Send(context.Background(), "   ", "agent-1", Options{})
	assert.False(t, res.Success)
	assert.Equal(t, emptyMessage, res.Error)
}

func TestSendCancelledContextIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"response":"late"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := testClient(t, srv.URL).Send(ctx, "hello", "agent-1", Options{})

	assert.False(t, res.Success)
	assert.EqualValues(t, 0, calls.Load())
}
