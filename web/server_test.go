package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"product-advisor/agentclient"
	"product-advisor/config"
	"product-advisor/knowledgebase"
	"product-advisor/web/middleware"
	"product-advisor/web/services"
	"product-advisor/web/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAgent struct {
	result agentclient.Result
}

func (s *stubAgent) Send(ctx context.Context, message, agentID string, opts agentclient.Options) agentclient.Result {
	return s.result
}

type stubKB struct{}

func (stubKB) ListDocuments(ctx context.Context, kbID string) knowledgebase.ListResult {
	return knowledgebase.ListResult{Success: true, Documents: []knowledgebase.Document{{FileName: "catalog.pdf", FileType: "pdf"}}}
}

func (stubKB) Upload(ctx context.Context, kbID string, up knowledgebase.Upload) knowledgebase.Result {
	return knowledgebase.Result{Success: true}
}

func (stubKB) Delete(ctx context.Context, kbID string, fileNames []string) knowledgebase.Result {
	return knowledgebase.Result{Success: true}
}

const testSession = "session_testsession00001"

func newTestServer(t *testing.T, agent *stubAgent) (*Server, *services.TranscriptStore) {
	t.Helper()
	cfg := &config.Config{
		AgentID:                 "agent-1",
		AgentName:               "Product Recommendation Agent",
		MaxSessions:             10,
		MaxDecodeDepth:          4,
		RateLimitMessagesPerMin: 60,
		RateLimitFilesPerHour:   10,
		RateLimitBurstSize:      10,
		MaxUploadBytes:          1 << 20,
		CleanupInterval:         time.Hour,
		SessionRetentionAge:     time.Hour,
		EmailSentResetSeconds:   5 * time.Second,
		EmailErrorResetSeconds:  3 * time.Second,
		Theme:                   config.DefaultTheme,
	}
	store, err := services.NewTranscriptStore(cfg.MaxSessions, zap.NewNop())
	require.NoError(t, err)
	chat := services.NewChatService(agent, store, services.ChatServiceConfig{
		AgentID:         cfg.AgentID,
		AgentName:       cfg.AgentName,
		MaxDecodeDepth:  cfg.MaxDecodeDepth,
		EmailSentReset:  cfg.EmailSentResetSeconds,
		EmailErrorReset: cfg.EmailErrorResetSeconds,
	}, zap.NewNop())
	kb := services.NewKnowledgeService(stubKB{}, "kb-1", cfg.MaxUploadBytes, zap.NewNop())

	srv := NewServer(chat, kb, zap.NewNop(), cfg)
	t.Cleanup(srv.Stop)
	return srv, store
}

func do(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: testSession})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func form(values map[string]string) string {
	v := url.Values{}
	for k, val := range values {
		v.Set(k, val)
	}
	return v.Encode()
}

const formType = "application/x-www-form-urlencoded"

func TestIndexRendersWelcomeAndSample(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	w := do(t, srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to Product Advisor")
	assert.Contains(t, w.Body.String(), "--primary:160 85% 35%;")

	w = do(t, srv, http.MethodGet, "/?sample=1", "", "")
	assert.Contains(t, w.Body.String(), "Microsoft Teams")
	assert.NotContains(t, w.Body.String(), "Welcome to Product Advisor")
}

func TestChatTurn(t *testing.T) {
	agent := &stubAgent{result: agentclient.Result{Success: true, Response: `{"result":{"summary":"Picks","data":{"greeting":"Hello there"}}}`}}
	srv, store := newTestServer(t, agent)

	w := do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "best sellers?"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "best sellers?")
	assert.Contains(t, w.Body.String(), "Hello there")
	assert.Contains(t, w.Body.String(), "Picks")
	assert.Empty(t, w.Header().Get("HX-Trigger"))
	assert.Equal(t, 2, store.Len(testSession))
}

func TestChatTurnAgentFailure(t *testing.T) {
	srv, store := newTestServer(t, &stubAgent{result: agentclient.Result{}})

	w := do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "hello"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "agent-error", w.Header().Get("HX-Trigger"))
	assert.Contains(t, w.Body.String(), "Failed to get response from agent.")
	assert.Equal(t, 1, store.Len(testSession))
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	w := do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "   "}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message cannot be empty.")
}

func TestChatRejectsConcurrentSend(t *testing.T) {
	srv, store := newTestServer(t, &stubAgent{})
	require.NoError(t, store.Begin(testSession))

	w := do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "hello"}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "A request is already in progress.")
}

func TestChatResetIssuesNewSession(t *testing.T) {
	srv, store := newTestServer(t, &stubAgent{result: agentclient.Result{Success: true, Response: "hi"}})
	do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "hello"}))
	require.Equal(t, 2, store.Len(testSession))

	w := do(t, srv, http.MethodPost, "/chat/reset", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.Len(testSession))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEqual(t, testSession, body["session_id"])
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, body["session_id"], w.Result().Cookies()[0].Value)
}

func TestEmailSummaryRoute(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{result: agentclient.Result{Success: true, Response: "Summary sent!"}})

	w := do(t, srv, http.MethodPost, "/chat/email-summary", formType, form(map[string]string{"email": "not-an-email"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a valid email address.")
	assert.Equal(t, "email-error", w.Header().Get("HX-Trigger"))

	do(t, srv, http.MethodPost, "/chat", formType, form(map[string]string{"message": "hello"}))
	w = do(t, srv, http.MethodPost, "/chat/email-summary", formType, form(map[string]string{"email": "jane@example.com"}))
	assert.Contains(t, w.Body.String(), "Conversation summary has been sent to your email.")
	assert.Contains(t, w.Body.String(), `data-reset-after="5000"`)
	assert.Contains(t, w.Body.String(), "Summary sent!")
}

func TestKnowledgeBaseRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	w := do(t, srv, http.MethodGet, "/kb", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Documents (1)")

	w = do(t, srv, http.MethodPost, "/kb/documents/delete", formType, form(map[string]string{"file_name": "catalog.pdf"}))
	assert.Contains(t, w.Body.String(), "&#34;catalog.pdf&#34; deleted.")

	w = do(t, srv, http.MethodPost, "/kb/documents", formType, "")
	assert.Contains(t, w.Body.String(), "Please choose a file to upload.")

	w = do(t, srv, http.MethodGet, "/api/kb/documents", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list knowledgebase.ListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Equal(t, "catalog.pdf", list.Documents[0].FileName)
}

func TestAPIChat(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{result: agentclient.Result{Success: true, Response: map[string]any{"message": "plain reply"}}})

	w := do(t, srv, http.MethodPost, "/api/chat", "application/json", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var turn services.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, "hello", turn.User.Content)
	require.NotNil(t, turn.Agent)
	assert.Equal(t, types.RoleAgent, turn.Agent.Role)
	assert.Equal(t, "plain reply", turn.Agent.Parsed.RawText)
}

func TestAPINormalize(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	tests := []struct {
		name       string
		body       string
		shape      string
		structured bool
		rawText    string
	}{
		{"wrapped", `{"result":{"data":{"greeting":"Hi"}}}`, "wrapped", true, ""},
		{"plain text", `not json at all`, "text", false, "not json at all"},
		{"empty", ``, "absent", false, "No response received."},
		{"plain field", `{"text":"hello"}`, "plain_field", false, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/normalize", "application/json", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.shape, got["shape"])
			assert.Equal(t, tt.structured, got["structured"])
			if tt.rawText != "" {
				assert.Equal(t, tt.rawText, got["rawText"])
			}
		})
	}
}

func TestAPICORS(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, &stubAgent{})

	w := do(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "advisor_active_sessions")
}

func TestCleanupStaleSessions(t *testing.T) {
	store, err := services.NewTranscriptStore(10, zap.NewNop())
	require.NoError(t, err)
	store.Open("s1")
	store.Append("s1", types.ChatMessage{ID: "1"})

	cs := NewCleanupService(store, zap.NewNop())
	assert.Equal(t, 0, cs.CleanupStaleSessions(time.Hour))
	assert.Equal(t, 1, cs.CleanupStaleSessions(-time.Second))
	assert.Equal(t, 0, store.Sessions())
}

func TestCleanupRunStopsOnCancel(t *testing.T) {
	store, err := services.NewTranscriptStore(10, zap.NewNop())
	require.NoError(t, err)
	cs := NewCleanupService(store, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cs.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
