package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"product-advisor/agentclient"
	apperrors "product-advisor/errors"
	"product-advisor/knowledgebase"
	"product-advisor/web/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAgent struct {
	mu       sync.Mutex
	results  []agentclient.Result
	messages []string
	block    chan struct{}
}

func (f *fakeAgent) Send(ctx context.Context, message, agentID string, opts agentclient.Options) agentclient.Result {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	if len(f.results) == 0 {
		return agentclient.Result{Success: true, Response: "ok"}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

func newTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStore(10, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestChat(t *testing.T, agent AgentSender) (*ChatService, *TranscriptStore) {
	t.Helper()
	store := newTestStore(t)
	cs := NewChatService(agent, store, ChatServiceConfig{
		AgentID:         "agent-1",
		AgentName:       "Product Recommendation Agent",
		MaxDecodeDepth:  4,
		EmailSentReset:  5 * time.Second,
		EmailErrorReset: 3 * time.Second,
	}, zap.NewNop())
	return cs, store
}

func TestTranscriptStoreAppendAndReset(t *testing.T) {
	store := newTestStore(t)
	store.Open("s1")
	store.Append("s1", types.ChatMessage{ID: "1", Role: types.RoleUser, Content: "hi"})
	store.Append("s1", types.ChatMessage{ID: "2", Role: types.RoleAgent})

	msgs := store.Messages("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, 2, store.Len("s1"))

	// Returned slice is a copy.
	msgs[0].Content = "changed"
	assert.Equal(t, "hi", store.Messages("s1")[0].Content)

	store.Reset("s1")
	assert.Empty(t, store.Messages("s1"))
	assert.Equal(t, 0, store.Sessions())
}

func TestTranscriptStoreAppendAfterResetIsDropped(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Begin("s1"))
	store.Append("s1", types.ChatMessage{ID: "1", Role: types.RoleUser})

	store.Reset("s1")
	store.Append("s1", types.ChatMessage{ID: "2", Role: types.RoleAgent})
	store.End("s1")

	assert.Equal(t, 0, store.Len("s1"))
	assert.Equal(t, 0, store.Sessions())
}

func TestResetDuringSendDropsReply(t *testing.T) {
	agent := &fakeAgent{
		block: make(chan struct{}),
		results: []agentclient.Result{{
			Success:  true,
			Response: map[string]any{"result": map[string]any{"greeting": "Late"}},
		}},
	}
	cs, store := newTestChat(t, agent)

	done := make(chan TurnResult, 1)
	go func() {
		res, err := cs.SendMessage(context.Background(), "s1", "hello")
		assert.NoError(t, err)
		done <- res
	}()

	require.Eventually(t, func() bool { return cs.Busy("s1") }, time.Second, time.Millisecond)
	cs.Reset("s1")
	close(agent.block)
	<-done

	assert.Empty(t, store.Messages("s1"))
	assert.Equal(t, 0, store.Sessions())
}

func TestTranscriptStoreBeginIsExclusive(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Begin("s1"))
	assert.True(t, store.Busy("s1"))
	assert.True(t, apperrors.IsBusy(store.Begin("s1")))
	require.NoError(t, store.Begin("s2"))

	store.End("s1")
	assert.False(t, store.Busy("s1"))
	assert.NoError(t, store.Begin("s1"))
}

func TestTranscriptStoreEvictsLeastRecent(t *testing.T) {
	store, err := NewTranscriptStore(2, zap.NewNop())
	require.NoError(t, err)
	store.Open("a")
	store.Append("a", types.ChatMessage{ID: "1"})
	store.Open("b")
	store.Append("b", types.ChatMessage{ID: "2"})
	store.Append("a", types.ChatMessage{ID: "3"})
	store.Open("c")
	store.Append("c", types.ChatMessage{ID: "4"})

	assert.Equal(t, 2, store.Len("a"))
	assert.Empty(t, store.Messages("b"))
	assert.Equal(t, 1, store.Len("c"))
}

func TestTranscriptStoreSweep(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Open("old")
	store.Append("old", types.ChatMessage{ID: "1"})
	require.NoError(t, store.Begin("busy"))

	now = now.Add(2 * time.Hour)
	store.Open("fresh")
	store.Append("fresh", types.ChatMessage{ID: "2"})

	removed := store.Sweep(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Empty(t, store.Messages("old"))
	assert.Equal(t, 1, store.Len("fresh"))
	assert.True(t, store.Busy("busy"))
}

func TestSendMessageAppendsBothEntries(t *testing.T) {
	agent := &fakeAgent{results: []agentclient.Result{{
		Success:  true,
		Response: map[string]any{"result": map[string]any{"data": map[string]any{"greeting": "Hello!"}}},
	}}}
	cs, store := newTestChat(t, agent)

	res, err := cs.SendMessage(context.Background(), "s1", "  best sellers?  ")
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.Equal(t, "best sellers?", res.User.Content)
	require.NotNil(t, res.Agent)
	require.NotNil(t, res.Agent.Parsed)
	assert.Equal(t, "Hello!", res.Agent.Parsed.Data.Greeting)
	assert.Equal(t, "Product Recommendation Agent", res.Agent.Metadata.AgentName)
	assert.NotEmpty(t, res.Agent.Metadata.Timestamp)

	assert.Equal(t, []string{"best sellers?"}, agent.messages)
	msgs := store.Messages("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.Equal(t, types.RoleAgent, msgs[1].Role)
	assert.False(t, cs.Busy("s1"))
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	agent := &fakeAgent{}
	cs, store := newTestChat(t, agent)

	_, err := cs.SendMessage(context.Background(), "s1", "   ")
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Empty(t, agent.messages)
	assert.Empty(t, store.Messages("s1"))
}

func TestSendMessageAgentFailure(t *testing.T) {
	tests := []struct {
		name   string
		result agentclient.Result
		want   string
	}{
		{"agent error text", agentclient.Result{Error: "quota exceeded"}, "quota exceeded"},
		{"fallback text", agentclient.Result{}, "Failed to get response from agent."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, store := newTestChat(t, &fakeAgent{results: []agentclient.Result{tt.result}})

			res, err := cs.SendMessage(context.Background(), "s1", "hello")
			require.NoError(t, err)
			assert.Nil(t, res.Agent)
			assert.Equal(t, tt.want, res.Error)
			// The user entry stays in the transcript.
			assert.Equal(t, 1, store.Len("s1"))
		})
	}
}

func TestSendMessageRejectsConcurrentCall(t *testing.T) {
	agent := &fakeAgent{block: make(chan struct{})}
	cs, _ := newTestChat(t, agent)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cs.SendMessage(context.Background(), "s1", "first")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return cs.Busy("s1") }, time.Second, time.Millisecond)
	_, err := cs.SendMessage(context.Background(), "s1", "second")
	assert.True(t, apperrors.IsBusy(err))

	close(agent.block)
	<-done
	assert.Equal(t, []string{"first"}, agent.messages)
}

func TestEmailSummary(t *testing.T) {
	agent := &fakeAgent{results: []agentclient.Result{
		{Success: true, Response: "hi"},
		{Success: true, Response: map[string]any{"result": map[string]any{"data": map[string]any{"summary_sent": true, "email_recipient": "jane@example.com"}}}},
	}}
	cs, store := newTestChat(t, agent)
	_, err := cs.SendMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)

	result, msg := cs.EmailSummary(context.Background(), "s1", "  jane@example.com ")
	assert.Equal(t, types.EmailSent, result.Status)
	assert.Equal(t, "Conversation summary has been sent to your email.", result.Message)
	assert.Equal(t, 5*time.Second, result.ResetAfter)
	require.NotNil(t, msg)
	assert.Equal(t, "Conversation summary has been sent to jane@example.com.", msg.Parsed.Data.EmailMessage())

	assert.Equal(t, "Please send a complete summary of our entire conversation to jane@example.com. Include all recommendations, key points, and any comparisons we discussed.", agent.messages[1])
	// No user entry is added for the summary request.
	assert.Equal(t, 3, store.Len("s1"))
}

func TestEmailSummaryErrors(t *testing.T) {
	cs, _ := newTestChat(t, &fakeAgent{results: []agentclient.Result{{Success: true, Response: "hi"}, {Error: "boom"}}})

	result, msg := cs.EmailSummary(context.Background(), "s1", "jane@example.com")
	assert.Equal(t, types.EmailError, result.Status)
	assert.Equal(t, "Start a conversation before requesting a summary.", result.Message)
	assert.Nil(t, msg)

	_, err := cs.SendMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)

	result, _ = cs.EmailSummary(context.Background(), "s1", "jane@@example.com")
	assert.Equal(t, types.EmailError, result.Status)
	assert.Equal(t, "Please enter a valid email address.", result.Message)
	assert.Equal(t, 3*time.Second, result.ResetAfter)

	result, msg = cs.EmailSummary(context.Background(), "s1", "jane@example.com")
	assert.Equal(t, types.EmailError, result.Status)
	assert.Nil(t, msg)
}

func TestSampleMessages(t *testing.T) {
	msgs := SampleMessages("Advisor")
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	require.NotNil(t, msgs[1].Parsed)
	assert.Len(t, msgs[1].Parsed.Data.Recommendations, 3)
	assert.Equal(t, "Advisor", msgs[1].Metadata.AgentName)
	assert.Len(t, SuggestedPrompts, 4)
}

type fakeKB struct {
	list    knowledgebase.ListResult
	upload  knowledgebase.Result
	del     knowledgebase.Result
	uploads []string
	deleted []string
}

func (f *fakeKB) ListDocuments(ctx context.Context, kbID string) knowledgebase.ListResult {
	return f.list
}

func (f *fakeKB) Upload(ctx context.Context, kbID string, up knowledgebase.Upload) knowledgebase.Result {
	f.uploads = append(f.uploads, up.FileName)
	return f.upload
}

func (f *fakeKB) Delete(ctx context.Context, kbID string, fileNames []string) knowledgebase.Result {
	f.deleted = append(f.deleted, fileNames...)
	return f.del
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func TestKnowledgeUpload(t *testing.T) {
	kb := &fakeKB{upload: knowledgebase.Result{Success: true}}
	ks := NewKnowledgeService(kb, "kb-1", 1<<20, zap.NewNop())

	status := ks.Upload(context.Background(), fileHeader(t, "catalog.txt", []byte("Our catalog. It has products.")))
	assert.True(t, status.Success)
	assert.Equal(t, `"catalog.txt" uploaded and trained successfully.`, status.Message)
	assert.Equal(t, "Our catalog. It has products.", status.Detail)
	assert.Equal(t, []string{"catalog.txt"}, kb.uploads)
}

func TestUploadedMessage(t *testing.T) {
	tests := []struct {
		in   knowledgebase.Inspection
		want string
	}{
		{knowledgebase.Inspection{FileName: "x.pdf", Pages: 12}, `"x.pdf" uploaded and trained successfully (12 pages).`},
		{knowledgebase.Inspection{FileName: "x.pdf", Pages: 1}, `"x.pdf" uploaded and trained successfully (1 page).`},
		{knowledgebase.Inspection{FileName: "notes.docx"}, `"notes.docx" uploaded and trained successfully.`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, uploadedMessage(tt.in))
		})
	}
}

func TestKnowledgeUploadFailures(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  []byte
		result   knowledgebase.Result
		wantMsg  string
		uploaded bool
	}{
		{"remote error", "catalog.txt", []byte("text"), knowledgebase.Result{Error: "training failed"}, "training failed", true},
		{"remote fallback", "catalog.txt", []byte("text"), knowledgebase.Result{}, "Upload failed.", true},
		{"unsupported type", "prices.xlsx", []byte("x"), knowledgebase.Result{}, "unsupported file type", false},
		{"unreadable pdf", "broken.pdf", []byte("nope"), knowledgebase.Result{}, "not a readable PDF", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := &fakeKB{upload: tt.result}
			ks := NewKnowledgeService(kb, "kb-1", 1<<20, zap.NewNop())

			status := ks.Upload(context.Background(), fileHeader(t, tt.file, tt.content))
			assert.False(t, status.Success)
			assert.Contains(t, status.Message, tt.wantMsg)
			assert.Equal(t, tt.uploaded, len(kb.uploads) == 1)
		})
	}
}

func TestKnowledgeUploadTooLarge(t *testing.T) {
	ks := NewKnowledgeService(&fakeKB{}, "kb-1", 4, zap.NewNop())
	_, err := ks.ValidateFile(fileHeader(t, "big.txt", []byte("0123456789")))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestKnowledgeDelete(t *testing.T) {
	kb := &fakeKB{del: knowledgebase.Result{Success: true}}
	ks := NewKnowledgeService(kb, "kb-1", 0, zap.NewNop())

	status := ks.Delete(context.Background(), "catalog.pdf")
	assert.Equal(t, types.PanelStatus{Success: true, Message: `"catalog.pdf" deleted.`}, status)

	kb.del = knowledgebase.Result{}
	status = ks.Delete(context.Background(), "catalog.pdf")
	assert.Equal(t, types.PanelStatus{Message: "Delete failed."}, status)
}

func TestKnowledgeDeleteNotFound(t *testing.T) {
	kb := &fakeKB{del: knowledgebase.Result{
		Error: "resource not found: gone",
		Err:   apperrors.WrapError(apperrors.ErrNotFound, "gone"),
	}}
	ks := NewKnowledgeService(kb, "kb-1", 0, zap.NewNop())

	status := ks.Delete(context.Background(), "old.pdf")
	assert.False(t, status.Success)
	assert.Equal(t, `"old.pdf" was not found in the knowledge base.`, status.Message)
}

func TestKnowledgeDocuments(t *testing.T) {
	kb := &fakeKB{list: knowledgebase.ListResult{Success: true, Documents: []knowledgebase.Document{{FileName: "a.pdf"}}}}
	ks := NewKnowledgeService(kb, "kb-1", 0, zap.NewNop())

	docs, err := ks.Documents(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	kb.list = knowledgebase.ListResult{Error: "down"}
	docs, err = ks.Documents(context.Background())
	assert.Error(t, err)
	assert.Empty(t, docs)
}
