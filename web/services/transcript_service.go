package services

import (
	"sync"
	"time"

	apperrors "product-advisor/errors"
	"product-advisor/metrics"
	"product-advisor/web/types"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

type transcript struct {
	mu         sync.Mutex
	messages   []types.ChatMessage
	inFlight   bool
	lastActive time.Time
}

// TranscriptStore keeps the chat transcript of each session in memory.
// The least recently used session is evicted once MaxSessions is reached.
type TranscriptStore struct {
	cache  *lru.Cache
	mu     sync.Mutex // serializes get-or-create
	logger *zap.Logger
	now    func() time.Time
}

func NewTranscriptStore(maxSessions int, logger *zap.Logger) (*TranscriptStore, error) {
	ts := &TranscriptStore{logger: logger, now: time.Now}
	cache, err := lru.NewWithEvict(maxSessions, func(key, _ interface{}) {
		logger.Debug("Evicted session transcript", zap.Any("session_id", key))
	})
	if err != nil {
		return nil, err
	}
	ts.cache = cache
	return ts, nil
}

func (ts *TranscriptStore) get(sessionID string) *transcript {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if v, ok := ts.cache.Get(sessionID); ok {
		return v.(*transcript)
	}
	t := &transcript{lastActive: ts.now()}
	ts.cache.Add(sessionID, t)
	metrics.ActiveSessions.Set(float64(ts.cache.Len()))
	return t
}

// Messages returns a copy of the session transcript.
func (ts *TranscriptStore) Messages(sessionID string) []types.ChatMessage {
	v, ok := ts.cache.Peek(sessionID)
	if !ok {
		return nil
	}
	t := v.(*transcript)
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]types.ChatMessage(nil), t.messages...)
}

// Len returns the number of messages in the session transcript.
func (ts *TranscriptStore) Len(sessionID string) int {
	v, ok := ts.cache.Peek(sessionID)
	if !ok {
		return 0
	}
	t := v.(*transcript)
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Open creates the session if it is not held yet.
func (ts *TranscriptStore) Open(sessionID string) {
	ts.get(sessionID)
}

// Append adds entries to the end of the session transcript. It does nothing
// once the session is gone, so a reply arriving after Reset or Sweep is dropped.
func (ts *TranscriptStore) Append(sessionID string, msgs ...types.ChatMessage) {
	v, ok := ts.cache.Get(sessionID)
	if !ok {
		ts.logger.Debug("Dropped entries for a closed session", zap.String("session_id", sessionID))
		return
	}
	t := v.(*transcript)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msgs...)
	t.lastActive = ts.now()
}

// Begin marks an agent call as in flight for the session. It fails with
// ErrBusy while another call is still running.
func (ts *TranscriptStore) Begin(sessionID string) error {
	t := ts.get(sessionID)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight {
		return apperrors.ErrBusy
	}
	t.inFlight = true
	t.lastActive = ts.now()
	return nil
}

// End clears the in-flight mark set by Begin.
func (ts *TranscriptStore) End(sessionID string) {
	v, ok := ts.cache.Peek(sessionID)
	if !ok {
		return
	}
	t := v.(*transcript)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false
	t.lastActive = ts.now()
}

// Busy reports whether an agent call is running for the session.
func (ts *TranscriptStore) Busy(sessionID string) bool {
	v, ok := ts.cache.Peek(sessionID)
	if !ok {
		return false
	}
	t := v.(*transcript)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Reset forgets the session.
func (ts *TranscriptStore) Reset(sessionID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.cache.Remove(sessionID)
	metrics.ActiveSessions.Set(float64(ts.cache.Len()))
}

// Sessions returns the number of sessions held.
func (ts *TranscriptStore) Sessions() int {
	return ts.cache.Len()
}

// Sweep removes sessions idle for longer than maxAge and returns how many
// were removed. Sessions with a call in flight are kept.
func (ts *TranscriptStore) Sweep(maxAge time.Duration) int {
	cutoff := ts.now().Add(-maxAge)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	removed := 0
	for _, key := range ts.cache.Keys() {
		v, ok := ts.cache.Peek(key)
		if !ok {
			continue
		}
		t := v.(*transcript)
		t.mu.Lock()
		stale := !t.inFlight && t.lastActive.Before(cutoff)
		t.mu.Unlock()
		if stale {
			ts.cache.Remove(key)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(ts.cache.Len()))
	return removed
}
