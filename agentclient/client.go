package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"product-advisor/advisor"
	"product-advisor/config"
	apperrors "product-advisor/errors"

	"go.uber.org/zap"
)

// Options carries the per-call settings of Send.
type Options struct {
	SessionID string
}

// Result is the outcome of one agent call. On success Response holds the
// decoded reply payload, ready for advisor.Normalize.
type Result struct {
	Success  bool
	Response any
	Metadata advisor.AgentMetadata
	Error    string
}

const (
	failedMessage      = "Failed to get response from agent."
	unavailableMessage = "The agent service is unavailable. Please try again."
	emptyMessage       = "Please enter a message."
)

type chatRequest struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
	wait       func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
		wait:       sleepContext,
		now:        time.Now,
	}
}

// Send posts message to the agent. It never returns an error value: failures
// are reported through Result.Success and Result.Error, which holds text fit
// for the chat. The underlying error is logged.
func (c *Client) Send(ctx context.Context, message, agentID string, opts Options) Result {
	body, err := c.send(ctx, message, agentID, opts)
	if err != nil {
		c.logger.Error("Agent call failed",
			zap.String("agent_id", agentID),
			zap.String("session_id", opts.SessionID),
			zap.Error(err))
		return Result{Success: false, Error: userMessage(err)}
	}

	envelope, response, err := decodeResponse(body)
	if err != nil {
		// Undecodable bodies are still shown; the normalizer treats them as text.
		c.logger.Warn("Agent reply is not JSON, passing through as text", zap.Error(err))
		return Result{
			Success:  true,
			Response: string(body),
			Metadata: advisor.ReadMetadata(nil, c.cfg.AgentName, c.now()),
		}
	}
	return Result{
		Success:  true,
		Response: response,
		Metadata: advisor.ReadMetadata(envelope, c.cfg.AgentName, c.now()),
	}
}

func (c *Client) send(ctx context.Context, message, agentID string, opts Options) ([]byte, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "message is empty")
	}

	jsonBody, err := json.Marshal(chatRequest{
		UserID:    c.cfg.UserID,
		AgentID:   agentID,
		SessionID: opts.SessionID,
		Message:   message,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal agent request: %w", err)
	}

	url := fmt.Sprintf("%s/v3/inference/chat/", strings.TrimRight(c.cfg.AgentBaseURL, "/"))

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create agent request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("x-api-key", c.cfg.APIKey)
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil || !c.waitBeforeRetry(ctx, attempt) {
				break
			}
			continue
		}

		if r.StatusCode == http.StatusServiceUnavailable || r.StatusCode == http.StatusBadGateway {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			lastErr = fmt.Errorf("agent returned %s", r.Status)
			c.logger.Warn("Agent service unavailable", zap.Int("attempt", attempt+1))
			if !c.waitBeforeRetry(ctx, attempt) {
				break
			}
			continue
		}

		resp = r
		break
	}
	if resp == nil {
		return nil, apperrors.WrapError(fmt.Errorf("%w: %v", apperrors.ErrServiceUnavailable, lastErr), "no response from agent")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(resp.Status, bodyBytes)
	}
	return bodyBytes, nil
}

// decodeResponse extracts the reply payload. The agent wraps it under
// "response"; anything else is returned whole.
func decodeResponse(body []byte) (envelope, response any, err error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, nil, fmt.Errorf("decode agent response: %w", err)
	}
	if obj, ok := envelope.(map[string]any); ok {
		if inner, ok := obj["response"]; ok && inner != nil {
			return envelope, inner, nil
		}
	}
	return envelope, envelope, nil
}

// upstreamError is a non-2xx reply from the agent. Detail is the error text
// the service supplied, empty when the body carried none.
type upstreamError struct {
	Status string
	Detail string
	Body   string
}

func newUpstreamError(status string, body []byte) *upstreamError {
	text := strings.TrimSpace(string(body))
	if len(text) > 300 {
		text = text[:300]
	}
	return &upstreamError{Status: status, Detail: errorDetail(body), Body: text}
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("agent returned %s: %s", e.Status, e.Body)
}

func (e *upstreamError) Unwrap() error { return apperrors.ErrAgentCommunication }

// errorDetail picks the service's own message out of an error body.
func errorDetail(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// userMessage maps a failed call to the text shown in the chat.
func userMessage(err error) string {
	var upstream *upstreamError
	switch {
	case errors.As(err, &upstream) && upstream.Detail != "":
		return upstream.Detail
	case apperrors.IsInvalidInput(err):
		return emptyMessage
	case apperrors.IsServiceUnavailable(err):
		return unavailableMessage
	default:
		return failedMessage
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// waitBeforeRetry pauses before the next attempt. It reports false when no
// attempt is left or ctx ended during the pause.
func (c *Client) waitBeforeRetry(ctx context.Context, attempt int) bool {
	if attempt >= c.cfg.MaxRetries-1 {
		return false
	}
	return c.wait(ctx, c.backoff(attempt)) == nil
}

func (c *Client) backoff(attempt int) time.Duration {
	// Exponential backoff with configurable jitter and cap
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	maxWait := c.cfg.BackoffMaxSeconds
	if maxWait > 0 && d > maxWait {
		d = maxWait
	}
	jitterRatio := c.cfg.BackoffJitterRatio
	if jitterRatio < 0 || jitterRatio > 1 {
		jitterRatio = 0.1
	}
	jitter := time.Duration(float64(d) * jitterRatio)
	if jitter > 0 {
		d = d - jitter + time.Duration(rand.Int64N(int64(2*jitter)+1))
	}
	return d
}
