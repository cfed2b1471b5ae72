package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"product-advisor/advisor"
	"product-advisor/agentclient"
	apperrors "product-advisor/errors"
	"product-advisor/metrics"
	"product-advisor/utils"
	"product-advisor/web/types"

	"go.uber.org/zap"
)

const (
	agentFailedMessage       = "Failed to get response from agent."
	invalidEmailMessage      = "Please enter a valid email address."
	summarySentMessage       = "Conversation summary has been sent to your email."
	summaryFailedMessage     = "Failed to send the summary. Please try again."
	emptyTranscriptMessage   = "Start a conversation before requesting a summary."
	summaryRequestTemplate   = "Please send a complete summary of our entire conversation to %s. Include all recommendations, key points, and any comparisons we discussed."
	defaultAgentNameFallback = "Product Recommendation Agent"
)

// BusyMessage is shown when a session already has a call in flight.
const BusyMessage = "A request is already in progress."

// AgentSender is the part of agentclient.Client the chat service needs.
type AgentSender interface {
	Send(ctx context.Context, message, agentID string, opts agentclient.Options) agentclient.Result
}

// ChatService runs one chat turn: transcript bookkeeping, the agent call and
// normalization of the reply.
type ChatService struct {
	agent       AgentSender
	transcripts *TranscriptStore
	normalizer  advisor.Normalizer
	agentID     string
	agentName   string
	sentReset   time.Duration
	errorReset  time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// ChatServiceConfig carries the settings ChatService reads from config.
type ChatServiceConfig struct {
	AgentID         string
	AgentName       string
	MaxDecodeDepth  int
	EmailSentReset  time.Duration
	EmailErrorReset time.Duration
}

func NewChatService(agent AgentSender, transcripts *TranscriptStore, cfg ChatServiceConfig, logger *zap.Logger) *ChatService {
	name := cfg.AgentName
	if name == "" {
		name = defaultAgentNameFallback
	}
	return &ChatService{
		agent:       agent,
		transcripts: transcripts,
		normalizer:  advisor.Normalizer{MaxDepth: cfg.MaxDecodeDepth},
		agentID:     cfg.AgentID,
		agentName:   name,
		sentReset:   cfg.EmailSentReset,
		errorReset:  cfg.EmailErrorReset,
		logger:      logger,
		now:         time.Now,
	}
}

// TurnResult is the outcome of SendMessage. Agent is nil when the call
// failed, in which case Error holds the banner text.
type TurnResult struct {
	User  types.ChatMessage  `json:"user"`
	Agent *types.ChatMessage `json:"agent,omitempty"`
	Error string             `json:"error,omitempty"`
}

// AgentName is the display name used when a reply carries none.
func (cs *ChatService) AgentName() string {
	return cs.agentName
}

// AgentID is the agent every turn is sent to.
func (cs *ChatService) AgentID() string {
	return cs.agentID
}

// Transcript returns the messages of the session.
func (cs *ChatService) Transcript(sessionID string) []types.ChatMessage {
	return cs.transcripts.Messages(sessionID)
}

// Busy reports whether the session has a call in flight.
func (cs *ChatService) Busy(sessionID string) bool {
	return cs.transcripts.Busy(sessionID)
}

// Reset drops the transcript of the session.
func (cs *ChatService) Reset(sessionID string) {
	cs.transcripts.Reset(sessionID)
	cs.logger.Info("Session reset", zap.String("session_id", sessionID))
}

// SendMessage appends the user entry, calls the agent and appends the
// normalized reply. Agent failures are reported in TurnResult.Error; the
// returned error is only set for rejected input or a concurrent call.
func (cs *ChatService) SendMessage(ctx context.Context, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, apperrors.WrapError(apperrors.ErrInvalidInput, "message is empty")
	}
	if err := cs.transcripts.Begin(sessionID); err != nil {
		return TurnResult{}, err
	}
	defer cs.transcripts.End(sessionID)

	userMsg := types.ChatMessage{
		ID:        utils.GenerateMessageID(),
		Role:      types.RoleUser,
		Content:   text,
		Timestamp: cs.now(),
	}
	cs.transcripts.Append(sessionID, userMsg)

	agentMsg, errText := cs.callAgent(ctx, sessionID, text)
	if agentMsg == nil {
		return TurnResult{User: userMsg, Error: errText}, nil
	}
	cs.transcripts.Append(sessionID, *agentMsg)
	return TurnResult{User: userMsg, Agent: agentMsg}, nil
}

// EmailSummary asks the agent to email a summary of the conversation to
// email. Only the agent's reply is added to the transcript.
func (cs *ChatService) EmailSummary(ctx context.Context, sessionID, email string) (types.EmailResult, *types.ChatMessage) {
	email = strings.TrimSpace(email)
	if !utils.ValidEmail(email) {
		return cs.emailError(invalidEmailMessage), nil
	}
	if cs.transcripts.Len(sessionID) == 0 {
		return cs.emailError(emptyTranscriptMessage), nil
	}
	if err := cs.transcripts.Begin(sessionID); err != nil {
		return cs.emailError(BusyMessage), nil
	}
	defer cs.transcripts.End(sessionID)

	agentMsg, errText := cs.callAgent(ctx, sessionID, fmt.Sprintf(summaryRequestTemplate, email))
	if agentMsg == nil {
		cs.logger.Warn("Summary email request failed",
			zap.String("session_id", sessionID),
			zap.String("error", errText))
		return cs.emailError(summaryFailedMessage), nil
	}
	cs.transcripts.Append(sessionID, *agentMsg)

	return types.EmailResult{
		Status:     types.EmailSent,
		Message:    summarySentMessage,
		ResetAfter: cs.sentReset,
	}, agentMsg
}

func (cs *ChatService) emailError(msg string) types.EmailResult {
	return types.EmailResult{Status: types.EmailError, Message: msg, ResetAfter: cs.errorReset}
}

// callAgent returns the agent entry, or nil and the error text to show.
func (cs *ChatService) callAgent(ctx context.Context, sessionID, message string) (*types.ChatMessage, string) {
	start := time.Now()
	res := cs.agent.Send(ctx, message, cs.agentID, agentclient.Options{SessionID: sessionID})
	outcome := metrics.Outcome(res.Success)
	metrics.AgentRequests.WithLabelValues(outcome).Inc()
	metrics.AgentRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if !res.Success {
		errText := res.Error
		if errText == "" {
			errText = agentFailedMessage
		}
		return nil, errText
	}

	parsed := cs.normalizer.Normalize(res.Response)
	metrics.NormalizedResponses.WithLabelValues(parsed.Shape.String()).Inc()

	meta := res.Metadata
	if meta.AgentName == "" {
		meta.AgentName = cs.agentName
	}
	if meta.Timestamp == "" {
		meta.Timestamp = cs.now().UTC().Format(time.RFC3339)
	}

	cs.logger.Debug("Agent reply normalized",
		zap.String("session_id", sessionID),
		zap.Stringer("shape", parsed.Shape),
		zap.Bool("structured", parsed.Data.HasContent()))

	return &types.ChatMessage{
		ID:        utils.GenerateMessageID(),
		Role:      types.RoleAgent,
		Parsed:    &parsed,
		Metadata:  &meta,
		Timestamp: cs.now(),
	}, ""
}
