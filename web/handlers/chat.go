package handlers

import (
	"net/http"

	"product-advisor/utils"
	"product-advisor/web/middleware"
	"product-advisor/web/services"
	"product-advisor/web/templates/components"
	"product-advisor/web/templates/pages"
	"product-advisor/web/types"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat   *services.ChatService
	theme  map[string]string
	logger *zap.Logger
}

type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

type EmailRequest struct {
	Email string `json:"email" form:"email"`
}

func NewChatHandler(chat *services.ChatService, theme map[string]string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		theme:  theme,
		logger: logger,
	}
}

// Index renders the advisor page. ?sample=1 shows the demo conversation
// while the transcript is empty.
func (h *ChatHandler) Index(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	messages := h.chat.Transcript(sessionID)
	hasHistory := len(messages) > 0

	sample := c.Query("sample") == "1"
	if sample && !hasHistory {
		messages = services.SampleMessages(h.chat.AgentName())
	}

	view := pages.ChatView{
		AgentID:    h.chat.AgentID(),
		AgentName:  h.chat.AgentName(),
		Messages:   messages,
		Sample:     sample,
		Theme:      h.theme,
		Prompts:    services.SuggestedPrompts,
		HasHistory: hasHistory,
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.ChatPage(view).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render chat page", zap.Error(err), zap.String("session_id", sessionID))
	}
}

// SendMessage runs one chat turn and returns the new transcript entries as HTML.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	res, err := h.chat.SendMessage(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		respondTurnError(c, err, h.logger, sessionID)
		return
	}

	if res.Error != "" {
		c.Header("HX-Trigger", "agent-error")
	}
	h.renderFragment(c, components.Turn(res.User, res.Agent, res.Error), sessionID)
}

// Reset forgets the transcript and issues a fresh session ID.
func (h *ChatHandler) Reset(c *gin.Context) {
	oldID := middleware.SessionID(c)
	h.chat.Reset(oldID)

	newID := utils.GenerateSessionID()
	middleware.SetSessionCookie(c, newID)
	c.Set(middleware.SessionKey, newID)
	c.JSON(http.StatusOK, gin.H{"session_id": newID})
}

// EmailSummary asks the agent to email the conversation and returns the
// status line for the email bar.
func (h *ChatHandler) EmailSummary(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, agentMsg := h.chat.EmailSummary(c.Request.Context(), sessionID, req.Email)
	if result.Status == types.EmailError {
		c.Header("HX-Trigger", "email-error")
	}
	if agentMsg != nil {
		h.renderFragment(c, components.EmailSummaryResult(result, *agentMsg), sessionID)
		return
	}
	h.renderFragment(c, components.EmailStatus(result), sessionID)
}

func (h *ChatHandler) renderFragment(c *gin.Context, component templ.Component, sessionID string) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render fragment", zap.Error(err), zap.String("session_id", sessionID))
	}
}
