package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"product-advisor/advisor"
	"product-advisor/web/middleware"
	"product-advisor/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxNormalizeBody = 1 << 20

type APIHandler struct {
	chat       *services.ChatService
	normalizer advisor.Normalizer
	logger     *zap.Logger
}

func NewAPIHandler(chat *services.ChatService, normalizer advisor.Normalizer, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		chat:       chat,
		normalizer: normalizer,
		logger:     logger,
	}
}

type normalizeResponse struct {
	advisor.ParsedResponse
	Shape      string `json:"shape"`
	Structured bool   `json:"structured"`
}

// Chat runs one chat turn and returns both transcript entries as JSON.
func (h *APIHandler) Chat(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	res, err := h.chat.SendMessage(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		respondTurnError(c, err, h.logger, sessionID)
		return
	}
	if res.Error != "" {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Normalize runs the response normalizer over the request body. Bodies that
// are not JSON are treated as text, the same as an agent reply.
func (h *APIHandler) Normalize(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNormalizeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithClientError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondWithClientError(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	parsed := h.normalizer.Normalize(json.RawMessage(body))
	c.JSON(http.StatusOK, normalizeResponse{
		ParsedResponse: parsed,
		Shape:          parsed.Shape.String(),
		Structured:     parsed.Data.HasContent(),
	})
}

// Health reports liveness.
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
