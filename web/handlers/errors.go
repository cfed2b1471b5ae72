package handlers

import (
	"net/http"

	apperrors "product-advisor/errors"
	"product-advisor/web/services"
	"product-advisor/web/templates/components"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields,
			zap.Error(technicalError),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", statusCode))
		logger.Error("Request failed", fields...)
	}
	writeError(c, statusCode, userMessage)
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	writeError(c, statusCode, userMessage)
}

// respondTurnError maps a rejected chat turn to its status code.
func respondTurnError(c *gin.Context, err error, logger *zap.Logger, sessionID string) {
	switch {
	case apperrors.IsInvalidInput(err):
		respondWithClientError(c, http.StatusBadRequest, "Message cannot be empty.")
	case apperrors.IsBusy(err):
		respondWithClientError(c, http.StatusConflict, services.BusyMessage)
	default:
		respondWithError(c, http.StatusInternalServerError, err, "Failed to get response from agent.", logger,
			zap.String("session_id", sessionID))
	}
}

// writeError answers htmx requests with the error banner and everything
// else with JSON.
func writeError(c *gin.Context, statusCode int, userMessage string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		// Error banners are appended to the transcript.
		c.Header("HX-Retarget", "#messages")
		c.Header("HX-Reswap", "beforeend")
		c.Status(statusCode)
		_ = components.ErrorBanner(userMessage).Render(c.Request.Context(), c.Writer)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
}
