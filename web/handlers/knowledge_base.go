package handlers

import (
	"net/http"
	"strings"

	"product-advisor/knowledgebase"
	"product-advisor/web/services"
	"product-advisor/web/templates/components"
	"product-advisor/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type KnowledgeBaseHandler struct {
	kb     *services.KnowledgeService
	logger *zap.Logger
}

func NewKnowledgeBaseHandler(kb *services.KnowledgeService, logger *zap.Logger) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{
		kb:     kb,
		logger: logger,
	}
}

// Panel renders the knowledge-base panel.
func (h *KnowledgeBaseHandler) Panel(c *gin.Context) {
	h.renderPanel(c, nil)
}

// Upload trains one file into the knowledge base and re-renders the panel.
func (h *KnowledgeBaseHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.renderPanel(c, &types.PanelStatus{Message: "Please choose a file to upload."})
		return
	}

	status := h.kb.Upload(c.Request.Context(), file)
	h.logger.Info("Knowledge base upload",
		zap.String("file", file.Filename),
		zap.Bool("success", status.Success))
	h.renderPanel(c, &status)
}

// Delete removes one document and re-renders the panel.
func (h *KnowledgeBaseHandler) Delete(c *gin.Context) {
	fileName := strings.TrimSpace(c.PostForm("file_name"))
	if fileName == "" {
		h.renderPanel(c, &types.PanelStatus{Message: "Delete failed."})
		return
	}

	status := h.kb.Delete(c.Request.Context(), fileName)
	h.renderPanel(c, &status)
}

// ListDocuments returns the knowledge-base documents as JSON.
func (h *KnowledgeBaseHandler) ListDocuments(c *gin.Context) {
	docs, err := h.kb.Documents(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusBadGateway, err, "Could not load documents.", h.logger)
		return
	}
	c.JSON(http.StatusOK, knowledgebase.ListResult{Success: true, Documents: docs})
}

func (h *KnowledgeBaseHandler) renderPanel(c *gin.Context, status *types.PanelStatus) {
	docs, err := h.kb.Documents(c.Request.Context())
	if err != nil {
		// The panel still opens; the list is just empty.
		h.logger.Warn("Failed to list knowledge base documents", zap.Error(err))
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := components.KnowledgeBasePanel(docs, status).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render knowledge base panel", zap.Error(err))
	}
}
