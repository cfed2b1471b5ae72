package knowledgebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"product-advisor/config"
	apperrors "product-advisor/errors"

	"go.uber.org/zap"
)

// Document is one file stored in a knowledge base.
type Document struct {
	ID         string `json:"id,omitempty"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType,omitempty"`
	FileSize   int64  `json:"fileSize,omitempty"`
	Status     string `json:"status,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

const unavailableMessage = "The knowledge base is unavailable. Please try again."

// Result reports the outcome of an upload or delete. Error is text fit for
// the panel; Err keeps the cause for errors.Is checks.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// ListResult reports the outcome of ListDocuments.
type ListResult struct {
	Success   bool       `json:"success"`
	Documents []Document `json:"documents"`
	Error     string     `json:"error,omitempty"`
	Err       error      `json:"-"`
}

func failure(err error) Result {
	return Result{Error: panelMessage(err), Err: err}
}

func listFailure(err error) ListResult {
	return ListResult{Error: panelMessage(err), Err: err}
}

// panelMessage hides transport details such as the endpoint URL.
func panelMessage(err error) string {
	if apperrors.IsServiceUnavailable(err) {
		return unavailableMessage
	}
	return err.Error()
}

// Upload is a file to train into a knowledge base.
type Upload struct {
	FileName string
	Content  io.Reader
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// ListDocuments returns the files stored in kbID.
func (c *Client) ListDocuments(ctx context.Context, kbID string) ListResult {
	endpoint := fmt.Sprintf("%s/v3/rag/%s/documents/", c.baseURL(), url.PathEscape(kbID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return listFailure(err)
	}

	body, err := c.do(req)
	if err != nil {
		c.logger.Error("Failed to list knowledge base documents", zap.String("kb_id", kbID), zap.Error(err))
		return listFailure(err)
	}

	docs, err := parseDocuments(body)
	if err != nil {
		c.logger.Error("Unexpected document list payload", zap.String("kb_id", kbID), zap.Error(err))
		return listFailure(err)
	}
	return ListResult{Success: true, Documents: docs}
}

// Upload sends a file to the training endpoint for its type.
func (c *Client) Upload(ctx context.Context, kbID string, up Upload) Result {
	fileType, err := DetectFileType(up.FileName)
	if err != nil {
		return failure(err)
	}
	if up.Content == nil {
		return failure(apperrors.WrapError(apperrors.ErrInvalidInput, "file content is missing"))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", up.FileName)
	if err != nil {
		return failure(err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return failure(fmt.Errorf("read upload: %w", err))
	}
	if err := writer.Close(); err != nil {
		return failure(err)
	}

	endpoint := fmt.Sprintf("%s/v3/train/%s/?rag_id=%s", c.baseURL(), fileType, url.QueryEscape(kbID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		c.logger.Error("Knowledge base upload failed",
			zap.String("kb_id", kbID),
			zap.String("file", up.FileName),
			zap.Error(err))
		return failure(err)
	}

	c.logger.Info("Uploaded document to knowledge base",
		zap.String("kb_id", kbID),
		zap.String("file", up.FileName),
		zap.String("type", fileType))
	return Result{Success: true, Message: messageFrom(body)}
}

// Delete removes the named files from kbID.
func (c *Client) Delete(ctx context.Context, kbID string, fileNames []string) Result {
	if len(fileNames) == 0 {
		return failure(apperrors.WrapError(apperrors.ErrInvalidInput, "no documents selected"))
	}

	payload, err := json.Marshal(fileNames)
	if err != nil {
		return failure(err)
	}
	endpoint := fmt.Sprintf("%s/v3/rag/%s/docs/", c.baseURL(), url.PathEscape(kbID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		c.logger.Error("Knowledge base delete failed",
			zap.String("kb_id", kbID),
			zap.Strings("files", fileNames),
			zap.Error(err))
		return failure(err)
	}
	return Result{Success: true, Message: messageFrom(body)}
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.cfg.KnowledgeBaseURL, "/")
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.WrapError(fmt.Errorf("%w: %v", apperrors.ErrServiceUnavailable, err), "knowledge base request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, detailFrom(body, resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrKnowledgeBase, detailFrom(body, resp.Status))
	}
	return body, nil
}

// parseDocuments accepts {"documents": [...]}, {"data": [...]} or a bare array.
// Entries may be objects or plain file names.
func parseDocuments(body []byte) ([]Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []Document{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode document list: %v", apperrors.ErrKnowledgeBase, err)
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"documents", "data", "docs"} {
			if list, ok := v[key].([]any); ok {
				items = list
				break
			}
		}
	}

	docs := make([]Document, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				docs = append(docs, Document{FileName: v, FileType: typeOf(v)})
			}
		case map[string]any:
			doc := Document{
				ID:         firstString(v, "id", "_id", "doc_id"),
				FileName:   firstString(v, "file_name", "fileName", "name", "source"),
				FileType:   firstString(v, "file_type", "fileType", "type"),
				Status:     firstString(v, "status"),
				UploadedAt: firstString(v, "uploaded_at", "uploadedAt", "created_at", "createdAt"),
				FileSize:   firstInt(v, "file_size", "fileSize", "size"),
			}
			if doc.FileName == "" {
				continue
			}
			if doc.FileType == "" {
				doc.FileType = typeOf(doc.FileName)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func firstInt(obj map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if n, ok := obj[key].(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i
			}
			if f, err := n.Float64(); err == nil {
				return int64(f)
			}
		}
	}
	return 0
}

func typeOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func messageFrom(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return firstString(payload, "message", "detail", "status")
}

func detailFrom(body []byte, status string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := firstString(payload, "detail", "error", "message"); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 300 {
		return text
	}
	return status
}
