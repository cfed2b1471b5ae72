package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	apperrors "product-advisor/errors"
	"product-advisor/knowledgebase"
	"product-advisor/metrics"
	"product-advisor/utils"
	"product-advisor/web/types"

	"go.uber.org/zap"
)

const (
	uploadFailedMessage = "Upload failed."
	deleteFailedMessage = "Delete failed."
)

// KnowledgeBaseAPI is the part of knowledgebase.Client the panel needs.
type KnowledgeBaseAPI interface {
	ListDocuments(ctx context.Context, kbID string) knowledgebase.ListResult
	Upload(ctx context.Context, kbID string, up knowledgebase.Upload) knowledgebase.Result
	Delete(ctx context.Context, kbID string, fileNames []string) knowledgebase.Result
}

// KnowledgeService backs the knowledge-base panel.
type KnowledgeService struct {
	kb       KnowledgeBaseAPI
	kbID     string
	maxBytes int64
	logger   *zap.Logger
}

func NewKnowledgeService(kb KnowledgeBaseAPI, kbID string, maxBytes int64, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{kb: kb, kbID: kbID, maxBytes: maxBytes, logger: logger}
}

// Documents lists the knowledge base. A failed listing leaves the panel
// empty rather than erroring.
func (ks *KnowledgeService) Documents(ctx context.Context) ([]knowledgebase.Document, error) {
	res := ks.kb.ListDocuments(ctx, ks.kbID)
	metrics.KnowledgeBaseOperations.WithLabelValues("list", metrics.Outcome(res.Success)).Inc()
	if !res.Success {
		return []knowledgebase.Document{}, apperrors.WrapError(apperrors.ErrKnowledgeBase, res.Error)
	}
	if res.Documents == nil {
		return []knowledgebase.Document{}, nil
	}
	return res.Documents, nil
}

// ValidateFile checks the upload's name, type and size. It returns the
// sanitized file name.
func (ks *KnowledgeService) ValidateFile(file *multipart.FileHeader) (string, error) {
	name := utils.SanitizeFilename(file.Filename)
	if name == "" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "invalid or unsafe filename")
	}
	if _, err := knowledgebase.DetectFileType(name); err != nil {
		return "", fmt.Errorf("%w. Please upload PDF, DOCX, or TXT files", err)
	}
	if ks.maxBytes > 0 && file.Size > ks.maxBytes {
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "file too large, maximum size is %d MB", ks.maxBytes/(1024*1024))
	}
	return name, nil
}

// Upload inspects the file and trains it into the knowledge base.
func (ks *KnowledgeService) Upload(ctx context.Context, file *multipart.FileHeader) types.PanelStatus {
	status := ks.upload(ctx, file)
	metrics.KnowledgeBaseOperations.WithLabelValues("upload", metrics.Outcome(status.Success)).Inc()
	return status
}

func (ks *KnowledgeService) upload(ctx context.Context, file *multipart.FileHeader) types.PanelStatus {
	name, err := ks.ValidateFile(file)
	if err != nil {
		return types.PanelStatus{Message: err.Error()}
	}

	src, err := file.Open()
	if err != nil {
		ks.logger.Error("Failed to open uploaded file", zap.Error(err), zap.String("file", name))
		return types.PanelStatus{Message: uploadFailedMessage}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		ks.logger.Error("Failed to read uploaded file", zap.Error(err), zap.String("file", name))
		return types.PanelStatus{Message: uploadFailedMessage}
	}

	inspection, err := knowledgebase.Inspect(name, data)
	if err != nil {
		return types.PanelStatus{Message: err.Error()}
	}
	ks.logger.Info("Uploading document",
		zap.String("file", name),
		zap.String("type", inspection.FileType),
		zap.Int64("bytes", inspection.Size),
		zap.Int("pages", inspection.Pages))

	res := ks.kb.Upload(ctx, ks.kbID, knowledgebase.Upload{FileName: name, Content: bytes.NewReader(data)})
	if !res.Success {
		return types.PanelStatus{Message: orDefault(res.Error, uploadFailedMessage)}
	}
	return types.PanelStatus{
		Success: true,
		Message: uploadedMessage(inspection),
		Detail:  inspection.Preview,
	}
}

func uploadedMessage(in knowledgebase.Inspection) string {
	switch {
	case in.Pages == 1:
		return fmt.Sprintf(`"%s" uploaded and trained successfully (1 page).`, in.FileName)
	case in.Pages > 1:
		return fmt.Sprintf(`"%s" uploaded and trained successfully (%d pages).`, in.FileName, in.Pages)
	default:
		return fmt.Sprintf(`"%s" uploaded and trained successfully.`, in.FileName)
	}
}

// Delete removes a document by file name.
func (ks *KnowledgeService) Delete(ctx context.Context, fileName string) types.PanelStatus {
	res := ks.kb.Delete(ctx, ks.kbID, []string{fileName})
	metrics.KnowledgeBaseOperations.WithLabelValues("delete", metrics.Outcome(res.Success)).Inc()
	if apperrors.IsNotFound(res.Err) {
		return types.PanelStatus{Message: fmt.Sprintf(`"%s" was not found in the knowledge base.`, fileName)}
	}
	if !res.Success {
		return types.PanelStatus{Message: orDefault(res.Error, deleteFailedMessage)}
	}
	return types.PanelStatus{Success: true, Message: fmt.Sprintf(`"%s" deleted.`, fileName)}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
