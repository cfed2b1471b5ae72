package knowledgebase

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "product-advisor/errors"

	"github.com/jdkato/prose/v2"
	"github.com/ledongthuc/pdf"
)

const (
	previewSentences = 3
	previewMaxChars  = 400
	previewInputMax  = 4000
	pdfPreviewPages  = 2
)

// SupportedTypes are the file types the training endpoints accept.
var SupportedTypes = []string{"pdf", "docx", "txt"}

// Inspection summarizes a file before it is sent for training.
type Inspection struct {
	FileName string
	FileType string
	Size     int64
	Pages    int
	Preview  string
}

// DetectFileType maps a file name to its training type.
func DetectFileType(name string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(name))), ".")
	for _, t := range SupportedTypes {
		if ext == t {
			return t, nil
		}
	}
	if ext == "" {
		return "", apperrors.WrapErrorf(apperrors.ErrUnsupportedFile, "%q has no extension", name)
	}
	return "", apperrors.WrapErrorf(apperrors.ErrUnsupportedFile, ".%s", ext)
}

// Inspect checks that data is a usable file of the type its name claims and
// builds a short preview of its text.
func Inspect(name string, data []byte) (Inspection, error) {
	fileType, err := DetectFileType(name)
	if err != nil {
		return Inspection{}, err
	}
	if len(data) == 0 {
		return Inspection{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%q is empty", name)
	}

	in := Inspection{FileName: name, FileType: fileType, Size: int64(len(data))}
	switch fileType {
	case "pdf":
		pages, text, err := readPDF(data)
		if err != nil {
			return Inspection{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%q is not a readable PDF: %v", name, err)
		}
		in.Pages = pages
		in.Preview = preview(text)
	case "txt":
		if !utf8.Valid(data) {
			return Inspection{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%q is not UTF-8 text", name)
		}
		in.Preview = preview(string(data))
	}
	return in, nil
}

func readPDF(data []byte) (pages int, text string, err error) {
	defer func() {
		// The PDF parser panics on some malformed inputs.
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", err
	}

	pages = r.NumPage()
	var sb strings.Builder
	for pageNum := 1; pageNum <= pages && pageNum <= pdfPreviewPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return pages, sb.String(), nil
}

// preview returns the first few sentences of text, capped in length. Only
// the head of text is segmented.
func preview(text string) string {
	text = strings.Join(strings.Fields(truncateRunes(text, previewInputMax)), " ")
	if text == "" {
		return ""
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err == nil {
		sentences := doc.Sentences()
		if len(sentences) > previewSentences {
			sentences = sentences[:previewSentences]
		}
		parts := make([]string, 0, len(sentences))
		for _, s := range sentences {
			parts = append(parts, strings.TrimSpace(s.Text))
		}
		if joined := strings.Join(parts, " "); joined != "" {
			text = joined
		}
	}

	if utf8.RuneCountInString(text) > previewMaxChars {
		text = strings.TrimSpace(truncateRunes(text, previewMaxChars)) + "…"
	}
	return text
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
