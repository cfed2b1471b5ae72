package components

import (
	"strconv"
	"strings"
	"time"

	"product-advisor/advisor"
	"product-advisor/knowledgebase"
	"product-advisor/web/types"
)

func messageID(msg types.ChatMessage) string {
	return "msg-" + msg.ID
}

func parsedOf(msg types.ChatMessage) advisor.ParsedResponse {
	if msg.Parsed == nil {
		return advisor.ParsedResponse{}
	}
	return *msg.Parsed
}

func productName(rec advisor.Recommendation) string {
	if rec.ProductName == "" {
		return "Unknown Product"
	}
	return rec.ProductName
}

func documentName(doc knowledgebase.Document) string {
	if doc.FileName == "" {
		return "Unknown"
	}
	return doc.FileName
}

// documentKind is the secondary line of a document row, e.g. "PDF - active".
func documentKind(doc knowledgebase.Document) string {
	kind := "File"
	if doc.FileType != "" {
		kind = strings.ToUpper(doc.FileType)
	}
	if doc.Status != "" {
		kind += " - " + doc.Status
	}
	return kind
}

func emailStatusClass(status types.EmailStatus) string {
	if status == types.EmailError {
		return "text-xs text-destructive mt-1.5 ml-6"
	}
	return "text-xs text-primary mt-1.5 ml-6"
}

func panelStatusClass(success bool) string {
	if success {
		return "kb-status text-sm p-3 rounded-lg bg-primary/10 text-primary"
	}
	return "kb-status text-sm p-3 rounded-lg bg-destructive/10 text-destructive"
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
