package types

import (
	"time"

	"product-advisor/advisor"
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ChatMessage is one entry of a session transcript. Agent entries carry the
// normalized reply; user entries carry only Content.
type ChatMessage struct {
	ID        string                  `json:"id"`
	Role      string                  `json:"role"`
	Content   string                  `json:"content"`
	Parsed    *advisor.ParsedResponse `json:"parsed,omitempty"`
	Metadata  *advisor.AgentMetadata  `json:"metadata,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// IsAgent reports whether the entry was produced by the agent.
func (m ChatMessage) IsAgent() bool {
	return m.Role == RoleAgent
}

// EmailStatus is the state of the email summary bar.
type EmailStatus string

const (
	EmailIdle  EmailStatus = "idle"
	EmailSent  EmailStatus = "sent"
	EmailError EmailStatus = "error"
)

// EmailResult is shown under the email bar and cleared after ResetAfter.
type EmailResult struct {
	Status     EmailStatus   `json:"status"`
	Message    string        `json:"message"`
	ResetAfter time.Duration `json:"-"`
}

// PanelStatus is the outcome line of the knowledge-base panel. Detail holds
// the local inspection of an upload, such as a text preview.
type PanelStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
