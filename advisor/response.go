package advisor

import "fmt"

// Shape identifies which upstream payload layout a response was recognized as.
type Shape int

const (
	ShapeAbsent Shape = iota
	ShapeText
	ShapeWrapped
	ShapeDirect
	ShapePlainField
	ShapeOpaque
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeText:
		return "text"
	case ShapeWrapped:
		return "wrapped"
	case ShapeDirect:
		return "direct"
	case ShapePlainField:
		return "plain_field"
	case ShapeOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Recommendation is a single product suggestion. Every field may be empty.
type Recommendation struct {
	ProductName string `json:"product_name,omitempty"`
	KeyFeatures string `json:"key_features,omitempty"`
	WhyItFits   string `json:"why_its_a_fit,omitempty"`
	Price       string `json:"price,omitempty"`
}

// StructuredData holds the recognized sub-fields of an agent reply.
// Slices are nil when the upstream value was missing or not an array.
type StructuredData struct {
	Greeting            string           `json:"greeting,omitempty"`
	ClarifyingQuestions []string         `json:"clarifying_questions,omitempty"`
	Recommendations     []Recommendation `json:"recommendations,omitempty"`
	ComparisonNotes     string           `json:"comparison_notes,omitempty"`
	NextSteps           string           `json:"next_steps,omitempty"`
	EmailAcknowledgment string           `json:"email_acknowledgment,omitempty"`
	TicketNotification  string           `json:"ticket_notification,omitempty"`
	TicketSent          bool             `json:"ticket_sent,omitempty"`
	SummaryEmailSent    bool             `json:"summary_sent,omitempty"`
	EmailRecipient      string           `json:"email_recipient,omitempty"`
}

// ParsedResponse is the display model built from one agent reply.
// The JSON form reuses the upstream field names, so a serialized
// ParsedResponse wrapped under "result" normalizes to the same values.
type ParsedResponse struct {
	Summary string          `json:"summary,omitempty"`
	Data    *StructuredData `json:"data,omitempty"`
	RawText string          `json:"rawText,omitempty"`
	Shape   Shape           `json:"-"`
}

// HasContent reports whether any displayable structured section is present.
func (d *StructuredData) HasContent() bool {
	if d == nil {
		return false
	}
	return d.Greeting != "" ||
		len(d.ClarifyingQuestions) > 0 ||
		len(d.Recommendations) > 0 ||
		d.ComparisonNotes != "" ||
		d.NextSteps != "" ||
		d.EmailAcknowledgment != "" ||
		d.SummaryEmailSent ||
		d.TicketNotification != "" ||
		d.TicketSent
}

// TicketMessage returns the text of the ticket banner, or "" when no ticket was raised.
func (d *StructuredData) TicketMessage() string {
	if d == nil {
		return ""
	}
	if d.TicketNotification != "" {
		return d.TicketNotification
	}
	if !d.TicketSent {
		return ""
	}
	if d.EmailRecipient != "" {
		return fmt.Sprintf("A product request ticket has been submitted to %s. Our team will review your request and follow up.", d.EmailRecipient)
	}
	return "A product request ticket has been submitted. Our team will review your request and follow up."
}

// EmailMessage returns the email acknowledgment, falling back to a generic
// confirmation when the agent only flagged the summary as sent.
func (d *StructuredData) EmailMessage() string {
	if d == nil {
		return ""
	}
	if d.EmailAcknowledgment != "" {
		return d.EmailAcknowledgment
	}
	if !d.SummaryEmailSent {
		return ""
	}
	if d.EmailRecipient != "" {
		return fmt.Sprintf("Conversation summary has been sent to %s.", d.EmailRecipient)
	}
	return "Conversation summary has been sent to your email."
}

// Displayable reports whether the response carries anything to render.
func (p ParsedResponse) Displayable() bool {
	return p.Data.HasContent() || p.RawText != ""
}
