// Package advisor turns loosely shaped agent replies into the display model
// used by the chat transcript.
package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds how many JSON-encoded strings are unwrapped for one reply.
const DefaultMaxDepth = 4

const noResponseText = "No response received."

// plainTextKeys are tried in order when no structured layout is recognized.
var plainTextKeys = []string{"message", "text", "answer"}

// Normalizer converts agent replies into ParsedResponse values.
// The zero value uses DefaultMaxDepth. It holds no state and is safe for concurrent use.
type Normalizer struct {
	MaxDepth int
}

// Normalize converts raw with the default depth bound.
func Normalize(raw any) ParsedResponse {
	return Normalizer{}.Normalize(raw)
}

// NormalizeJSON converts a raw response body.
func NormalizeJSON(body []byte) ParsedResponse {
	return Normalizer{}.Normalize(json.RawMessage(body))
}

// Normalize never fails: unrecognized input degrades to raw text.
func (n Normalizer) Normalize(raw any) ParsedResponse {
	return n.classify(canonical(raw), 0).parsed()
}

func (n Normalizer) maxDepth() int {
	if n.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return n.MaxDepth
}

// payload is one recognized upstream layout.
type payload interface {
	parsed() ParsedResponse
}

func (n Normalizer) classify(raw any, depth int) payload {
	if !truthy(raw) {
		return absentPayload{}
	}

	if s, ok := raw.(string); ok {
		if depth >= n.maxDepth() {
			return textPayload{text: s}
		}
		decoded, ok := decodeJSON(s)
		if !ok {
			return textPayload{text: s}
		}
		return n.classify(decoded, depth+1)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return opaquePayload{raw: raw}
	}

	switch result := obj["result"].(type) {
	case map[string]any:
		return wrappedPayload{result: result}
	case string:
		if depth < n.maxDepth() {
			if decoded, ok := decodeJSON(result); ok {
				if _, isObject := decoded.(map[string]any); isObject {
					return n.classify(decoded, depth+1)
				}
			}
		}
	}

	if truthy(obj["data"]) || truthy(obj["recommendations"]) || truthy(obj["greeting"]) {
		return directPayload{obj: obj}
	}

	for _, key := range plainTextKeys {
		if truthy(obj[key]) {
			if text, ok := textValue(obj[key]); ok {
				return plainFieldPayload{text: text}
			}
		}
	}
	if result, ok := obj["result"].(string); ok && result != "" {
		return plainFieldPayload{text: result}
	}

	return opaquePayload{raw: raw}
}

type absentPayload struct{}

func (absentPayload) parsed() ParsedResponse {
	return ParsedResponse{RawText: noResponseText, Shape: ShapeAbsent}
}

// textPayload is a string that is not JSON and is shown verbatim.
type textPayload struct {
	text string
}

func (p textPayload) parsed() ParsedResponse {
	return ParsedResponse{RawText: p.text, Shape: ShapeText}
}

// wrappedPayload carries its fields under result.summary and result.data.
type wrappedPayload struct {
	result map[string]any
}

func (p wrappedPayload) parsed() ParsedResponse {
	summary, _ := textField("summary", p.result)
	data := objectField("data", p.result)
	return ParsedResponse{
		Summary: summary,
		Data:    extractStructured(data),
		Shape:   ShapeWrapped,
	}
}

// directPayload carries its fields at the top level, with data.* as fallback.
type directPayload struct {
	obj map[string]any
}

func (p directPayload) parsed() ParsedResponse {
	summary, _ := textField("summary", p.obj)
	data := objectField("data", p.obj)
	return ParsedResponse{
		Summary: summary,
		Data:    extractStructured(p.obj, data),
		Shape:   ShapeDirect,
	}
}

type plainFieldPayload struct {
	text string
}

func (p plainFieldPayload) parsed() ParsedResponse {
	return ParsedResponse{RawText: p.text, Shape: ShapePlainField}
}

// opaquePayload is anything unrecognized; it is dumped as indented JSON.
type opaquePayload struct {
	raw any
}

func (p opaquePayload) parsed() ParsedResponse {
	return ParsedResponse{RawText: prettyJSON(p.raw), Shape: ShapeOpaque}
}

// extractStructured reads every recognized field, preferring earlier sources.
func extractStructured(sources ...map[string]any) *StructuredData {
	data := &StructuredData{}
	data.Greeting, _ = textField("greeting", sources...)

	if list, ok := listField("clarifying_questions", sources...); ok {
		data.ClarifyingQuestions = make([]string, 0, len(list))
		for _, item := range list {
			if q, ok := textValue(item); ok {
				data.ClarifyingQuestions = append(data.ClarifyingQuestions, q)
			}
		}
	}

	if list, ok := listField("recommendations", sources...); ok {
		data.Recommendations = make([]Recommendation, 0, len(list))
		for _, item := range list {
			if rec, ok := item.(map[string]any); ok {
				data.Recommendations = append(data.Recommendations, extractRecommendation(rec))
			}
		}
	}

	// comparison_notes wins; the bare "comparison" key is an older alias and
	// only counts when it holds a string.
	if notes, ok := textField("comparison_notes", sources...); ok {
		data.ComparisonNotes = notes
	} else {
		data.ComparisonNotes, _ = stringField("comparison", sources...)
	}

	data.NextSteps, _ = textField("next_steps", sources...)
	data.EmailAcknowledgment, _ = textField("email_acknowledgment", sources...)
	data.TicketNotification, _ = textField("ticket_notification", sources...)
	data.TicketSent, _ = boolField("ticket_sent", sources...)
	data.SummaryEmailSent, _ = boolField("summary_sent", sources...)
	data.EmailRecipient, _ = textField("email_recipient", sources...)
	return data
}

func extractRecommendation(obj map[string]any) Recommendation {
	var rec Recommendation
	rec.ProductName, _ = textField("product_name", obj)
	rec.KeyFeatures, _ = textField("key_features", obj)
	rec.WhyItFits, _ = textField("why_its_a_fit", obj)
	rec.Price, _ = textField("price", obj)
	return rec
}

func prettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
