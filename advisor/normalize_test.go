package advisor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	v, ok := decodeJSON(s)
	require.True(t, ok, "fixture must be valid JSON: %s", s)
	return v
}

func TestNormalizeRawText(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		want  string
		shape Shape
	}{
		{name: "nil", raw: nil, want: "No response received.", shape: ShapeAbsent},
		{name: "empty string", raw: "", want: "No response received.", shape: ShapeAbsent},
		{name: "json null", raw: "null", want: "No response received.", shape: ShapeAbsent},
		{name: "plain string", raw: "not json", want: "not json", shape: ShapeText},
		{name: "json string of string", raw: `"hello there"`, want: "hello there", shape: ShapeText},
		{name: "message in json string", raw: `{"message":"hi"}`, want: "hi", shape: ShapePlainField},
		{name: "text field", raw: map[string]any{"text": "from text"}, want: "from text", shape: ShapePlainField},
		{name: "answer field", raw: map[string]any{"answer": "42 is the answer"}, want: "42 is the answer", shape: ShapePlainField},
		{name: "message beats text", raw: map[string]any{"text": "second", "message": "first"}, want: "first", shape: ShapePlainField},
		{name: "empty message skipped", raw: map[string]any{"message": "", "answer": "fallback"}, want: "fallback", shape: ShapePlainField},
		{name: "string result", raw: map[string]any{"result": "plain result"}, want: "plain result", shape: ShapePlainField},
		{name: "bytes", raw: []byte(`{"answer":"from bytes"}`), want: "from bytes", shape: ShapePlainField},
		{name: "opaque object", raw: map[string]any{"foo": 1}, want: "{\n  \"foo\": 1\n}", shape: ShapeOpaque},
		{name: "opaque number", raw: "123", want: "123", shape: ShapeOpaque},
		{name: "opaque array", raw: `[1,"two"]`, want: "[\n  1,\n  \"two\"\n]", shape: ShapeOpaque},
		{name: "opaque keeps html", raw: map[string]any{"html": "<b>&</b>"}, want: "{\n  \"html\": \"<b>&</b>\"\n}", shape: ShapeOpaque},
		{name: "trailing garbage is text", raw: `{"message":"hi"} extra`, want: `{"message":"hi"} extra`, shape: ShapeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got.RawText)
			assert.Equal(t, tt.shape, got.Shape)
			assert.Nil(t, got.Data)
			assert.Empty(t, got.Summary)
		})
	}
}

func TestNormalizeWrappedResult(t *testing.T) {
	raw := decode(t, `{
		"status": "ok",
		"result": {
			"summary": "Recommended collaboration tools.",
			"data": {
				"greeting": "Happy to help!",
				"clarifying_questions": ["How large is your team?", 7, {"skip": true}],
				"recommendations": [
					{"product_name": "Slack", "key_features": "Channels", "why_its_a_fit": "Async teams", "price": "$7.25"},
					{"product_name": "Zoom One"},
					"not a product"
				],
				"comparison_notes": "Slack is chat-first.",
				"comparison": "ignored alias",
				"next_steps": "Tell me your budget.",
				"ticket_sent": true,
				"email_recipient": "sales@example.com"
			}
		}
	}`)

	got := Normalize(raw)
	require.NotNil(t, got.Data)
	assert.Equal(t, ShapeWrapped, got.Shape)
	assert.Equal(t, "Recommended collaboration tools.", got.Summary)
	assert.Empty(t, got.RawText)

	data := got.Data
	assert.Equal(t, "Happy to help!", data.Greeting)
	assert.Equal(t, []string{"How large is your team?", "7"}, data.ClarifyingQuestions)
	require.Len(t, data.Recommendations, 2)
	assert.Equal(t, Recommendation{ProductName: "Slack", KeyFeatures: "Channels", WhyItFits: "Async teams", Price: "$7.25"}, data.Recommendations[0])
	assert.Equal(t, Recommendation{ProductName: "Zoom One"}, data.Recommendations[1])
	assert.Equal(t, "Slack is chat-first.", data.ComparisonNotes)
	assert.Equal(t, "Tell me your budget.", data.NextSteps)
	assert.True(t, data.TicketSent)
	assert.Equal(t, "A product request ticket has been submitted to sales@example.com. Our team will review your request and follow up.", data.TicketMessage())
}

func TestNormalizeDropsNonArrayLists(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"summary": "S",
			"data": map[string]any{
				"recommendations":      "not-an-array",
				"clarifying_questions": map[string]any{"q": "not a list"},
			},
		},
	}

	var got ParsedResponse
	require.NotPanics(t, func() { got = Normalize(raw) })
	require.NotNil(t, got.Data)
	assert.Equal(t, "S", got.Summary)
	assert.Nil(t, got.Data.Recommendations)
	assert.Nil(t, got.Data.ClarifyingQuestions)
	assert.False(t, got.Data.HasContent())
}

func TestNormalizeWrappedWithoutData(t *testing.T) {
	got := Normalize(map[string]any{"result": map[string]any{"summary": "only summary"}})
	require.NotNil(t, got.Data)
	assert.Equal(t, "only summary", got.Summary)
	assert.Equal(t, StructuredData{}, *got.Data)
	assert.False(t, got.Displayable())
}

func TestNormalizeDirectShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StructuredData
	}{
		{
			name: "comparison alias",
			raw:  `{"greeting":"Hi","comparison":"X"}`,
			want: StructuredData{Greeting: "Hi", ComparisonNotes: "X"},
		},
		{
			name: "non string comparison ignored",
			raw:  `{"greeting":"Hi","comparison":{"a":1}}`,
			want: StructuredData{Greeting: "Hi"},
		},
		{
			name: "fields under data",
			raw:  `{"data":{"greeting":"Nested","next_steps":"Reply","comparison_notes":"Notes"}}`,
			want: StructuredData{Greeting: "Nested", NextSteps: "Reply", ComparisonNotes: "Notes"},
		},
		{
			name: "top level wins over data",
			raw:  `{"greeting":"Top","data":{"greeting":"Nested","email_acknowledgment":"Sent!"}}`,
			want: StructuredData{Greeting: "Top", EmailAcknowledgment: "Sent!"},
		},
		{
			name: "recommendations only",
			raw:  `{"recommendations":[{"product_name":"Teams","price":"Free"}]}`,
			want: StructuredData{Recommendations: []Recommendation{{ProductName: "Teams", Price: "Free"}}},
		},
		{
			name: "top level non array does not fall back",
			raw:  `{"greeting":"Hi","recommendations":"soon","data":{"recommendations":[{"product_name":"Nested"}]}}`,
			want: StructuredData{Greeting: "Hi"},
		},
		{
			name: "string booleans",
			raw:  `{"greeting":"Hi","summary_sent":"true","ticket_sent":"nope","email_recipient":"me@example.com"}`,
			want: StructuredData{Greeting: "Hi", SummaryEmailSent: true, EmailRecipient: "me@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			require.NotNil(t, got.Data)
			assert.Equal(t, ShapeDirect, got.Shape)
			assert.Equal(t, tt.want, *got.Data)
			assert.Empty(t, got.RawText)
		})
	}
}

func TestNormalizeDirectSummary(t *testing.T) {
	got := Normalize(map[string]any{"summary": "Short", "greeting": "Hello"})
	assert.Equal(t, "Short", got.Summary)
	assert.Equal(t, "Hello", got.Data.Greeting)
}

func TestNormalizeResultHoldingEncodedObject(t *testing.T) {
	inner := `{"summary":"S","data":{"greeting":"Encoded"}}`
	got := Normalize(map[string]any{"result": inner})
	require.NotNil(t, got.Data)
	assert.Equal(t, "S", got.Summary)
	assert.Equal(t, "Encoded", got.Data.Greeting)
}

func TestNormalizeIsStableUnderRewrapping(t *testing.T) {
	first := Normalize(`{"result":{"summary":"S","data":{"greeting":"G","comparison":"C","recommendations":[{"product_name":"P","why_its_a_fit":"W"}],"clarifying_questions":["Q1"],"ticket_sent":true}}}`)
	require.NotNil(t, first.Data)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(encoded, &asMap))

	second := Normalize(map[string]any{"result": asMap})
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, *first.Data, *second.Data)

	// Same thing through a JSON-encoded string envelope.
	wrapped, err := json.Marshal(map[string]any{"result": asMap})
	require.NoError(t, err)
	third := Normalize(string(wrapped))
	assert.Equal(t, *first.Data, *third.Data)
}

func TestNormalizeDepthBound(t *testing.T) {
	encoded := `{"message":"deep"}`
	for i := 0; i < 3; i++ {
		b, err := json.Marshal(encoded)
		require.NoError(t, err)
		encoded = string(b)
	}

	// Four decodes are needed and four are allowed.
	assert.Equal(t, "deep", Normalize(encoded).RawText)

	b, err := json.Marshal(encoded)
	require.NoError(t, err)
	tooDeep := string(b)

	var got ParsedResponse
	require.NotPanics(t, func() { got = Normalize(tooDeep) })
	assert.Equal(t, ShapeText, got.Shape)
	assert.Equal(t, `{"message":"deep"}`, got.RawText)

	shallow := Normalizer{MaxDepth: 1}.Normalize(tooDeep)
	assert.Equal(t, ShapeText, shallow.Shape)
	assert.NotEqual(t, "deep", shallow.RawText)
}

func TestNormalizeJSONBody(t *testing.T) {
	got := NormalizeJSON([]byte(`{"result":{"data":{"greeting":"from body"}}}`))
	require.NotNil(t, got.Data)
	assert.Equal(t, "from body", got.Data.Greeting)

	assert.Equal(t, "No response received.", NormalizeJSON(nil).RawText)
}

func TestStructuredDataMessages(t *testing.T) {
	var nilData *StructuredData
	assert.False(t, nilData.HasContent())
	assert.Empty(t, nilData.TicketMessage())
	assert.Empty(t, nilData.EmailMessage())

	d := &StructuredData{TicketSent: true}
	assert.True(t, d.HasContent())
	assert.Equal(t, "A product request ticket has been submitted. Our team will review your request and follow up.", d.TicketMessage())

	d = &StructuredData{TicketNotification: "Ticket #12 opened"}
	assert.Equal(t, "Ticket #12 opened", d.TicketMessage())

	d = &StructuredData{SummaryEmailSent: true}
	assert.Equal(t, "Conversation summary has been sent to your email.", d.EmailMessage())
	d.EmailRecipient = "me@example.com"
	assert.Equal(t, "Conversation summary has been sent to me@example.com.", d.EmailMessage())
	d.EmailAcknowledgment = "Summary mailed."
	assert.Equal(t, "Summary mailed.", d.EmailMessage())
}

func TestReadMetadata(t *testing.T) {
	now := time.Date(2024, 6, 13, 15, 20, 0, 0, time.UTC)

	meta := ReadMetadata(map[string]any{
		"metadata": map[string]any{"agent_name": "Advisor", "timestamp": "2024-06-13T15:19:00Z"},
	}, "Default", now)
	assert.Equal(t, AgentMetadata{AgentName: "Advisor", Timestamp: "2024-06-13T15:19:00Z"}, meta)

	meta = ReadMetadata("plain text", "Default", now)
	assert.Equal(t, AgentMetadata{AgentName: "Default", Timestamp: "2024-06-13T15:20:00Z"}, meta)

	meta = ReadMetadata(map[string]any{"metadata": "broken"}, "Default", now)
	assert.Equal(t, "Default", meta.AgentName)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "wrapped", ShapeWrapped.String())
	assert.Equal(t, "plain_field", ShapePlainField.String())
	assert.Equal(t, "shape(42)", Shape(42).String())
}
