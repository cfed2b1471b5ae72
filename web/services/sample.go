package services

import (
	"time"

	"product-advisor/advisor"
	"product-advisor/web/types"
)

// SuggestedPrompts are offered on the welcome screen.
var SuggestedPrompts = []string{
	"Show me your best sellers",
	"I need help choosing a product",
	"Compare solutions for my team",
	"What's new in your catalog?",
}

// SampleMessages returns a fixed demo conversation shown while a transcript
// is empty and sample mode is on. It is never added to a transcript.
func SampleMessages(agentName string) []types.ChatMessage {
	asked := time.Date(2024, 6, 13, 15, 19, 0, 0, time.UTC)
	answered := time.Date(2024, 6, 13, 15, 20, 0, 0, time.UTC)

	return []types.ChatMessage{
		{
			ID:        "sample-1",
			Role:      types.RoleUser,
			Content:   "I need a solution for team collaboration that supports remote work. What do you recommend?",
			Timestamp: asked,
		},
		{
			ID:   "sample-2",
			Role: types.RoleAgent,
			Parsed: &advisor.ParsedResponse{
				Summary: "Recommended top team collaboration solutions for remote work.",
				Shape:   advisor.ShapeWrapped,
				Data: &advisor.StructuredData{
					Greeting: "Thank you for reaching out! I'd love to help you find the perfect team collaboration solution for remote work.",
					ClarifyingQuestions: []string{
						"Could you share how large your team is?",
						"Are there any specific features you need, such as video conferencing, file sharing, or task management?",
						"Do you have a preferred budget or any existing tools you'd like to integrate with?",
					},
					Recommendations: []advisor.Recommendation{
						{
							ProductName: "Microsoft Teams",
							KeyFeatures: "Integrated chat, video calls, file sharing, calendar, and seamless integration with Office 365 apps.",
							WhyItFits:   "Great for both small and large remote teams, providing robust collaboration tools in one platform. Highly secure and scalable.",
							Price:       "Free version available; paid plans start at $4/user/month.",
						},
						{
							ProductName: "Slack",
							KeyFeatures: "Real-time messaging, channels, rich integration ecosystem, audio/video huddles, and easy file sharing.",
							WhyItFits:   "Excellent for remote teams needing agile communication, with thousands of integrations for workflow automation.",
							Price:       "Free version available; paid plans from $7.25/user/month.",
						},
						{
							ProductName: "Zoom One",
							KeyFeatures: "High-quality video conferencing, chat, collaboration boards, and a marketplace with app integrations.",
							WhyItFits:   "Ideal if your team prioritizes video meetings and needs flexible collaboration tools for remote work.",
							Price:       "Free basic plan; paid plans from $14.99/user/month.",
						},
					},
					ComparisonNotes: "Microsoft Teams offers the broadest suite for collaboration, covering messaging, meetings, and documents. Slack focuses on fast-paced communication and integration flexibility, while Zoom is best for teams with heavy video call requirements.",
					NextSteps:       "Let me know your team size and required features, or if you'd like a deeper comparison between these options!",
				},
			},
			Metadata: &advisor.AgentMetadata{
				AgentName: agentName,
				Timestamp: answered.Format(time.RFC3339),
			},
			Timestamp: answered,
		},
	}
}
