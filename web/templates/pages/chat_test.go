package pages

import (
	"bytes"
	"context"
	"testing"

	"product-advisor/advisor"
	"product-advisor/web/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, view ChatView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ChatPage(view).Render(context.Background(), &buf))
	return buf.String()
}

func TestChatPageWelcome(t *testing.T) {
	out := renderPage(t, ChatView{
		AgentID:   "agent-1",
		AgentName: "Product Recommendation Agent",
		Theme:     map[string]string{"--primary": "160 85% 35%", "--background": "160 35% 96%", "color": "red"},
		Prompts:   []string{"Show me your best sellers", "What's new in your catalog?"},
	})

	assert.Contains(t, out, "<h1 class=\"text-lg font-semibold text-foreground tracking-tight\">Product Advisor</h1>")
	assert.Contains(t, out, "AI-powered product recommendations")
	assert.Contains(t, out, "Welcome to Product Advisor")
	assert.Contains(t, out, "Show me your best sellers")
	assert.Contains(t, out, "What&#39;s new in your catalog?")
	assert.Contains(t, out, ":root{--background:160 35% 96%;--primary:160 85% 35%;}")
	assert.NotContains(t, out, "color:red")
	assert.Contains(t, out, `id="email-bar" class="px-4 py-2 border-t border-border/50 bg-card/60" hidden`)
}

func TestChatPageWithMessages(t *testing.T) {
	out := renderPage(t, ChatView{
		AgentName:  "Product Recommendation Agent",
		HasHistory: true,
		Messages: []types.ChatMessage{
			{ID: "1", Role: types.RoleUser, Content: "hello"},
			{ID: "2", Role: types.RoleAgent, Parsed: &advisor.ParsedResponse{RawText: "Hi!"}},
		},
	})

	assert.NotContains(t, out, "Welcome to Product Advisor")
	assert.Contains(t, out, `id="msg-1"`)
	assert.Contains(t, out, `id="msg-2"`)
	assert.Contains(t, out, "Hi!")
	assert.NotContains(t, out, `bg-card/60" hidden`)
}

func TestThemeCSSStripsUnsafeCharacters(t *testing.T) {
	assert.Equal(t, "--x:red/style;", themeCSS(map[string]string{"--x": "red;}</style>"}))
}
