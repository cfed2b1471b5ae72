package pages

import (
	"sort"
	"strings"

	"product-advisor/web/types"
)

// ChatView is everything the advisor page needs.
type ChatView struct {
	AgentID    string
	AgentName  string
	Messages   []types.ChatMessage
	Sample     bool
	Theme      map[string]string
	Prompts    []string
	HasHistory bool
}

// themeStyle emits the theme as a :root style block.
func themeStyle(theme map[string]string) string {
	return "<style>:root{" + themeCSS(theme) + "}</style>"
}

// themeCSS renders the theme as CSS custom properties in a stable order.
func themeCSS(theme map[string]string) string {
	keys := make([]string, 0, len(theme))
	for k := range theme {
		if strings.HasPrefix(k, "--") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(cssValue(theme[k]))
		b.WriteString(";")
	}
	return b.String()
}

// cssValue drops characters that could end the declaration or the style block.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\':
			return -1
		}
		return r
	}, v)
}
