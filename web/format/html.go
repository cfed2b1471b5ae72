package format

import (
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const inlineRenderFlags = html.SkipHTML | html.Safelink | html.NofollowLinks |
	html.NoreferrerLinks | html.NoopenerLinks | html.HrefTargetBlank

// InlineHTML renders the inline spans of a single line (bold, emphasis, code
// and links) to HTML. Raw HTML in the input is dropped, never passed through.
func InlineHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return template.HTMLEscapeString(text)
	}

	// A parser cannot be reused across documents.
	p := parser.NewWithExtensions(parser.CommonExtensions &^ parser.MathJax)
	renderer := html.NewRenderer(html.RendererOptions{Flags: inlineRenderFlags})
	out := strings.TrimSpace(string(markdown.ToHTML([]byte(text), p, renderer)))

	// A lone line renders as a single paragraph; anything else means the line
	// looked like a block construct (quote, rule, code) and is shown as text.
	inner, ok := strings.CutPrefix(out, "<p>")
	if !ok {
		return template.HTMLEscapeString(text)
	}
	inner, ok = strings.CutSuffix(inner, "</p>")
	if !ok || strings.Contains(inner, "<p>") {
		return template.HTMLEscapeString(text)
	}
	return inner
}
