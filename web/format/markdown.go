package format

import (
	"regexp"
	"strings"
)

var numberedItem = regexp.MustCompile(`^\d+\.\s`)

// ParseBlocks splits text into one block per line. Only line starts are
// inspected: "# ", "## " and "### " headings, "- " and "* " bullets, "N. "
// numbered items and blank spacers. Every other line is a paragraph.
// Empty text yields no blocks.
func ParseBlocks(text string) []Block {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, parseLine(strings.TrimSuffix(line, "\r")))
	}
	return blocks
}

func parseLine(line string) Block {
	for _, h := range headingPrefixes {
		if rest, ok := strings.CutPrefix(line, h.prefix); ok {
			return Block{Kind: BlockHeading, Level: h.level, Text: rest}
		}
	}
	for _, p := range bulletPrefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return Block{Kind: BlockBullet, Text: rest}
		}
	}
	if loc := numberedItem.FindStringIndex(line); loc != nil {
		return Block{Kind: BlockNumbered, Text: line[loc[1]:]}
	}
	if strings.TrimSpace(line) == "" {
		return Block{Kind: BlockSpacer}
	}
	return Block{Kind: BlockParagraph, Text: line}
}
