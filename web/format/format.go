package format

// BlockKind identifies how a single line of agent text is displayed.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
	BlockNumbered
	BlockSpacer
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockBullet:
		return "bullet"
	case BlockNumbered:
		return "numbered"
	case BlockSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Block is one rendered line. Level is set for headings only (1 to 3).
// Text has the line marker removed.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// Heading prefixes, longest first so "### " is not read as "# ".
var headingPrefixes = []struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

var bulletPrefixes = []string{"- ", "* "}
