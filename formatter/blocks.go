package formatter

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockSideEffects
)

// String returns the wire name of the kind.
func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockSideEffects:
		return "side_effects"
	default:
		return "paragraph"
	}
}

// Block is one display unit produced from one response line.
type Block interface {
	Kind() BlockKind
}

// Heading is a line ending with a colon, kept verbatim.
type Heading struct {
	Text string
}

func (Heading) Kind() BlockKind { return BlockHeading }

// SideEffectsGroup holds the side-effect names of a "Common side effects
// include" line, pre-split into chunks for bounded-height rendering.
type SideEffectsGroup struct {
	Chunks []string
}

func (SideEffectsGroup) Kind() BlockKind { return BlockSideEffects }

// Paragraph is any other line, split into emphasis spans.
type Paragraph struct {
	Spans []Span
}

func (Paragraph) Kind() BlockKind { return BlockParagraph }
