// Package render draws formatted drug documents for the terminal.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/giygas/druginfo/formatter"
)

// SideEffectsLabel is shown above the boxed side-effect chunks
const SideEffectsLabel = "Common side effects include:"

// MaxVisibleChunks caps how many chunks the side-effects box shows.
// Names past the cap are summarized on one trailing line.
const MaxVisibleChunks = 5

// minWidth keeps boxes drawable on very narrow terminals
const minWidth = 20

// Renderer renders documents at a fixed width
type Renderer struct {
	width  int
	styles styles
}

// NewRenderer returns a renderer wrapping text at width columns
func NewRenderer(width int) *Renderer {
	width = max(width, minWidth)
	return &Renderer{width: width, styles: newStyles(width)}
}

// Width returns the wrap width
func (r *Renderer) Width() int {
	return r.width
}

// RenderDocument renders the title followed by every block in order
func (r *Renderer) RenderDocument(doc formatter.Document) string {
	parts := make([]string, 0, len(doc.Blocks)+1)
	parts = append(parts, r.styles.title.Render(doc.Title()))
	for _, b := range doc.Blocks {
		parts = append(parts, r.RenderBlock(b))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderBlock renders one block
func (r *Renderer) RenderBlock(b formatter.Block) string {
	switch block := b.(type) {
	case formatter.Heading:
		return r.styles.heading.Render(block.Text)
	case formatter.SideEffectsGroup:
		return lipgloss.JoinVertical(lipgloss.Left,
			r.styles.effectsLabel.Render(SideEffectsLabel),
			r.styles.effectsBox.Render(strings.Join(visibleChunks(block.Chunks), "\n")),
		)
	case formatter.Paragraph:
		return r.styles.paragraph.Render(r.renderSpans(block.Spans))
	default:
		return ""
	}
}

// visibleChunks returns at most MaxVisibleChunks chunks plus a line counting
// the names left out
func visibleChunks(chunks []string) []string {
	if len(chunks) <= MaxVisibleChunks {
		return chunks
	}
	hidden := 0
	for _, c := range chunks[MaxVisibleChunks:] {
		hidden += len(strings.Split(c, formatter.SideEffectSeparator))
	}
	out := make([]string, 0, MaxVisibleChunks+1)
	out = append(out, chunks[:MaxVisibleChunks]...)
	return append(out, "and "+strconv.Itoa(hidden)+" more")
}

func (r *Renderer) renderSpans(spans []formatter.Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == formatter.SpanEmphasized && s.Text != "" {
			b.WriteString(r.styles.emphasized.Render(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// RenderError renders a failure message in a red box
func (r *Renderer) RenderError(msg string) string {
	return r.styles.errorBox.Render(msg)
}
