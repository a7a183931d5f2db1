// Package formatter turns the free-text drug descriptions returned by the
// inference backend into ordered display blocks.
//
// The backend writes one statement per line, marks highlighted words with
// paired ** markers, ends section titles with a colon and lists side effects
// in a single "Common side effects include **a, b, c**." sentence. Format
// recognises exactly those conventions and nothing else.
package formatter

import "strings"

// EmphasisMarker brackets emphasized text inside a line.
const EmphasisMarker = "**"

// SpanKind tells plain text from emphasized text.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanEmphasized
)

// String returns the wire name of the kind.
func (k SpanKind) String() string {
	if k == SpanEmphasized {
		return "emphasized"
	}
	return "plain"
}

// Span is a run of text with a single emphasis kind.
type Span struct {
	Kind SpanKind
	Text string
}

// ParseEmphasis splits line on every ** marker. Segments at even positions
// are plain and segments at odd positions are emphasized. Empty segments are
// kept so that positions stay aligned with the split.
//
// Classification is purely positional: with an odd number of markers the
// text after the last marker is still classified by its position, which can
// leave an unmatched tail emphasized.
func ParseEmphasis(line string) []Span {
	parts := strings.Split(line, EmphasisMarker)
	spans := make([]Span, len(parts))
	for i, part := range parts {
		kind := SpanPlain
		if i%2 == 1 {
			kind = SpanEmphasized
		}
		spans[i] = Span{Kind: kind, Text: part}
	}
	return spans
}

// PlainText concatenates span texts, dropping the kinds.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
