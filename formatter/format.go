package formatter

import (
	"strings"

	"github.com/giygas/druginfo/entities"
)

const (
	// headingSuffix marks a section title line.
	headingSuffix = ":"

	// SideEffectsPrefix introduces the side-effects sentence.
	SideEffectsPrefix = "Common side effects include"

	sideEffectsOpening = SideEffectsPrefix + " **"
	sideEffectsClosing = "**."
)

// Format converts a backend result into display blocks, one per response
// line. A nil result yields no blocks.
func Format(result *entities.DrugInfoResult) []Block {
	if result == nil {
		return []Block{}
	}
	return FormatResponse(result.Response)
}

// FormatResponse classifies every line of response in order: headings
// first, then the side-effects sentence, then plain paragraphs.
func FormatResponse(response string) []Block {
	lines := strings.Split(response, "\n")
	blocks := make([]Block, len(lines))
	for i, line := range lines {
		blocks[i] = formatLine(line)
	}
	return blocks
}

func formatLine(line string) Block {
	switch {
	case strings.HasSuffix(line, headingSuffix):
		return Heading{Text: line}
	case strings.HasPrefix(line, SideEffectsPrefix):
		return SideEffectsGroup{Chunks: chunkEffects(sideEffectsPayload(line), SideEffectsPerChunk)}
	default:
		return Paragraph{Spans: ParseEmphasis(line)}
	}
}

// sideEffectsPayload strips the first occurrence of the opening and closing
// fragments. A missing fragment leaves the text untouched.
func sideEffectsPayload(line string) string {
	payload := strings.Replace(line, sideEffectsOpening, "", 1)
	return strings.Replace(payload, sideEffectsClosing, "", 1)
}
