package formatter

import "strings"

const (
	// SideEffectSeparator separates effect names in the side-effects sentence.
	SideEffectSeparator = ", "

	// SideEffectsPerChunk is the number of effect names per display chunk.
	SideEffectsPerChunk = 10
)

// chunkEffects splits payload on ", " and re-joins the names in groups of
// size. The last group holds the remainder.
func chunkEffects(payload string, size int) []string {
	effects := strings.Split(payload, SideEffectSeparator)
	chunks := make([]string, 0, (len(effects)+size-1)/size)
	for start := 0; start < len(effects); start += size {
		end := min(start+size, len(effects))
		chunks = append(chunks, strings.Join(effects[start:end], SideEffectSeparator))
	}
	return chunks
}
