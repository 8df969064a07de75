package services

import (
	"strings"
	"unicode"
)

// Chunking policy for ingested reference documents. Fixed, not
// configurable per call.
const (
	ChunkSize    = 800
	ChunkOverlap = 200
)

// Chunk is one retrievable fragment. Index preserves the fragment's
// position in the source document so retrieval results can be put
// back into reading order.
type Chunk struct {
	Text  string
	Index int
}

type TextChunker interface {
	Split(text string) []Chunk
}

type textChunker struct {
	size    int
	overlap int
}

func NewTextChunker(size, overlap int) TextChunker {
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	return &textChunker{size: size, overlap: overlap}
}

// Split implements TextChunker. The text is cut into windows of at
// most size runes, each starting overlap runes before the end of the
// previous one. Cuts prefer the last whitespace inside the window so
// words stay intact.
func (tc *textChunker) Split(text string) []Chunk {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	step := tc.size - tc.overlap
	index := 0

	for start := 0; start < len(runes); start += step {
		end := start + tc.size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastWhitespace(runes, start, end); cut > start {
			end = cut
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, Chunk{Text: piece, Index: index})
			index++
		}

		if end == len(runes) {
			break
		}
		// Advance relative to the actual cut, not the nominal window
		step = end - start - tc.overlap
		if step <= 0 {
			step = end - start
		}
	}

	return chunks
}

// lastWhitespace returns the position of the last whitespace rune in
// the trailing quarter of the window, or end when there is none.
func lastWhitespace(runes []rune, start, end int) int {
	limit := end - (end-start)/4
	for i := end - 1; i >= limit; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}
