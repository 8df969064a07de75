package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "w%04d ", i)
	}
	return sb.String()
}

func TestChunker_EmptyInput(t *testing.T) {
	t.Parallel()
	chunker := NewTextChunker(ChunkSize, ChunkOverlap)

	assert.Nil(t, chunker.Split(""))
	assert.Nil(t, chunker.Split("   \n\t  "))
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	t.Parallel()
	chunker := NewTextChunker(ChunkSize, ChunkOverlap)

	chunks := chunker.Split("a short reference document")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short reference document", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunker_WindowsRespectSizeAndOrder(t *testing.T) {
	t.Parallel()
	chunker := NewTextChunker(ChunkSize, ChunkOverlap)

	chunks := chunker.Split(numberedWords(1000))
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len([]rune(chunk.Text)), ChunkSize)
		assert.NotEmpty(t, chunk.Text)
	}
}

func TestChunker_ConsecutiveChunksOverlap(t *testing.T) {
	t.Parallel()
	chunker := NewTextChunker(ChunkSize, ChunkOverlap)

	chunks := chunker.Split(numberedWords(1000))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		firstWord := strings.Fields(chunks[i].Text)[0]
		assert.Contains(t, chunks[i-1].Text, firstWord,
			"chunk %d should start inside the tail of chunk %d", i, i-1)
	}
}

func TestChunker_CutsOnWhitespace(t *testing.T) {
	t.Parallel()
	chunker := NewTextChunker(ChunkSize, ChunkOverlap)

	chunks := chunker.Split(numberedWords(1000))
	require.Greater(t, len(chunks), 1)

	// Every numbered word is 5 runes. Cuts land on whitespace, so no
	// chunk may end mid-word.
	for _, chunk := range chunks {
		fields := strings.Fields(chunk.Text)
		require.NotEmpty(t, fields)
		assert.Len(t, fields[len(fields)-1], 5)
	}
}

func TestChunker_DegenerateConfigFallsBack(t *testing.T) {
	t.Parallel()

	// overlap >= size must not loop forever
	chunker := NewTextChunker(100, 100)
	chunks := chunker.Split(numberedWords(200))
	assert.NotEmpty(t, chunks)

	chunker = NewTextChunker(0, -5)
	chunks = chunker.Split(numberedWords(200))
	assert.NotEmpty(t, chunks)
}
