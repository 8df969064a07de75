package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"prasetya/candidate-evaluator/internal/apperrors"
)

type fakeLLM struct {
	embedErr          error
	textOut           string
	textErr           error
	textPrompts       []string
	structuredErr     error
	structuredOut     string
	structuredPrompts []string
}

func (f *fakeLLM) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.textPrompts = append(f.textPrompts, prompt)
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textOut, nil
}

func (f *fakeLLM) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error {
	f.structuredPrompts = append(f.structuredPrompts, prompt)
	if f.structuredErr != nil {
		return f.structuredErr
	}
	return unmarshalStructured(f.structuredOut, out)
}

type fakePDFParser struct {
	text string
	err  error
}

func (f *fakePDFParser) ExtractText(filePath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeVectorIndex struct {
	upsertedChunks []IndexedChunk
	upsertedVecs   [][]float32
	upsertErr      error
	searchResults  []ScoredChunk
	searchErr      error
	searchLimit    int
}

func (f *fakeVectorIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeVectorIndex) UpsertChunks(ctx context.Context, chunks []IndexedChunk, embeddings [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertedChunks = append(f.upsertedChunks, chunks...)
	f.upsertedVecs = append(f.upsertedVecs, embeddings...)
	return nil
}

func (f *fakeVectorIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]ScoredChunk, error) {
	f.searchLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func scored(text, docType string, chunkIndex int, score float32) ScoredChunk {
	return ScoredChunk{
		IndexedChunk: IndexedChunk{
			Text:         text,
			DocumentType: docType,
			Filename:     "ref.pdf",
			ChunkIndex:   chunkIndex,
		},
		Score: score,
	}
}

func TestKnowledgeIngest_ChunksAndIndexes(t *testing.T) {
	t.Parallel()

	index := &fakeVectorIndex{}
	llm := &fakeLLM{}
	parser := &fakePDFParser{text: numberedWords(500)}
	svc := NewKnowledgeService(index, llm, parser, NewTextChunker(ChunkSize, ChunkOverlap))

	count, err := svc.Ingest(context.Background(), DocTypeScoringRubric, "/tmp/rubric.pdf", "rubric.pdf")
	require.NoError(t, err)
	require.Greater(t, count, 1)
	require.Len(t, index.upsertedChunks, count)
	require.Len(t, index.upsertedVecs, count)

	for i, chunk := range index.upsertedChunks {
		assert.Equal(t, DocTypeScoringRubric, chunk.DocumentType)
		assert.Equal(t, "rubric.pdf", chunk.Filename)
		assert.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestKnowledgeIngest_ParserFailure(t *testing.T) {
	t.Parallel()

	svc := NewKnowledgeService(&fakeVectorIndex{}, &fakeLLM{}, &fakePDFParser{err: errors.New("corrupt pdf")}, NewTextChunker(ChunkSize, ChunkOverlap))

	_, err := svc.Ingest(context.Background(), DocTypeScoringRubric, "/tmp/rubric.pdf", "rubric.pdf")
	assert.ErrorIs(t, err, apperrors.ErrIndexWrite)
}

func TestKnowledgeIngest_EmptyDocument(t *testing.T) {
	t.Parallel()

	svc := NewKnowledgeService(&fakeVectorIndex{}, &fakeLLM{}, &fakePDFParser{text: "   "}, NewTextChunker(ChunkSize, ChunkOverlap))

	_, err := svc.Ingest(context.Background(), DocTypeScoringRubric, "/tmp/rubric.pdf", "rubric.pdf")
	assert.ErrorIs(t, err, apperrors.ErrIndexWrite)
}

func TestKnowledgeQuery_FiltersAndRestoresDocumentOrder(t *testing.T) {
	t.Parallel()

	// Similarity order: chunk 4 first, then an off-type hit, then
	// chunks 1 and 2.
	index := &fakeVectorIndex{searchResults: []ScoredChunk{
		scored("fourth", DocTypeScoringRubric, 4, 0.95),
		scored("noise", DocTypeJobDescription, 0, 0.90),
		scored("first", DocTypeScoringRubric, 1, 0.85),
		scored("second", DocTypeScoringRubric, 2, 0.80),
	}}
	llm := &fakeLLM{textOut: "summary of the rubric"}
	svc := NewKnowledgeService(index, llm, &fakePDFParser{}, NewTextChunker(ChunkSize, ChunkOverlap))

	summary, err := svc.Query(context.Background(), "cv scoring rubric", DocTypeScoringRubric)
	require.NoError(t, err)
	assert.Equal(t, "summary of the rubric", summary)
	assert.Equal(t, retrievalTopK, index.searchLimit)

	require.Len(t, llm.textPrompts, 1)
	prompt := llm.textPrompts[0]
	assert.NotContains(t, prompt, "noise")

	// Survivors are concatenated in original document order.
	joined := "first\n---\nsecond\n---\nfourth"
	assert.Contains(t, prompt, joined)
}

func TestKnowledgeQuery_NoFilterKeepsEverything(t *testing.T) {
	t.Parallel()

	index := &fakeVectorIndex{searchResults: []ScoredChunk{
		scored("alpha", DocTypeScoringRubric, 0, 0.9),
		scored("beta", DocTypeJobDescription, 1, 0.8),
	}}
	llm := &fakeLLM{textOut: "mixed summary"}
	svc := NewKnowledgeService(index, llm, &fakePDFParser{}, NewTextChunker(ChunkSize, ChunkOverlap))

	summary, err := svc.Query(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Equal(t, "mixed summary", summary)

	require.Len(t, llm.textPrompts, 1)
	assert.Contains(t, llm.textPrompts[0], "alpha")
	assert.Contains(t, llm.textPrompts[0], "beta")
}

func TestKnowledgeQuery_NoSurvivorsIsEmptyNotError(t *testing.T) {
	t.Parallel()

	index := &fakeVectorIndex{searchResults: []ScoredChunk{
		scored("noise", DocTypeJobDescription, 0, 0.9),
	}}
	llm := &fakeLLM{textOut: "should never be asked"}
	svc := NewKnowledgeService(index, llm, &fakePDFParser{}, NewTextChunker(ChunkSize, ChunkOverlap))

	summary, err := svc.Query(context.Background(), "rubric", DocTypeScoringRubric)
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Empty(t, llm.textPrompts, "summarizer must not run without survivors")
}

func TestKnowledgeQuery_EmbeddingFailure(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{embedErr: errors.New("quota exceeded")}
	svc := NewKnowledgeService(&fakeVectorIndex{}, llm, &fakePDFParser{}, NewTextChunker(ChunkSize, ChunkOverlap))

	_, err := svc.Query(context.Background(), "rubric", DocTypeScoringRubric)
	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
}

func TestKnowledgeQuery_SummarizationFailure(t *testing.T) {
	t.Parallel()

	index := &fakeVectorIndex{searchResults: []ScoredChunk{
		scored("alpha", DocTypeScoringRubric, 0, 0.9),
	}}
	llm := &fakeLLM{textErr: errors.New("model overloaded")}
	svc := NewKnowledgeService(index, llm, &fakePDFParser{}, NewTextChunker(ChunkSize, ChunkOverlap))

	_, err := svc.Query(context.Background(), "rubric", DocTypeScoringRubric)
	assert.ErrorIs(t, err, apperrors.ErrSummarization)
}
