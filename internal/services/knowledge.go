package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"prasetya/candidate-evaluator/internal/apperrors"
)

// Fixed retrieval width. Filtering by document type happens after the
// similarity search, so K stays the same regardless of filter.
const retrievalTopK = 10

const chunkSeparator = "\n---\n"

// KnowledgeService ingests reference documents (rubrics, job
// descriptions, case-study briefs) into the similarity index and
// answers natural-language queries with an LLM summary of the
// retrieved chunks.
type KnowledgeService interface {
	Ingest(ctx context.Context, documentType, pdfPath, filename string) (int, error)
	Query(ctx context.Context, query, typeFilter string) (string, error)
}

type knowledgeService struct {
	index     VectorIndex
	llm       LLMClient
	pdfParser PDFParserService
	chunker   TextChunker
	prompts   *PromptBuilder
}

func NewKnowledgeService(
	index VectorIndex,
	llm LLMClient,
	pdfParser PDFParserService,
	chunker TextChunker,
) KnowledgeService {
	return &knowledgeService{
		index:     index,
		llm:       llm,
		pdfParser: pdfParser,
		chunker:   chunker,
		prompts:   NewPromptBuilder(),
	}
}

// Ingest implements KnowledgeService. Re-ingesting the same file
// appends duplicate chunks; the index is not deduplicated.
func (k *knowledgeService) Ingest(ctx context.Context, documentType, pdfPath, filename string) (int, error) {
	text, err := k.pdfParser.ExtractText(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to load document text: %v", apperrors.ErrIndexWrite, err)
	}

	pieces := k.chunker.Split(text)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("%w: document produced no chunks", apperrors.ErrIndexWrite)
	}

	chunks := make([]IndexedChunk, len(pieces))
	embeddings := make([][]float32, len(pieces))
	for i, piece := range pieces {
		chunks[i] = IndexedChunk{
			Text:         piece.Text,
			DocumentType: documentType,
			Filename:     filename,
			ChunkIndex:   piece.Index,
		}

		embedding, err := k.llm.GenerateEmbedding(ctx, piece.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to embed chunk %d: %v", apperrors.ErrIndexWrite, piece.Index, err)
		}
		embeddings[i] = embedding
	}

	if err := k.index.UpsertChunks(ctx, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrIndexWrite, err)
	}

	log.Printf("📚 Ingested %d chunks from %s (%s)\n", len(chunks), filename, documentType)
	return len(chunks), nil
}

// Query implements KnowledgeService. Chunks that survive the type
// filter are re-sorted by their original position: similarity order is
// meaningless once the texts are concatenated for summarization.
func (k *knowledgeService) Query(ctx context.Context, query, typeFilter string) (string, error) {
	embedding, err := k.llm.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: failed to embed query: %v", apperrors.ErrRetrieval, err)
	}

	results, err := k.index.Search(ctx, embedding, retrievalTopK)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRetrieval, err)
	}

	var survivors []ScoredChunk
	for _, result := range results {
		if typeFilter != "" && result.DocumentType != typeFilter {
			continue
		}
		survivors = append(survivors, result)
	}

	// Nothing relevant is an empty summary, not an error.
	if len(survivors) == 0 {
		log.Printf("🔍 No chunks matched query %q with filter %q\n", query, typeFilter)
		return "", nil
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].ChunkIndex < survivors[j].ChunkIndex
	})

	texts := make([]string, len(survivors))
	for i, chunk := range survivors {
		texts[i] = chunk.Text
	}

	prompt := k.prompts.BuildSummarizerPrompt(query, strings.Join(texts, chunkSeparator))
	summary, err := k.llm.GenerateText(ctx, prompt, 0.2)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSummarization, err)
	}

	return strings.TrimSpace(summary), nil
}
