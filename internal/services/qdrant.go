package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// IndexedChunk is a unit of retrievable knowledge: fragment text plus
// the metadata retrieval filters and reordering depend on.
type IndexedChunk struct {
	Text         string
	DocumentType string
	Filename     string
	ChunkIndex   int
}

type ScoredChunk struct {
	IndexedChunk
	Score float32
}

// VectorIndex is the similarity-index contract against one fixed
// collection. Search returns raw nearest neighbours; type filtering
// and reordering happen in the retriever, not here.
type VectorIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []IndexedChunk, embeddings [][]float32) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]ScoredChunk, error)
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string) (VectorIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimensionality
	}, nil
}

// InitCollection implements VectorIndex.
func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunks implements VectorIndex.
func (q *qdrantIndex) UpsertChunks(ctx context.Context, chunks []IndexedChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatch: got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":          chunk.Text,
				"document_type": chunk.DocumentType,
				"filename":      chunk.Filename,
				"chunk_index":   int64(chunk.ChunkIndex),
			}),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search implements VectorIndex.
func (q *qdrantIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]ScoredChunk, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]ScoredChunk, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload

		results = append(results, ScoredChunk{
			IndexedChunk: IndexedChunk{
				Text:         payload["text"].GetStringValue(),
				DocumentType: payload["document_type"].GetStringValue(),
				Filename:     payload["filename"].GetStringValue(),
				ChunkIndex:   int(payload["chunk_index"].GetIntegerValue()),
			},
			Score: point.Score,
		})
	}

	return results, nil
}
