package services

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// LLMClient is the single model capability the pipeline depends on.
// One client is constructed at startup and injected everywhere; no
// service creates its own connection per call.
type LLMClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	// GenerateStructured asks the model for output conforming to
	// schema and unmarshals it into out. Constrained decoding is the
	// provider's concern; this either yields conforming data or fails.
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey, modelName, embedModel string) (LLMClient, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements LLMClient.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate overly long inputs; the embedding model caps out far
	// below full document length anyway.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements LLMClient.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateStructured implements LLMClient.
func (g *geminiService) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return fmt.Errorf("failed to generate structured output: %w", err)
	}

	if resp == nil {
		return fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return fmt.Errorf("no text content in response")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("response does not conform to schema: %w", err)
	}

	return nil
}
