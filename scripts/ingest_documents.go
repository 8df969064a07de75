package main

import (
	"context"
	"log"
	"os"

	"prasetya/candidate-evaluator/internal/config"
	"prasetya/candidate-evaluator/internal/services"
)

// Seeds the vector index from the reference PDFs on disk. Run once
// before serving evaluations, or again after the rubrics change.
func main() {
	log.Println("🚀 Starting document ingestion...")

	// Load configuration
	cfg := config.Load()

	// Initialize services
	llm, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	vectorIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()

	if err := vectorIndex.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker(services.ChunkSize, services.ChunkOverlap)
	knowledge := services.NewKnowledgeService(vectorIndex, llm, pdfParser, chunker)

	documents := []struct {
		Path    string
		DocType string
		Name    string
	}{
		{
			Path:    "./reference_docs/job_description.pdf",
			DocType: services.DocTypeJobDescription,
			Name:    "Job Description - Product Engineer (Backend)",
		},
		{
			Path:    "./reference_docs/case_study_brief.pdf",
			DocType: services.DocTypeCaseStudyBrief,
			Name:    "Case Study Brief",
		},
		{
			Path:    "./reference_docs/cv_scoring_rubric.pdf",
			DocType: services.DocTypeScoringRubric,
			Name:    "CV Scoring Rubric",
		},
		{
			Path:    "./reference_docs/project_scoring_rubric.pdf",
			DocType: services.DocTypeScoringRubric,
			Name:    "Project Scoring Rubric",
		},
	}

	successCount := 0
	failCount := 0

	for _, doc := range documents {
		log.Printf("\n📄 Processing: %s", doc.Name)
		log.Printf("   Path: %s", doc.Path)
		log.Printf("   Type: %s", doc.DocType)

		// Check if file exists
		if _, err := os.Stat(doc.Path); os.IsNotExist(err) {
			log.Printf("   ⚠️  File not found, skipping...")
			failCount++
			continue
		}

		chunkCount, err := knowledge.Ingest(ctx, doc.DocType, doc.Path, doc.Name)
		if err != nil {
			log.Printf("   ❌ Failed to ingest: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Indexed %d chunks", chunkCount)
		successCount++
	}

	log.Printf("\n🏁 Ingestion finished: %d succeeded, %d failed", successCount, failCount)
	if failCount > 0 {
		os.Exit(1)
	}
}
