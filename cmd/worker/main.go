package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"prasetya/candidate-evaluator/internal/config"
	"prasetya/candidate-evaluator/internal/repositories"
	"prasetya/candidate-evaluator/internal/services"
)

// Standalone consumer binary. Runs the same evaluation pipeline as the
// in-process worker in the API binary, but can be scaled out
// independently when the queue backs up.
func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	docRepo := repositories.NewDocumentRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)

	blobs, err := services.NewLocalBlobStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize blob storage: %v", err)
	}
	docStorage := services.NewDocumentStorageService(blobs, docRepo)
	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker(services.ChunkSize, services.ChunkOverlap)

	llm, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}

	vectorIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := vectorIndex.InitCollection(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}

	knowledge := services.NewKnowledgeService(vectorIndex, llm, pdfParser, chunker)
	extractor := services.NewExtractionService(docStorage, pdfParser, llm)
	sink := services.NewEvaluationRecorder(evalRepo)
	scorer := services.NewScoringService(extractor, knowledge, llm, sink)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	queue := services.NewRedisJobQueue(redisClient, cfg.Redis.QueueKey)

	jobService := services.NewJobService(jobRepo, queue)

	worker := services.NewWorker(
		queue,
		jobService,
		scorer,
		cfg.Worker.Concurrency,
		cfg.Worker.JobTimeout,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down worker...")
	cancel()
	worker.Stop()
}
