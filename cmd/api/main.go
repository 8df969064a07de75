package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"prasetya/candidate-evaluator/internal/config"
	"prasetya/candidate-evaluator/internal/handlers"
	"prasetya/candidate-evaluator/internal/repositories"
	"prasetya/candidate-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	blobs, err := services.NewLocalBlobStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize blob storage: %v", err)
	}
	docStorage := services.NewDocumentStorageService(blobs, docRepo)

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker(services.ChunkSize, services.ChunkOverlap)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	llm, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
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
	log.Println("✅ Qdrant initialized successfully")

	knowledge := services.NewKnowledgeService(vectorIndex, llm, pdfParser, chunker)

	// Initialize scoring pipeline
	extractor := services.NewExtractionService(docStorage, pdfParser, llm)
	sink := services.NewEvaluationRecorder(evalRepo)
	scorer := services.NewScoringService(extractor, knowledge, llm, sink)
	log.Println("✅ Scoring pipeline initialized")

	// Initialize queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	queue := services.NewRedisJobQueue(redisClient, cfg.Redis.QueueKey)
	log.Println("✅ Redis queue initialized successfully")

	jobService := services.NewJobService(jobRepo, queue)

	// Initialize worker
	worker := services.NewWorker(
		queue,
		jobService,
		scorer,
		cfg.Worker.Concurrency,
		cfg.Worker.JobTimeout,
	)

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(docStorage, cfg.Storage.MaxFileSize)
	evaluateHandler := handlers.NewEvaluateHandler(docStorage, jobService)
	resultHandler := handlers.NewResultHandler(jobService)
	internalDocsHandler := handlers.NewInternalDocumentsHandler(knowledge)
	testHandler := handlers.NewTestEvaluationHandler(scorer)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Candidate Evaluator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.NewErrorHandler(cfg.Server.Env),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Post("/internal-documents/upload", internalDocsHandler.HandleUpload)
	api.Get("/internal-documents/search", internalDocsHandler.HandleSearch)
	api.Post("/test/cv", testHandler.HandleTestCV)
	api.Post("/test/project", testHandler.HandleTestProject)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Candidate Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/evaluate",
				"GET /api/v1/result/:id",
				"POST /api/v1/internal-documents/upload",
				"GET /api/v1/internal-documents/search",
				"POST /api/v1/test/cv",
				"POST /api/v1/test/project",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
