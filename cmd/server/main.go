package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghid/internal/catalog"
	"ghid/internal/config"
	"ghid/internal/handler"
	"ghid/internal/repository"
	"ghid/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Ghid Local Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Load the location catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load location catalog: %v", err)
	}
	log.Printf("✅ Catalog loaded: %d locations, %d cities", cat.Len(), len(cat.Cities()))

	// Optional analytics/embedding store
	var repo *repository.PostgresRepository
	if cfg.Postgres.DSN != "" {
		repo, err = repository.NewPostgresRepository(
			cfg.Postgres.DSN,
			cfg.Postgres.MaxConnections,
			cfg.Postgres.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		log.Println("✅ Connected to PostgreSQL database")
	} else {
		log.Println("⚠️  No DATABASE_URL set - chat logs, feedback and embeddings are disabled")
	}

	// Generation API client
	geminiClient := service.NewGeminiClient(&cfg.Gemini)
	if cfg.Gemini.Enabled {
		log.Printf("✅ Generation client initialized")
		log.Printf("   - API Base: %s", cfg.Gemini.APIBase)
		log.Printf("   - Model: %s", cfg.Gemini.Model)
		log.Printf("   - Embedding model: %s", cfg.Gemini.EmbeddingModel)
		log.Printf("   - Temperature: %.2f", cfg.Gemini.Temperature)
	} else {
		log.Println("⚠️  GEMINI_API_KEY is not set - the assistant will answer every turn with a configuration error")
	}

	// Initialize services
	resolver := service.NewContextResolver(cat, cfg.Chat.HistoryWindow)
	search := service.NewLocalSearch(cat, cfg.Chat.MaxRecommendations)
	responder := service.NewResponder(
		geminiClient,
		cat,
		cfg.Chat.PromptCandidates,
		cfg.Chat.FallbackSample,
		cfg.Chat.MaxRecommendations,
	)

	var chatLogger service.ChatLogger
	if repo != nil {
		chatLogger = repo
	}
	chatService := service.NewChatService(
		resolver,
		search,
		responder,
		chatLogger,
		time.Duration(cfg.Chat.SessionTTLMinutes)*time.Minute,
	)
	defer chatService.Close()

	var embeddingStore service.EmbeddingStore
	if repo != nil {
		embeddingStore = repo
	}
	embeddingService := service.NewEmbeddingService(geminiClient, embeddingStore, cat)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	locationHandler := handler.NewLocationHandler(cat)
	feedbackHandler := handler.NewFeedbackHandler(repo, cat)
	embeddingHandler := handler.NewEmbeddingHandler(embeddingService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "local-guide-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Conversation endpoints
		apiV1.POST("/chat", chatHandler.Send)
		apiV1.GET("/chat/:id/history", chatHandler.History)
		apiV1.GET("/chat/:id/context", chatHandler.Context)
		apiV1.POST("/chat/:id/reset", chatHandler.Reset)

		// Catalog endpoints
		apiV1.GET("/locations", locationHandler.List)
		apiV1.GET("/locations/:id", locationHandler.Get)
		apiV1.GET("/locations/:id/similar", embeddingHandler.Similar)
		apiV1.GET("/cities", locationHandler.Cities)

		// Embedding endpoint
		apiV1.POST("/embeddings/rebuild", embeddingHandler.Rebuild)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
