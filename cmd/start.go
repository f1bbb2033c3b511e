/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/contract-analysis-be/config"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/handler"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the contract analysis server",
	Long:  `Starts the HTTP server for contract ingestion, question answering, extraction and auditing`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := config.LoadConfig(configPath())
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Initialize services
		pdfService := service.NewPDFService()
		chunker, err := service.NewChunkerService(types.DocumentServiceConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		})
		if err != nil {
			log.Fatalf("Failed to create chunker: %v", err)
		}

		embedder := newEmbedder(cfg)
		index, err := newVectorIndex(cfg)
		if err != nil {
			log.Fatalf("Failed to create vector index: %v", err)
		}
		backend, err := newGenerationBackend(cfg)
		if err != nil {
			log.Fatalf("Failed to create generation backend: %v", err)
		}

		mongoClient := database.DefaultMongoClient
		if err := mongoClient.Ping(context.Background(), nil); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDatabase)

		// init repo
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))

		// init service
		genTimeout := time.Duration(cfg.GenerationTimeoutSecs) * time.Second
		retriever := service.NewRetrieverService(embedder, index, cfg.MaxK)
		ragService := service.NewRAGService(retriever, backend, cfg.RAGContextBudget, genTimeout)
		extractService := service.NewExtractService(backend, documentRepo, cfg.ExtractContextBudget, genTimeout)
		auditService := service.NewAuditService(backend, documentRepo, cfg.AuditContextBudget, genTimeout)
		ingestService := service.NewIngestService(cfg.UploadDir, pdfService, chunker, embedder, index, documentRepo)
		metricsService := service.NewMetricsService()
		wsService := service.NewWebSocketService(ragService, cfg.DefaultK)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		ingestHandler := handler.NewIngestHandler(ingestService, metricsService)
		askHandler := handler.NewAskHandler(ragService, documentRepo, metricsService, cfg.DefaultK, cfg.MaxK)
		streamHandler := handler.NewStreamHandler(ragService, documentRepo, metricsService, cfg.DefaultK, cfg.MaxK)
		extractHandler := handler.NewExtractHandler(extractService, metricsService)
		auditHandler := handler.NewAuditHandler(auditService, metricsService)
		documentHandler := handler.NewDocumentHandler(documentRepo, ingestService)
		healthHandler := handler.NewHealthHandler(documentRepo, metricsService)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/healthz", healthHandler.HealthHandler)
		router.GET("/metrics", healthHandler.MetricsHandler)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/ingest", ingestHandler.IngestHandler)
			apiV1.POST("/ingest/stream", ingestHandler.IngestStreamHandler)
			apiV1.POST("/ask", askHandler.AskHandler)
			apiV1.GET("/ask/stream", streamHandler.StreamAskHandler)
			apiV1.POST("/extract", extractHandler.ExtractHandler)
			apiV1.POST("/audit", auditHandler.AuditHandler)
			apiV1.GET("/documents", documentHandler.ListDocumentsHandler)
			apiV1.GET("/documents/:id", documentHandler.GetDocumentHandler)
			apiV1.GET("/documents/:id/file", documentHandler.ServeDocumentFileHandler)
			apiV1.DELETE("/documents/:id", documentHandler.DeleteDocumentHandler)
		}

		router.GET("/ws/ask", func(c *gin.Context) {
			wsService.HandleAsk(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
