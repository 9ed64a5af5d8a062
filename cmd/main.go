package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/draftdeck/draftdeck-backend/internal/db"
	"github.com/draftdeck/draftdeck-backend/internal/handlers"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/middleware"
	"github.com/draftdeck/draftdeck-backend/internal/observability"
	"github.com/draftdeck/draftdeck-backend/internal/repos"
	"github.com/draftdeck/draftdeck-backend/internal/server"
	"github.com/draftdeck/draftdeck-backend/internal/services"
	"github.com/draftdeck/draftdeck-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (opt-in via OTEL_ENABLED)
	shutdownTracing := observability.InitTracing(context.Background(), log, observability.TracingConfig{
		ServiceName: "draftdeck-backend",
		Environment: utils.GetEnv("ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "", log),
	})
	if shutdownTracing != nil {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(flushCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (rate cache + pipeline events). Optional: both consumers
	// degrade without it.
	var rdb *goredis.Client
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        addr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable, continuing without cache", "error", err)
			_ = rdb.Close()
			rdb = nil
		}
		cancel()
	}

	// Repos
	log.Info("Setting up repos...")
	projectRepo := repos.NewProjectRepo(thePG, log)
	sourceDocRepo := repos.NewSourceDocumentRepo(thePG, log)
	generatedDocRepo := repos.NewGeneratedDocumentRepo(thePG, log)
	pipelineRunRepo := repos.NewPipelineRunRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Fatal("Bucket init failed", "error", err)
	}
	openAIClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Fatal("OpenAI client init failed", "error", err)
	}
	proseGenerator := services.NewProseGenerator(log, openAIClient)
	rateCache := services.NewRateCacheService(log, rdb, services.NewStaticRateFetcher(log))
	notifier := services.NewPipelineNotifier(log, rdb)
	analysisService := services.NewFinancialAnalysisService(thePG, log, projectRepo, sourceDocRepo)
	generationService := services.NewDocumentGenerationService(log, proseGenerator, rateCache, analysisService, sourceDocRepo)
	projectService := services.NewProjectService(log, projectRepo, sourceDocRepo)
	pipelineService := services.NewPipelineService(
		thePG, log,
		projectRepo, sourceDocRepo, generatedDocRepo, pipelineRunRepo,
		generationService, bucketService, notifier,
	)
	pipelineService.StartWorker(context.Background())

	// Handlers + router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		RequestLogger:   middleware.NewRequestLogger(log),
		ProjectHandler:  handlers.NewProjectHandler(log, projectService, analysisService),
		PipelineHandler: handlers.NewPipelineHandler(log, pipelineService),
		RatesHandler:    handlers.NewRatesHandler(log, rateCache),
		AllowedOrigins:  splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
