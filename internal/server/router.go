package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/draftdeck/draftdeck-backend/internal/handlers"
	"github.com/draftdeck/draftdeck-backend/internal/middleware"
)

const serviceName = "draftdeck-backend"

type RouterConfig struct {
	RequestLogger   *middleware.RequestLogger
	ProjectHandler  *handlers.ProjectHandler
	PipelineHandler *handlers.PipelineHandler
	RatesHandler    *handlers.RatesHandler
	AllowedOrigins  []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.TraceContext())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Handler())
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/projects", cfg.ProjectHandler.Create)
		api.GET("/projects/:id", cfg.ProjectHandler.Get)
		api.GET("/projects/:id/sources", cfg.ProjectHandler.GetSourceDocuments)
		api.GET("/projects/:id/analysis", cfg.ProjectHandler.GetAnalysis)

		api.POST("/projects/:id/pipeline/trigger", cfg.PipelineHandler.Trigger)
		api.POST("/projects/:id/pipeline/retry", cfg.PipelineHandler.Retry)
		api.GET("/projects/:id/pipeline/status", cfg.PipelineHandler.GetStatus)
		api.GET("/projects/:id/documents", cfg.PipelineHandler.GetDocuments)

		api.GET("/rates", cfg.RatesHandler.Get)
		api.POST("/rates/refresh", cfg.RatesHandler.Refresh)
	}

	return router
}
