package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/api/handlers"
	"github.com/andresuchdata/supplychain-brain/internal/api/middleware"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Sessions  *session.Store
	Datasets  *service.DatasetService
	Analytics *service.AnalyticsService
	Planning  *service.PlanningService
	Chat      *service.ChatService

	MaxUploadMB int64
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	maxUpload := services.MaxUploadMB << 20
	if maxUpload > 0 {
		router.MaxMultipartMemory = maxUpload
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": services.Sessions.Len()})
	})

	apiGroup := router.Group("/api/v1")

	sessionHandler := handlers.NewSessionHandler(services.Sessions, services.Datasets, services.Analytics, maxUpload)
	analysisHandler := handlers.NewAnalysisHandler(services.Sessions, services.Analytics)
	forecastHandler := handlers.NewForecastHandler(services.Sessions, services.Planning)
	inventoryHandler := handlers.NewInventoryHandler(services.Sessions, services.Planning)
	chatHandler := handlers.NewChatHandler(services.Sessions, services.Chat)
	datasetHandler := handlers.NewDatasetHandler(services.Datasets)

	apiGroup.POST("/sessions", sessionHandler.Create)
	sessionGroup := apiGroup.Group("/sessions/:id")
	{
		sessionGroup.GET("", sessionHandler.Get)
		sessionGroup.DELETE("", sessionHandler.Delete)
		sessionGroup.PUT("/page", sessionHandler.Navigate)
		sessionGroup.POST("/dataset", sessionHandler.Upload)
		sessionGroup.POST("/dataset/load", sessionHandler.Load)

		analysisGroup := sessionGroup.Group("/analysis")
		{
			analysisGroup.GET("/options", analysisHandler.Options)
			analysisGroup.GET("/overview", analysisHandler.Overview)
			analysisGroup.GET("/customers/:customer", analysisHandler.Customer)
		}

		forecastGroup := sessionGroup.Group("/forecast")
		{
			forecastGroup.POST("/predict", forecastHandler.Predict)
			forecastGroup.GET("/inputs", forecastHandler.GetInputs)
			forecastGroup.PUT("/inputs", forecastHandler.PutInputs)
			forecastGroup.POST("/simulate", forecastHandler.Simulate)
			forecastGroup.GET("/results", forecastHandler.Results)
		}

		sessionGroup.POST("/inventory/dashboard", inventoryHandler.Dashboard)

		chatGroup := sessionGroup.Group("/chat")
		{
			chatGroup.POST("", chatHandler.Send)
			chatGroup.GET("", chatHandler.History)
			chatGroup.DELETE("", chatHandler.Clear)
		}
	}

	inventoryGroup := apiGroup.Group("/inventory")
	{
		inventoryGroup.POST("/policy", inventoryHandler.Policy)
		inventoryGroup.POST("/monthly", inventoryHandler.Monthly)
		inventoryGroup.POST("/sandbox", inventoryHandler.Sandbox)
	}

	apiGroup.GET("/datasets", datasetHandler.List)
	apiGroup.GET("/datasets/objects", datasetHandler.Objects)

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
