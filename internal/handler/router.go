package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urlpeek/internal/config"
	"urlpeek/internal/domain"
	"urlpeek/pkg/logger"
)

// NewRouter configures the Gin router with middleware and routes
func NewRouter(urlHandler *URLHandler, cfg *config.Config, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Apply global middleware
	router.Use(gin.Recovery()) // Panic recovery
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg))
	router.Use(SecurityHeadersMiddleware())
	router.Use(TimeoutMiddleware(cfg.RequestTimeout))

	router.GET("/health", urlHandler.Health)

	router.POST("/shorten", urlHandler.ShortenURL)
	router.GET("/rupeek/:shortId", urlHandler.RedirectURL)
	router.GET("/stats/:shortId", urlHandler.GetStats)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "endpoint not found"})
	})

	return router
}
