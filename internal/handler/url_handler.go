package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"urlpeek/internal/domain"
	"urlpeek/internal/service"
	"urlpeek/pkg/logger"
)

// Client-facing error messages
const (
	msgURLRequired      = "URL is required"
	msgShortURLNotFound = "Short URL not found"
	msgURLNotFound      = "URL not found"
	msgInternal         = "Internal server error"
)

// URLHandler handles HTTP requests for URL shortening operations
type URLHandler struct {
	service service.URLService
	logger  *logger.Logger
}

// NewURLHandler creates a new URL handler with dependencies
func NewURLHandler(service service.URLService, logger *logger.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		logger:  logger,
	}
}

// ShortenURL handles POST /shorten
func (h *URLHandler) ShortenURL(c *gin.Context) {
	var req domain.CreateURLRequest

	// A body that isn't an object with a string url counts as a missing url
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body", "error", err)
		h.respondError(c, domain.NewValidationError(msgURLRequired))
		return
	}

	url, err := h.service.Shorten(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.NewCreateURLResponse(url))
}

// RedirectURL handles GET /rupeek/:shortId
func (h *URLHandler) RedirectURL(c *gin.Context) {
	shortID := c.Param("shortId")

	originalURL, err := h.service.ResolveAndCount(c.Request.Context(), shortID)
	if err != nil {
		if errors.Is(err, domain.ErrURLNotFound) {
			err = domain.NewNotFoundError(msgShortURLNotFound)
		}
		h.respondError(c, err)
		return
	}

	// Location carries the stored target verbatim; 302 so every visit is counted
	c.Header("Location", originalURL)
	c.Status(http.StatusFound)
}

// GetStats handles GET /stats/:shortId
func (h *URLHandler) GetStats(c *gin.Context) {
	shortID := c.Param("shortId")

	url, err := h.service.GetStats(c.Request.Context(), shortID)
	if err != nil {
		if errors.Is(err, domain.ErrURLNotFound) {
			err = domain.NewNotFoundError(msgURLNotFound)
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.NewStatsResponse(url))
}

// Health handles GET /health
func (h *URLHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.HealthResponse{Status: "ok"})
}

// respondError answers with the AppError's status and message.
// Internal and unclassified errors are logged and answered with a generic 500.
func (h *URLHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if !appErr.Internal {
			c.JSON(appErr.StatusCode, domain.ErrorResponse{Error: appErr.Message})
			return
		}
		status = appErr.StatusCode
	}

	h.logger.WithFields(map[string]interface{}{
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(requestIDKey),
	}).Error("Internal server error", "error", err)

	_ = c.Error(err)
	c.JSON(status, domain.ErrorResponse{Error: msgInternal})
}
