package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platelens/backend/internal/domain"
	"github.com/platelens/backend/internal/usecase"
)

// MenuUsecase is the slice of the menu service the HTTP layer consumes.
type MenuUsecase interface {
	ProcessUpload(ctx context.Context, image []byte, contentType string) (*usecase.ProcessResult, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*domain.SessionStatus, error)
	ListProducts(ctx context.Context, limit, offset int) ([]domain.CatalogProduct, error)
	GetProduct(ctx context.Context, productID string) (*domain.CatalogProduct, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	menu          MenuUsecase
	maxUploadSize int64
}

// NewHandler creates a new HTTP handler
func NewHandler(menu MenuUsecase, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}
	return &Handler{
		menu:          menu,
		maxUploadSize: maxUploadSize,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "platelens-backend",
		"version": "1.0.0",
	})
}

// ParseImage accepts a multipart menu photo, runs extraction and catalog
// matching synchronously, and returns the session id the client polls for
// image enrichment.
func (h *Handler) ParseImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds limit"})
		return
	}

	result, err := h.menu.ProcessUpload(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUpload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResults returns the full persisted session record.
func (h *Handler) GetResults(c *gin.Context) {
	session, err := h.menu.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetStatus returns the polling view of a session's enrichment progress.
func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.menu.GetSessionStatus(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListProducts returns a page of the catalog.
func (h *Handler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := h.menu.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single catalog product by id.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.menu.GetProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, product)
}
