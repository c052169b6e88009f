package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aluiziolira/go-scrape-products/models"
)

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeNotFound     = "NOT_FOUND"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	SearchInput string   `json:"searchInput" binding:"required"`
	Category    string   `json:"category"`
	MaxPrice    *float64 `json:"maxPrice" binding:"required,gte=0"`
	SortBy      string   `json:"sortBy"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Search returns the handler for POST /api/search. The response is the
// ranked product list; sources that failed only show up in the logs.
func Search(searcher Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: ErrCodeInvalidInput, Message: err.Error()}})
			return
		}

		q, err := models.NewSearchQuery(req.SearchInput, req.Category, *req.MaxPrice, req.SortBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: ErrCodeInvalidInput, Message: err.Error()}})
			return
		}

		out := searcher.Search(c.Request.Context(), q)
		products := out.Products
		if products == nil {
			products = []models.NormalizedProduct{}
		}
		c.JSON(http.StatusOK, products)
	}
}

// Health returns the handler for GET /api/health.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Message: "Scraper API is running"})
	}
}
