package handler

import (
	"net/http"
	"strconv"

	"movie-finder-service/internal/model"
	"movie-finder-service/internal/pipeline"
	"movie-finder-service/internal/trending"

	"github.com/gin-gonic/gin"
)

// maxTrendingLimit caps the limit query parameter
const maxTrendingLimit = 50

// TrendingHandler serves the most searched terms
type TrendingHandler struct {
	trending pipeline.TrendingRecorder
	backend  string
}

// NewTrendingHandler creates a new TrendingHandler. backend names the document store for the response source.
func NewTrendingHandler(tr pipeline.TrendingRecorder, backend string) *TrendingHandler {
	return &TrendingHandler{trending: tr, backend: backend}
}

// GetTrending returns the top trending records
// GET /api/v1/trending?limit=5
func (h *TrendingHandler) GetTrending(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(trending.DefaultLimit)))
	if err != nil || limit < 1 {
		limit = trending.DefaultLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:   200,
		Data:   h.trending.TopTrending(c.Request.Context(), limit),
		Source: h.backend,
	})
}
