package handler

import (
	"net/http"

	"movie-finder-service/internal/model"
	"movie-finder-service/internal/pipeline"
	"movie-finder-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles admin-related endpoints
type AdminHandler struct {
	tmdbService *service.TMDBService
	manager     *pipeline.Manager
	backend     string
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(tmdb *service.TMDBService, manager *pipeline.Manager, backend string) *AdminHandler {
	return &AdminHandler{
		tmdbService: tmdb,
		manager:     manager,
		backend:     backend,
	}
}

// GetStatus returns service status
// GET /api/v1/status
func (h *AdminHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"tmdb_enabled":     h.tmdbService.IsConfigured(),
		"tmdb_keys":        h.tmdbService.KeyCount(),
		"trending_backend": h.backend,
		"sessions":         h.manager.Len(),
	})
}

// ReapSessions closes idle sessions now instead of waiting for the schedule
// POST /api/v1/admin/sessions/reap
func (h *AdminHandler) ReapSessions(c *gin.Context) {
	reaped := h.manager.ReapIdle()
	log.Info().Int("reaped", reaped).Msg("🧹 Idle sessions reaped on demand")

	c.JSON(http.StatusOK, model.APIResponse{
		Code: 200,
		Data: gin.H{"reaped": reaped, "open": h.manager.Len()},
	})
}
