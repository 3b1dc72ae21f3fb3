package handler

import (
	"context"
	"net/http"
	"time"

	"movie-finder-service/internal/model"
	"movie-finder-service/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultRequestTimeout = 30 * time.Second

// HomeHandler serves the landing page: discover page 1 plus trending
type HomeHandler struct {
	source    pipeline.MovieSource
	trending  pipeline.TrendingRecorder
	imageBase string
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(source pipeline.MovieSource, tr pipeline.TrendingRecorder, imageBase string) *HomeHandler {
	return &HomeHandler{
		source:    source,
		trending:  tr,
		imageBase: imageBase,
	}
}

// HomePage is the payload of the home response
type HomePage struct {
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
	Results    []model.MovieCard      `json:"results"`
	Trending   []model.TrendingRecord `json:"trending"`
}

// GetHome loads discover results and trending concurrently
// GET /api/v1/home
func (h *HomeHandler) GetHome(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
	defer cancel()

	var (
		movies   *model.SearchResultPage
		trending []model.TrendingRecord
	)

	// trending 不会返回错误，只有 discover 失败会中断
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := h.source.Fetch(gctx, "", 1)
		if err != nil {
			return err
		}
		movies = page
		return nil
	})
	g.Go(func() error {
		trending = h.trending.TopTrending(gctx, pipeline.TrendingLimit)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("Home: discover failed")
		respondFetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code: 200,
		Data: HomePage{
			Page:       1,
			TotalPages: movies.TotalPages,
			Results:    model.NewMovieCards(movies.Results, h.imageBase),
			Trending:   trending,
		},
	})
}
