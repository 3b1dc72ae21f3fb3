package handler

import (
	"errors"
	"net/http"
	"strconv"

	"movie-finder-service/internal/model"
	"movie-finder-service/internal/pipeline"
	"movie-finder-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MoviesHandler serves one page of search or discover results per request
type MoviesHandler struct {
	source    pipeline.MovieSource
	trending  pipeline.TrendingRecorder
	imageBase string
}

// NewMoviesHandler creates a new MoviesHandler
func NewMoviesHandler(source pipeline.MovieSource, trending pipeline.TrendingRecorder, imageBase string) *MoviesHandler {
	return &MoviesHandler{
		source:    source,
		trending:  trending,
		imageBase: imageBase,
	}
}

// MoviePage is the payload of a movies response
type MoviePage struct {
	Query      string            `json:"query"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Results    []model.MovieCard `json:"results"`
}

// GetMovies returns movies for a query, or discover results when the query is empty
// GET /api/v1/movies?query=batman&page=1
func (h *MoviesHandler) GetMovies(c *gin.Context) {
	query := c.Query("query")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:  400,
			Error: "page must be a positive integer",
		})
		return
	}

	result, err := h.source.Fetch(c.Request.Context(), query, page)
	if err != nil {
		respondFetchError(c, err)
		return
	}

	if query != "" && len(result.Results) > 0 {
		h.trending.RecordAsync(query, result.Results[0])
	}

	log.Debug().Str("query", query).Int("page", page).Int("count", len(result.Results)).Msg("🎬 Movies served")

	c.JSON(http.StatusOK, model.APIResponse{
		Code: 200,
		Data: MoviePage{
			Query:      query,
			Page:       page,
			TotalPages: result.TotalPages,
			Results:    model.NewMovieCards(result.Results, h.imageBase),
		},
		Source: "tmdb",
	})
}

// respondFetchError maps provider errors to the user-visible messages
func respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrFetchFailed) {
		c.JSON(http.StatusBadGateway, model.APIResponse{
			Code:  502,
			Error: pipeline.MsgFetchFailed,
		})
		return
	}
	c.JSON(http.StatusServiceUnavailable, model.APIResponse{
		Code:  503,
		Error: pipeline.MsgNetworkError,
	})
}
