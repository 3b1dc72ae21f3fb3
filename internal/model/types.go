package model

import (
	"fmt"
	"strings"
	"time"
)

// ================== 通用响应 ==================

// APIResponse is the standard API response format
type APIResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Source  string      `json:"source,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ================== 电影数据模型 ==================

// PlaceholderPoster is shown for movies without a poster
const PlaceholderPoster = "no-movie.png"

// NotAvailable is the display value for missing rating or release date
const NotAvailable = "N/A"

// MovieSummary is a single movie as returned by the metadata provider.
// Optional provider fields are pointers so that "absent" is distinguishable from zero.
type MovieSummary struct {
	ID               int      `json:"id" bson:"id"`
	Title            string   `json:"title" bson:"title"`
	PosterPath       *string  `json:"poster_path,omitempty" bson:"poster_path,omitempty"`
	VoteAverage      *float64 `json:"vote_average,omitempty" bson:"vote_average,omitempty"`
	ReleaseDate      *string  `json:"release_date,omitempty" bson:"release_date,omitempty"`
	OriginalLanguage string   `json:"original_language" bson:"original_language"`
}

// HasPoster reports whether the provider supplied a non-empty poster path
func (m MovieSummary) HasPoster() bool {
	return m.PosterPath != nil && *m.PosterPath != ""
}

// PosterURL joins imageBase and the poster path, or returns the placeholder
func (m MovieSummary) PosterURL(imageBase string) string {
	if !m.HasPoster() {
		return PlaceholderPoster
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(*m.PosterPath, "/")
}

// RatingText formats the vote average with one decimal
func (m MovieSummary) RatingText() string {
	if m.VoteAverage == nil || *m.VoteAverage == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", *m.VoteAverage)
}

// ReleaseYear returns the year part of the release date
func (m MovieSummary) ReleaseYear() string {
	if m.ReleaseDate == nil || *m.ReleaseDate == "" {
		return NotAvailable
	}
	year, _, _ := strings.Cut(*m.ReleaseDate, "-")
	return year
}

// MovieCard is a MovieSummary with its display values resolved
type MovieCard struct {
	MovieSummary
	Poster string `json:"poster"`
	Rating string `json:"rating"`
	Year   string `json:"year"`
}

// NewMovieCards builds cards for a result list
func NewMovieCards(movies []MovieSummary, imageBase string) []MovieCard {
	cards := make([]MovieCard, len(movies))
	for i, m := range movies {
		cards[i] = MovieCard{
			MovieSummary: m,
			Poster:       m.PosterURL(imageBase),
			Rating:       m.RatingText(),
			Year:         m.ReleaseYear(),
		}
	}
	return cards
}

// SearchResultPage is one page of discover or search results
type SearchResultPage struct {
	Results    []MovieSummary `json:"results"`
	TotalPages int            `json:"total_pages"`
}

// ================== 热门搜索 ==================

// TrendingRecord counts how many times a search term produced results
type TrendingRecord struct {
	ID         string    `json:"id" bson:"_id"`
	SearchTerm string    `json:"search_term" bson:"searchTerm"`
	Count      int       `json:"count" bson:"count"`
	MovieID    int       `json:"movie_id" bson:"movie_id"`
	PosterURL  string    `json:"poster_url" bson:"poster_url"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
