package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestMovieSummaryDisplayValues(t *testing.T) {
	tests := []struct {
		name   string
		movie  MovieSummary
		poster string
		rating string
		year   string
	}{
		{
			name: "all fields present",
			movie: MovieSummary{
				ID:          268,
				Title:       "Batman",
				PosterPath:  strPtr("/cij4dd21v2Rk2YtUQbV5kW69WB2.jpg"),
				VoteAverage: floatPtr(7.236),
				ReleaseDate: strPtr("1989-06-21"),
			},
			poster: "https://image.tmdb.org/t/p/w500/cij4dd21v2Rk2YtUQbV5kW69WB2.jpg",
			rating: "7.2",
			year:   "1989",
		},
		{
			name:   "optional fields absent",
			movie:  MovieSummary{ID: 1, Title: "Unknown"},
			poster: PlaceholderPoster,
			rating: NotAvailable,
			year:   NotAvailable,
		},
		{
			name: "empty poster and zero rating",
			movie: MovieSummary{
				PosterPath:  strPtr(""),
				VoteAverage: floatPtr(0),
				ReleaseDate: strPtr(""),
			},
			poster: PlaceholderPoster,
			rating: NotAvailable,
			year:   NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.poster, tt.movie.PosterURL("https://image.tmdb.org/t/p/w500"))
			assert.Equal(t, tt.rating, tt.movie.RatingText())
			assert.Equal(t, tt.year, tt.movie.ReleaseYear())
		})
	}
}

func TestNewMovieCards(t *testing.T) {
	movies := []MovieSummary{
		{ID: 1, Title: "A", PosterPath: strPtr("a.jpg")},
		{ID: 2, Title: "B"},
	}

	cards := NewMovieCards(movies, "https://img/")

	assert.Len(t, cards, 2)
	assert.Equal(t, "https://img/a.jpg", cards[0].Poster)
	assert.Equal(t, PlaceholderPoster, cards[1].Poster)
	assert.Equal(t, 2, cards[1].ID)
}
