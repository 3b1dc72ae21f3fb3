package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"movie-finder-service/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc, keys ...string) *TMDBService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewTMDBService(httpclient.NewClient(0, nil), keys, ts.URL, "https://image.tmdb.org/t/p/w500")
}

func TestFetch_DiscoverWhenQueryEmpty(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"page":3,"results":[{"id":1,"title":"Heat","original_language":"en"}],"total_pages":42}`))
	}, "k1")

	page, err := svc.Fetch(context.Background(), "", 3)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Heat", page.Results[0].Title)
	assert.Nil(t, page.Results[0].PosterPath)
	assert.Equal(t, 42, page.TotalPages)
}

func TestFetch_SearchEscapesQuery(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "tom & jerry?", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Write([]byte(`{"results":[],"total_pages":0}`))
	})

	page, err := svc.Fetch(context.Background(), "tom & jerry?", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, page.TotalPages)
}

func TestFetch_MissingFieldsDefault(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	page, err := svc.Fetch(context.Background(), "batman", 1)
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, page.TotalPages)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.Fetch(context.Background(), "batman", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
}

func TestFetch_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()
	svc := NewTMDBService(httpclient.NewClient(0, nil), nil, ts.URL, "")

	_, err := svc.Fetch(context.Background(), "batman", 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFetchFailed))

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.NotNil(t, netErr.Unwrap())
}

func TestFetch_MalformedBodyIsNetworkError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := svc.Fetch(context.Background(), "", 1)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestFetch_RotatesKeys(t *testing.T) {
	var seen []string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`{"results":[],"total_pages":0}`))
	}, "a", "b")

	for i := 0; i < 3; i++ {
		_, err := svc.Fetch(context.Background(), "", 1)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Bearer a", "Bearer b", "Bearer a"}, seen)
	assert.Equal(t, 2, svc.KeyCount())
	assert.True(t, svc.IsConfigured())
}

func TestImageBase(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "https://image.tmdb.org/t/p/w500", svc.ImageBase())
	assert.False(t, svc.IsConfigured())
}
