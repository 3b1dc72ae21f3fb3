package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "default", r.Header.Get("X-Default"))
		assert.Equal(t, "call", r.Header.Get("X-Call"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	client := NewClient(0, map[string]string{"X-Default": "default"})
	body, err := client.Fetch(context.Background(), ts.URL, map[string]string{"X-Call": "call"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	defer ts.Close()

	_, err := NewClient(0, nil).Fetch(context.Background(), ts.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, string(statusErr.Body), "Invalid API key")
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := NewClient(0, nil).Fetch(context.Background(), ts.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_SendJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]int
		require.NoError(t, json.Unmarshal(raw, &payload))
		w.Write([]byte(r.Method))
	}))
	defer ts.Close()

	client := NewClient(0, nil)

	body, err := client.PostJSON(context.Background(), ts.URL, map[string]int{"count": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, string(body))

	body, err = client.PatchJSON(context.Background(), ts.URL, map[string]int{"count": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, string(body))
}

func TestClient_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(0, nil).Fetch(ctx, ts.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
