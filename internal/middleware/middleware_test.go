package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"movie-finder-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestAdminAuth(t *testing.T) {
	r := gin.New()
	r.GET("/open", AdminAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/locked", AdminAuth("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"disabled", "/open", "", http.StatusOK},
		{"missing key", "/locked", "", http.StatusUnauthorized},
		{"bearer", "/locked", "Bearer secret", http.StatusOK},
		{"apikey prefix", "/locked", "ApiKey secret", http.StatusOK},
		{"wrong key", "/locked", "Bearer nope", http.StatusForbidden},
		{"query param", "/locked?api_key=secret", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/sessions/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := metrics.APIRequestsTotal.WithLabelValues("/api/v1/sessions/:id", http.MethodGet, "204")
	before := counterValue(t, counter)

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, before+2, counterValue(t, counter))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/api/v1/trending", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/trending", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
