package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandler(t *testing.T) {
	t.Run("serves the exposition handler", func(t *testing.T) {
		exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("dataset_cache_hits_total 3\n"))
		})
		h := NewMetricsHandler(exposition)

		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dataset_cache_hits_total 3\n", rec.Body.String())
	})

	t.Run("disabled exporter is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stats lists every source", func(t *testing.T) {
		h := NewMetricsHandler(nil)
		h.AddSource("websocket", func() interface{} { return map[string]int{"active_clients": 1} })
		h.AddSource("cache", func() interface{} { return map[string]bool{"cached": true} })

		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"active_clients":1`)
		assert.Contains(t, rec.Body.String(), `"cached":true`)
	})
}
