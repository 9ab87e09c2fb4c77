package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MetricsHandler serves the Prometheus exposition and a JSON snapshot of
// runtime counters.
type MetricsHandler struct {
	exposition http.Handler

	mu      sync.RWMutex
	sources map[string]func() interface{}
}

// NewMetricsHandler creates a metrics handler. exposition may be nil when
// the Prometheus exporter is disabled.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{
		exposition: exposition,
		sources:    make(map[string]func() interface{}),
	}
}

// AddSource registers a named snapshot reported by GetStats.
func (h *MetricsHandler) AddSource(name string, snapshot func() interface{}) {
	h.mu.Lock()
	h.sources[name] = snapshot
	h.mu.Unlock()
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	r.Get("/stats", h.GetStats)
	return r
}

// GetMetrics writes the Prometheus exposition
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		http.Error(w, "metrics exporter disabled", http.StatusNotFound)
		return
	}
	h.exposition.ServeHTTP(w, r)
}

// GetStats returns every registered snapshot
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	stats := make(map[string]interface{}, len(h.sources))
	for name, snapshot := range h.sources {
		stats[name] = snapshot()
	}
	h.mu.RUnlock()

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      stats,
	})
}
