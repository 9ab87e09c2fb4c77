package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/config"
	"trendpulse/internal/dataprocessing"
	"trendpulse/internal/services"
	"trendpulse/internal/shared/testutil"
)

type fixedClients int

func (n fixedClients) ClientCount() int { return int(n) }

func newHealthRouter(t *testing.T, dataDir string) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	paths, err := config.ResolvePaths(config.PathsConfig{
		DataDir:  dataDir,
		TrendDir: "datalab",
		BlogDir:  "blog",
		NewsDir:  "news",
	})
	require.NoError(t, err)

	loader := dataprocessing.NewLoader(dataprocessing.Directories{
		Trend: paths.TrendDir,
		Blog:  paths.BlogDir,
		News:  paths.NewsDir,
	}, logger)
	cache := services.NewDatasetCache(loader, nil, logger)
	svc := services.NewHealthService("v1.0.0-test", paths, cache, logger,
		services.WithBuildInfo("2024-01-01T00:00:00Z", "abc123"),
		services.WithClientCounter(fixedClients(2)))

	r := chi.NewRouter()
	r.Route("/api", NewHealthHandler(svc, logger).Register)
	return r
}

func TestHealthHandler_Endpoints(t *testing.T) {
	dirs := testutil.NewDataDirs(t)
	testutil.WriteCSV(t, dirs.Trend, "trend_netflix_20240101.csv", testutil.SampleTrendCSV...)
	router := newHealthRouter(t, dirs.Root)

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "health check endpoint",
			endpoint:       "/api/health",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "v1.0.0-test", body["version"])
			},
		},
		{
			name:           "readiness reports every dependency",
			endpoint:       "/api/health/ready",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
				svcs := body["services"].(map[string]interface{})
				assert.Contains(t, svcs, "data")
				assert.Contains(t, svcs, "dataset")
				ws := svcs["websocket"].(map[string]interface{})
				assert.Equal(t, "2 clients", ws["message"])
			},
		},
		{
			name:           "liveness endpoint",
			endpoint:       "/api/health/live",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body["runtime"], "goroutines")
			},
		},
		{
			name:           "version endpoint",
			endpoint:       "/api/version",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "v1.0.0-test", body["version"])
				assert.Equal(t, "abc123", body["git_commit"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.endpoint, nil))

			require.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestHealthHandler_NotReadyWithoutDataDir(t *testing.T) {
	router := newHealthRouter(t, t.TempDir()+"/missing")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_ready"`)
}

func TestHealthHandler_LivenessHead(t *testing.T) {
	router := newHealthRouter(t, t.TempDir())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/api/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
