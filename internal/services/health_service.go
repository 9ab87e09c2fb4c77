package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"trendpulse/internal/config"
	"trendpulse/internal/files"
	"trendpulse/pkg/contracts/domain"
)

// ClientCounter reports how many WebSocket clients are connected.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	paths     *config.Paths
	cache     *DatasetCache
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthOption configures optional HealthService dependencies.
type HealthOption func(*HealthService)

// WithBuildInfo sets build metadata reported by Version.
func WithBuildInfo(buildTime, gitCommit string) HealthOption {
	return func(hs *HealthService) {
		hs.buildTime = buildTime
		hs.gitCommit = gitCommit
	}
}

// WithClientCounter reports WebSocket clients in readiness output.
func WithClientCounter(hub ClientCounter) HealthOption {
	return func(hs *HealthService) { hs.hub = hub }
}

// NewHealthService creates a health service. paths and cache may be nil, in
// which case the matching readiness check reports not_ready.
func NewHealthService(version string, paths *config.Paths, cache *DatasetCache, logger *slog.Logger, opts ...HealthOption) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	hs := &HealthService{
		version:   version,
		paths:     paths,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
	for _, opt := range opts {
		opt(hs)
	}
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check", slog.Duration("uptime", time.Since(hs.startTime)))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the input directory is readable and a
// dataset can be served.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkDataHealth(),
			"dataset":   hs.checkDatasetHealth(ctx),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}
	return result
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}
	info, err := os.Stat(hs.paths.DataDir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("data directory not found: %s", hs.paths.DataDir)}
	}

	discovery := files.NewDiscoveryWithLogger("", hs.logger)
	var missing, newest []string
	for _, c := range domain.Categories() {
		dir := hs.paths.CategoryDir(c)
		if _, err := os.Stat(dir); err != nil {
			missing = append(missing, c.String())
			continue
		}
		if latest, ok := files.GetLatestFile(discovery.Locate(dir)); ok {
			newest = append(newest, fmt.Sprintf("%s=%s", c, latest.Name))
		}
	}
	if len(missing) > 0 {
		// Missing category directories only mean empty tables.
		return ServiceHealth{Status: "ready", Message: fmt.Sprintf("no input directory for %v", missing)}
	}
	if len(newest) == 0 {
		return ServiceHealth{Status: "ready", Message: "no input files"}
	}
	return ServiceHealth{Status: "ready", Message: "newest input: " + strings.Join(newest, ", ")}
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.cache == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset cache not initialized"}
	}
	ds, err := hs.cache.Get(ctx)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d trend, %d blog, %d news rows", ds.Trend.Len(), ds.Blog.Len(), ds.News.Len()),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "websocket disabled"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d clients", hs.hub.ClientCount())}
}
