// Package services implements the business logic layer between the HTTP
// handlers and the ingestion core in dataprocessing.
//
// # Available Services
//
//	- DatasetCache: process-wide memoised Dataset with Get, Invalidate and Reload
//	- DataService: keyword lists, filtered tables, dashboard views, exports
//	- HealthService: liveness, readiness and version reporting
//
// # Dataset Lifecycle
//
// The first DatasetCache.Get runs a full load (locate, parse, merge) and every
// later Get returns the same snapshot until Invalidate is called. Concurrent
// first calls share one load through singleflight. A failed load is not
// cached, so the next Get retries.
//
//	cache := services.NewDatasetCache(loader, metrics, logger)
//	data := services.NewDataService(cache, cfg.Dashboard, hub, logger)
//
//	view, err := data.Dashboard(ctx, q)
//
// DataService.Reload invalidates the cache, loads again and broadcasts a
// dataset:reloaded event to WebSocket clients.
//
// # Error Handling
//
// Services return sentinel errors that the transport layer maps to problem
// documents:
//
//	- ErrInvalidDateRange when start is after end
//	- ErrServiceUnavailable when the dataset cannot be loaded
//
// # Testing
//
// Tests drive the services with a stub DatasetLoader or a real
// dataprocessing.Loader over temporary directories, and record broadcasts
// with MockBroadcaster:
//
//	b := &MockBroadcaster{}
//	b.On("Broadcast", events.MessageTypeDatasetReloaded, mock.Anything).Return()
package services
