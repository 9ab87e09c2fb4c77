// Package app wires the trend dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Resolve paths and initialize logging and OpenTelemetry
//	2. Build the loader, the dataset cache and the WebSocket hub
//	3. Create the data and health services
//	4. Set up middleware, handlers and the HTTP server
//
// Start binds the listener, starts the hub and loads the dataset in the
// background. Run blocks until the context is cancelled or SIGINT/SIGTERM
// arrives, then shuts everything down within Server.ShutdownTimeout.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	a, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
package app
