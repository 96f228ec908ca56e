// Package app provides application initialization and lifecycle management
// for the DebtLens server. It wires the configuration, the dataset store,
// the HTTP transport, the WebSocket hub and the file watcher together and
// owns their startup and shutdown order.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from defaults, YAML and DEBTLENS_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create the dataset loader and cache store
//	4. Start the WebSocket hub and build the services on top of the store
//	5. Set up HTTP handlers and middleware
//	6. Create the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(configFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Refresh Fanout
//
// Dataset reloads, whether requested over the API or triggered by the file
// watcher, are announced to WebSocket clients through a single notifier.
// When a reload switches the active file, the same notifier re-targets the
// watcher so on-disk edits to the new file keep invalidating the cache.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT, SIGTERM or a listener failure and then ensures:
//
//	- Active requests are completed within the shutdown timeout
//	- The file watcher stops before its reload callback can fire again
//	- WebSocket connections are closed cleanly
//	- Final telemetry is flushed
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app does not
// call os.Exit() directly, so main controls the exit process. A data file
// that is missing at startup is a warning, not an error; readiness reports
// it and requests surface it until the file appears.
package app
