// Package services implements the business logic layer of the DebtLens
// application. It sits between the HTTP handlers and the dataset store,
// keeping query semantics centralized and testable.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate query rules
//	4. Structured logging on every operation
//
// # Available Services
//
//	- DataService: series, summary, preview and export queries over the
//	  active dataset, plus reload coordination
//	- HealthService: liveness, readiness and version probes
//
// # Common Service Pattern
//
// Services are plain structs with injected collaborators:
//
//	type ServiceName struct {
//	    store  *dataset.Store
//	    logger *slog.Logger
//	}
//
//	func NewServiceName(store *dataset.Store, logger *slog.Logger) *ServiceName {
//	    return &ServiceName{store: store, logger: logger}
//	}
//
// # Error Handling
//
// Services pass dataset errors through unwrapped so handlers can map them:
// *dataset.LoadError names the path that could not be read, and
// *dataset.SchemaError names the column roles that could not be resolved.
// An empty filtered view is never an error; the response meta carries a
// warning instead.
//
// # Testing
//
// Services are tested against real temp-file datasets and a stub notifier:
//
//	svc := NewDataServiceWithLogger(cfg, store, notifier, nil, logger)
//	resp, err := svc.Series(ctx, api.SeriesRequest{})
package services
