// Package http implements the HTTP request handlers for the DebtLens
// service. It provides a thin layer between HTTP transport and business
// logic, following the clean architecture principle of keeping handlers
// focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handlers
//
//	SeriesHandler       - GET /api/series, /summary, /preview, /export; POST /reload
//	PresentationHandler - GET /api/presentation
//	HealthHandler       - GET /api/health, /health/ready, /health/live, /api/version
//
// Query parameters bind into pkg/contracts/api/v1 request structs through
// QueryParamValidator, then struct tags are enforced before the service is
// called. The export endpoint is the one non-JSON route: it streams the
// filtered view as a CSV attachment, so errors after the header is written
// can only be logged.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details. Dataset errors map centrally
// in internal/errors: a missing file renders 404 naming the path, an
// unreadable or schema-deficient file renders 422 naming the unresolved
// column roles. An empty filtered view is not an error; it renders 200
// with meta.empty set and a message asking the user to widen the filters.
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Mock service dependencies
//	- Test various HTTP scenarios
//	- Verify error responses
//	- Check middleware integration
package http
