package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtlens/internal/dataset"
	"debtlens/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"with stack traces", true},
		{"without stack traces", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, tt.includeStack)

			assert.NotNil(t, handler)
			assert.Equal(t, tt.includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "context canceled",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "missing dataset file",
			err:        dataset.NewLoadError("data/debt.csv", fmt.Errorf("open data/debt.csv: %w", fs.ErrNotExist)),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataNotFound,
			wantTitle:  "Dataset Not Found",
		},
		{
			name:       "unparseable dataset file",
			err:        dataset.NewLoadError("data/debt.csv", fmt.Errorf("not parseable as delimited tabular text")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataUnreadable,
			wantTitle:  "Dataset Unreadable",
		},
		{
			name:       "unresolvable schema",
			err:        dataset.NewSchemaError([]string{dataset.RoleYear}, []string{"period", "value"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataSchema,
			wantTitle:  "Dataset Schema Invalid",
		},
		{
			name:       "api error",
			err:        ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
		},
		{
			name:       "not found string",
			err:        fmt.Errorf("resource not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Resource Not Found",
		},
		{
			name:       "rate limit string",
			err:        fmt.Errorf("rate limit exceeded for 10.0.0.1"),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantTitle:  "Rate Limit Exceeded",
		},
		{
			name:       "generic error",
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/series", nil)

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			var problem ProblemDetails
			require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))

			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantTitle, problem.Title)
			assert.Equal(t, tt.wantStatus, problem.Status)

			assert.True(t, logHandler.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleError_NilError(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/series", nil)

	handler.HandleError(w, r, nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logHandler.Count())
}

func TestErrorHandler_SchemaExtensions(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	err := dataset.NewSchemaError(
		[]string{dataset.RoleYear, dataset.RoleDebt},
		[]string{"period", "amount"},
	)
	handler.HandleError(w, r, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

	missing, ok := body["missing_roles"].([]interface{})
	require.True(t, ok)
	assert.Len(t, missing, 2)
	assert.Contains(t, missing, "year")
	assert.Contains(t, missing, "debt")

	columns, ok := body["columns"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, columns, "period")
}

func TestErrorHandler_LoadErrorPathExtension(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	handler.HandleError(w, r, dataset.NewLoadError("data/debt.csv", fmt.Errorf("zero records")))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "data/debt.csv", body["path"])
	assert.Contains(t, body["detail"], `couldn't load data from "data/debt.csv"`)
}

func TestErrorHandler_APIErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		wantType string
	}{
		{"validation", ErrValidationFailed, TypeValidation},
		{"dataset not found", ErrDatasetNotFound, TypeNotFound},
		{"dataset unreadable", ErrDatasetUnreadable, TypeDataUnreadable},
		{"schema invalid", ErrSchemaInvalid, TypeDataSchema},
		{"conflict", ErrConflict, TypeConflict},
		{"rate limit", ErrRateLimitExceeded, TypeRateLimit},
		{"service unavailable", ErrServiceUnavailable, TypeServiceDown},
		{"websocket upgrade", ErrWebSocketUpgrade, TypeWebSocketUpgrade},
		{"unmapped code", New(http.StatusTeapot, "TEAPOT", "I'm a teapot"), TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			r := httptest.NewRequest(http.MethodGet, "/api/series", nil)
			problem := handler.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.StatusCode, problem.Status)
			assert.Equal(t, tt.err.ErrorCode, problem.Extensions["error_code"])
		})
	}
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/series/reload", nil)

	handler.HandlePanic(w, r, "unexpected panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, logHandler.ContainsMessage("panic recovered"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "unexpected panic", body["panic"])
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/missing", nil)

		handler.NotFound(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var problem ProblemDetails
		require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
		assert.Equal(t, TypeNotFound, problem.Type)
		assert.Equal(t, "/api/missing", problem.Instance)
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/series", nil)

		handler.MethodNotAllowed(w, r)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

		var problem ProblemDetails
		require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
		assert.Contains(t, problem.Detail, http.MethodDelete)
	})
}

func TestErrorHandler_Middleware(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	t.Run("recovers from panic", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("handler exploded")
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/series", nil)

		handler.Middleware(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.True(t, logHandler.ContainsMessage("panic recovered"))
	})

	t.Run("logs error status responses", func(t *testing.T) {
		logHandler.Clear()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/series", nil)

		handler.Middleware(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, logHandler.ContainsMessage("error response"))
	})

	t.Run("passes through success", func(t *testing.T) {
		logHandler.Clear()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/health", nil)

		handler.Middleware(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		testutil.AssertNoErrors(t, logHandler)
	})
}
