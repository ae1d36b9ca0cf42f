package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskbrief/taskbrief/internal/api/middleware"
	"github.com/taskbrief/taskbrief/internal/api/shared"
	"github.com/taskbrief/taskbrief/internal/platform/logger"
)

func TestTraceMiddlewareSetsTraceID(t *testing.T) {
	t.Parallel()

	var seenTraceID string
	handler := middleware.TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, seenTraceID, 2*shared.TraceIDLength)
}

func TestTraceMiddlewareAttachesContextLogger(t *testing.T) {
	t.Parallel()

	handler := middleware.TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		assert.NotNil(t, log)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTraceIDsAreUniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	handler := middleware.TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[shared.GetTraceID(r.Context())] = true
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/anything", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Len(t, seen, 5)
}
