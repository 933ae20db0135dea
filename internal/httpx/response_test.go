package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "cozycup/internal/errors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "cart", Message: "cart must not be empty"}), http.StatusBadRequest, "validation failed"},
		{"too large", apperrors.NewPayloadTooLargeError("request body must not exceed 64 bytes", 64), http.StatusRequestEntityTooLarge, "request body must not exceed 64 bytes"},
		{"unauthorized", apperrors.NewUnauthorizedError("missing bearer token"), http.StatusUnauthorized, "missing bearer token"},
		{"forbidden", apperrors.NewForbiddenError("admin only"), http.StatusForbidden, "admin only"},
		{"not found wrapped", fmt.Errorf("reconcile: %w", apperrors.NewNotFoundError("order not found")), http.StatusNotFound, "order not found"},
		{"conflict", apperrors.NewConflictError("payment already exists for this order"), http.StatusConflict, "payment already exists for this order"},
		{"deadlock", apperrors.NewDeadlockError("max retries exceeded"), http.StatusConflict, "the request conflicted with a concurrent update, please retry"},
		{"gateway", apperrors.NewGatewayError("failed to create payment token", errors.New("dial tcp: timeout")), http.StatusBadGateway, "failed to create payment token"},
		{"unexpected", errors.New("sql: connection refused at 10.0.0.3"), http.StatusInternalServerError, "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithTrace(req.Context(), "trace-1", zap.NewNop()))
			rec := httptest.NewRecorder()

			WriteError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, "trace-1", env.TraceID)
		})
	}
}

func TestWriteError_ValidationDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.NewValidationError("validation failed",
		apperrors.ValidationDetail{Field: "cart[0].quantity", Message: "quantity must be between 1 and 1000"}))

	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "cart[0].quantity", env.Errors[0].Field)
}

func TestRespond(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithTrace(req.Context(), "trace-2", zap.NewNop()))
	rec := httptest.NewRecorder()

	Respond(rec, req, http.StatusCreated, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":1},"traceId":"trace-2"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"latte"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "latte", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	_, ok := apperrors.IsValidationError(DecodeJSON(req, &dst))
	assert.True(t, ok)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	ve, ok := apperrors.IsValidationError(DecodeJSON(req, &dst))
	require.True(t, ok)
	assert.Equal(t, "request body must not be empty", ve.Details[0].Message)

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	pe, ok := apperrors.IsPayloadTooLargeError(DecodeJSON(req, &dst))
	require.True(t, ok)
	assert.Equal(t, int64(16), pe.Limit)
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var gotErr error
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathID(r, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/12", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, uint(12), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	_, ok := apperrors.IsValidationError(gotErr)
	assert.True(t, ok)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/0", nil))
	_, ok = apperrors.IsValidationError(gotErr)
	assert.True(t, ok)
}

func TestLogger_DefaultsToNop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, Logger(req.Context()))
	assert.Empty(t, TraceID(req.Context()))
}
