package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "cozycup/internal/errors"
)

type Envelope struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message,omitempty"`
	Data    any                          `json:"data,omitempty"`
	Errors  []apperrors.ValidationDetail `json:"errors,omitempty"`
	TraceID string                       `json:"traceId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// Respond writes a success envelope around data.
func Respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data, TraceID: TraceID(r.Context())})
}

func RespondMessage(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data, TraceID: TraceID(r.Context())})
}

// WriteError maps application errors onto HTTP statuses. Errors outside the
// application taxonomy are logged and reported as a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := Logger(r.Context())
	traceID := TraceID(r.Context())

	fail := func(status int, message string, details []apperrors.ValidationDetail) {
		WriteJSON(w, status, Envelope{Success: false, Message: message, Errors: details, TraceID: traceID})
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		logger.Warn("validation failed", zap.String("message", ve.Message), zap.Any("details", ve.Details))
		fail(http.StatusBadRequest, ve.Message, ve.Details)
		return
	}
	if pe, ok := apperrors.IsPayloadTooLargeError(err); ok {
		logger.Warn("request body too large", zap.Int64("limit", pe.Limit))
		fail(http.StatusRequestEntityTooLarge, pe.Message, nil)
		return
	}
	if ue, ok := apperrors.IsUnauthorizedError(err); ok {
		logger.Warn("unauthorized", zap.String("message", ue.Message))
		fail(http.StatusUnauthorized, ue.Message, nil)
		return
	}
	if fe, ok := apperrors.IsForbiddenError(err); ok {
		logger.Warn("forbidden", zap.String("message", fe.Message))
		fail(http.StatusForbidden, fe.Message, nil)
		return
	}
	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		logger.Warn("not found", zap.String("message", nfe.Message))
		fail(http.StatusNotFound, nfe.Message, nil)
		return
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		logger.Warn("conflict", zap.String("message", ce.Message))
		fail(http.StatusConflict, ce.Message, nil)
		return
	}
	if de, ok := apperrors.IsDeadlockError(err); ok {
		logger.Warn("deadlock retries exhausted", zap.String("message", de.Message))
		fail(http.StatusConflict, "the request conflicted with a concurrent update, please retry", nil)
		return
	}
	if ge, ok := apperrors.IsGatewayError(err); ok {
		logger.Error("payment gateway error", zap.Error(ge))
		fail(http.StatusBadGateway, ge.Message, nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	fail(http.StatusInternalServerError, "an unexpected error occurred", nil)
}

// DecodeJSON decodes the request body into dst, reporting malformed JSON as
// a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.NewPayloadTooLargeError(
				fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit), maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must not be empty",
			})
		}
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return uint(id), nil
}
