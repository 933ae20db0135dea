package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NewNotFoundError("order ORD-1 not found"))

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order ORD-1 not found", nfe.Message)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "cart", Message: "cart must not be empty"},
		{Field: "payment_method", Message: "payment_method is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "cart", ve.Details[0].Field)
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("payment already exists for this order")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "payment already exists for this order", ce.Error())

	_, ok = IsNotFoundError(err)
	assert.False(t, ok)
}

func TestForbiddenAndUnauthorizedErrors(t *testing.T) {
	fe, ok := IsForbiddenError(NewForbiddenError("admin only"))
	assert.True(t, ok)
	assert.Equal(t, "admin only", fe.Message)

	ue, ok := IsUnauthorizedError(NewUnauthorizedError("missing token"))
	assert.True(t, ok)
	assert.Equal(t, "missing token", ue.Message)
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewGatewayError("requesting snap token", cause)

	assert.Contains(t, err.Error(), "requesting snap token")
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, errors.Is(err, cause))

	ge, ok := IsGatewayError(fmt.Errorf("show order: %w", err))
	assert.True(t, ok)
	assert.Equal(t, cause, ge.Cause)

	assert.Equal(t, "timeout", NewGatewayError("timeout", nil).Error())
}

func TestDeadlockError(t *testing.T) {
	de, ok := IsDeadlockError(NewDeadlockError("max retries exceeded"))
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Error())
}

func TestPayloadTooLargeError(t *testing.T) {
	pe, ok := IsPayloadTooLargeError(fmt.Errorf("decode: %w", NewPayloadTooLargeError("request body too large", 1024)))
	assert.True(t, ok)
	assert.Equal(t, "request body too large", pe.Error())
	assert.Equal(t, int64(1024), pe.Limit)

	_, ok = IsPayloadTooLargeError(NewValidationError("validation failed"))
	assert.False(t, ok)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
