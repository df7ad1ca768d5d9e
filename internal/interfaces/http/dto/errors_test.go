package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeConfiguration, http.StatusUnprocessableEntity},
		{ErrCodeImmutable, http.StatusConflict},
		{ErrCodeAlreadyRunning, http.StatusConflict},
		{ErrCodeRemote, http.StatusBadGateway},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeInvalidState, NormalizeErrorCode("INVALID_STATE"))
	assert.Equal(t, ErrCodeRemote, NormalizeErrorCode(ErrCodeRemote))
	assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
		known bool
	}{
		{"configuration", &report.ConfigurationError{Field: "seller", Message: "Please select Seller"}, ErrCodeConfiguration, true},
		{"remote", fmt.Errorf("request: %w", report.NewRemoteError("request_report", "throttled")), ErrCodeRemote, true},
		{"immutable", report.ErrImmutable, ErrCodeImmutable, true},
		{"already running", fmt.Errorf("lease: %w", report.ErrAlreadyRunning), ErrCodeAlreadyRunning, true},
		{"transition", report.ErrInvalidTransition, ErrCodeInvalidState, true},
		{"payload", report.ErrPayloadMissing, ErrCodePayloadMissing, true},
		{"not found", shared.ErrNotFound, ErrCodeNotFound, true},
		{"unknown", fmt.Errorf("boom"), ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, known := ErrorCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestErrorCodeHTTPStatus_EveryCodeHasERRPrefix(t *testing.T) {
	for code, status := range ErrorCodeHTTPStatus {
		assert.Contains(t, code, "ERR_")
		assert.Greater(t, status, 0)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "seller_id", Message: "required"}}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestErrorResponseJSON(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID(ErrCodeRemote, "throttled", "req-test-123")

	data, err := json.Marshal(resp)
	assert.NoError(t, err)

	var decoded Response
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, ErrCodeRemote, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
	assert.False(t, decoded.Error.Timestamp.Before(before.Truncate(time.Second)))
}
