package dto

import (
	"errors"
	"net/http"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Report lifecycle error codes
const (
	// ErrCodeConfiguration is used when seller or mapping setup is missing
	ErrCodeConfiguration = "ERR_CONFIGURATION"
	// ErrCodeImmutable is used when a processed report is modified
	ErrCodeImmutable = "ERR_IMMUTABLE"
	// ErrCodeAlreadyRunning is used when another pass holds the lease
	ErrCodeAlreadyRunning = "ERR_ALREADY_RUNNING"
	// ErrCodeInvalidState is used when the lifecycle forbids the operation
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodePayloadMissing is used when processing before fetching
	ErrCodePayloadMissing = "ERR_PAYLOAD_MISSING"
	// ErrCodeRemote is used when the marketplace gateway call failed
	ErrCodeRemote = "ERR_REMOTE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeConfiguration:  http.StatusUnprocessableEntity,
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodePayloadMissing: http.StatusUnprocessableEntity,
	ErrCodeImmutable:      http.StatusConflict,
	ErrCodeAlreadyRunning: http.StatusConflict,
	ErrCodeRemote:         http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps shared domain error codes to the ERR_ format
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// ErrorCode derives the error code of err. The second result is false for
// errors without a known classification.
func ErrorCode(err error) (string, bool) {
	var domainErr *shared.DomainError
	switch {
	case errors.Is(err, report.ErrConfiguration):
		return ErrCodeConfiguration, true
	case errors.Is(err, report.ErrImmutable):
		return ErrCodeImmutable, true
	case errors.Is(err, report.ErrAlreadyRunning):
		return ErrCodeAlreadyRunning, true
	case errors.Is(err, report.ErrInvalidTransition):
		return ErrCodeInvalidState, true
	case errors.Is(err, report.ErrPayloadMissing):
		return ErrCodePayloadMissing, true
	case errors.Is(err, report.ErrRemote):
		return ErrCodeRemote, true
	case errors.As(err, &domainErr):
		return NormalizeErrorCode(domainErr.Code), true
	}
	return ErrCodeInternal, false
}
