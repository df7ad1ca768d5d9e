package report

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing required setup (seller, date range, mapping)
	ErrConfiguration = errors.New("report: configuration error")
	// ErrRemote marks a failed gateway call
	ErrRemote = errors.New("report: remote call failed")
	// ErrResolutionMismatch marks a row that could not be mapped to a domain entity
	ErrResolutionMismatch = errors.New("report: resolution mismatch")
	// ErrImmutable is returned when deleting or re-requesting a processed report
	ErrImmutable = errors.New("report: processed report cannot be modified")
	// ErrAlreadyRunning is returned when another pass holds the lease
	ErrAlreadyRunning = errors.New("report: reconciliation already running")
	// ErrInvalidTransition is returned for a state change the lifecycle forbids
	ErrInvalidTransition = errors.New("report: invalid state transition")
	// ErrPayloadMissing is returned when reconciling before the body was fetched
	ErrPayloadMissing = errors.New("report: no report payload attached")
)

// RemoteError carries the reason returned by the marketplace gateway
type RemoteError struct {
	Op     string
	Reason string
}

func (e *RemoteError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is lets errors.Is(err, ErrRemote) match
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// NewRemoteError creates a remote error for the given gateway operation
func NewRemoteError(op, reason string) *RemoteError {
	return &RemoteError{Op: op, Reason: reason}
}

// ConfigurationError names the missing piece of setup
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrConfiguration) match
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// MismatchError describes one unresolved row
type MismatchError struct {
	Message string
}

func (e *MismatchError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrResolutionMismatch) match
func (e *MismatchError) Is(target error) bool {
	return target == ErrResolutionMismatch
}

// Mismatchf formats a MismatchError
func Mismatchf(format string, args ...any) *MismatchError {
	return &MismatchError{Message: fmt.Sprintf(format, args...)}
}
