package gateway

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout is the request timeout when none is configured
	DefaultTimeout = 1000 * time.Second
	// DefaultMaxResponseSize caps response bodies (64MB)
	DefaultMaxResponseSize = 64 * 1024 * 1024
	// DefaultAppName identifies this integration to the gateway
	DefaultAppName = "marketsync"
)

// Errors for gateway configuration
var (
	ErrMissingEndpoint       = errors.New("gateway: endpoint is required")
	ErrMissingDecodeEndpoint = errors.New("gateway: decode endpoint is required")
	ErrMissingAccountToken   = errors.New("gateway: account token is required")
)

// Config holds the settings of the remote report gateway
type Config struct {
	// Endpoint receives report, listing and order calls
	Endpoint string
	// DecodeEndpoint decrypts bodies of report types that need it
	DecodeEndpoint string
	// AccountToken authenticates this installation
	AccountToken string
	// DBUUID identifies the installation database
	DBUUID string
	// AppName is sent with every call
	AppName string
	// Timeout applies to each call
	Timeout time.Duration
	// MaxResponseSize limits how much of a response body is read
	MaxResponseSize int64
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.DecodeEndpoint == "" {
		return ErrMissingDecodeEndpoint
	}
	if c.AccountToken == "" {
		return ErrMissingAccountToken
	}
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	return nil
}
