package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider call failures.
type ErrorKind string

const (
	// KindAuth covers rejected or missing credentials (HTTP 401/403).
	KindAuth ErrorKind = "auth"

	// KindRateLimit covers quota exhaustion (HTTP 429).
	KindRateLimit ErrorKind = "rate_limit"

	// KindTransport covers network failures and upstream 5xx responses.
	KindTransport ErrorKind = "transport"

	// KindUnsupportedSchema covers structured-output requests the backend
	// could not satisfy (no parseable JSON in the reply).
	KindUnsupportedSchema ErrorKind = "unsupported_schema"

	// KindUnsupportedOperation covers operations a backend does not offer
	// (e.g., DeepSeek embeddings).
	KindUnsupportedOperation ErrorKind = "unsupported_operation"
)

// ConfigurationError reports an unusable façade configuration: an
// unrecognized provider name or a missing credential. Fatal at first use,
// never retried.
type ConfigurationError struct {
	Provider string
	Reason   string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("ai provider %q: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("ai provider configuration: %s", e.Reason)
}

// ProviderError reports a failed provider call. Recoverable by the caller;
// the façade performs no retries of its own.
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Kind classifies the failure
	Kind ErrorKind

	// StatusCode is the upstream HTTP status, when applicable
	StatusCode int

	// Message is a short human-readable description
	Message string

	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(provider string, kind ErrorKind, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
		Err:        cause,
	}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool { return hasKind(err, KindAuth) }

// IsRateLimitError reports whether err is a quota failure.
func IsRateLimitError(err error) bool { return hasKind(err, KindRateLimit) }

// IsTransportError reports whether err is a network or upstream failure.
func IsTransportError(err error) bool { return hasKind(err, KindTransport) }

// IsUnsupportedSchemaError reports whether a structured-output request
// could not be satisfied.
func IsUnsupportedSchemaError(err error) bool { return hasKind(err, KindUnsupportedSchema) }

// IsUnsupportedOperationError reports whether the backend lacks the
// requested operation.
func IsUnsupportedOperationError(err error) bool { return hasKind(err, KindUnsupportedOperation) }

func hasKind(err error, kind ErrorKind) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind == kind
	}
	return false
}

// classifyStatus maps an upstream HTTP status to an error kind.
// 401/403 are credential failures, 429 is quota, everything 5xx (and any
// other unexpected status) is treated as transport.
func classifyStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == 401 || statusCode == 403:
		return KindAuth
	case statusCode == 429:
		return KindRateLimit
	default:
		return KindTransport
	}
}
