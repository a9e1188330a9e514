package services

import (
	"github.com/daemonXid/daemon-one/services/ai"
)

// WrapProviderError maps a façade error into the domain error taxonomy so
// handlers can translate it to HTTP without importing the ai package.
func WrapProviderError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case ai.IsConfigurationError(err):
		return NewDomainError(ErrorTypeUnavailable, "AI provider not configured", err)
	case ai.IsAuthError(err):
		return NewDomainError(ErrorTypeExternal, "AI provider rejected credentials", err)
	case ai.IsRateLimitError(err):
		return NewDomainError(ErrorTypeRateLimit, "AI provider rate limit", err)
	case ai.IsUnsupportedSchemaError(err):
		return NewDomainError(ErrorTypeExternal, "AI provider returned unusable structured output", err)
	case ai.IsUnsupportedOperationError(err):
		return NewDomainError(ErrorTypeValidation, "operation not supported by the active AI provider", err)
	case ai.IsTransportError(err):
		return NewDomainError(ErrorTypeExternal, "AI provider unavailable", err)
	default:
		return NewDomainError(ErrorTypeInternal, "AI provider call failed", err)
	}
}
