package rawg

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy of provider calls.
type ErrorCategory string

const (
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned malformed JSON
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication covers a missing or rejected API key
	ErrorAuthentication ErrorCategory = "authentication"

	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorContractMismatch indicates an unexpected status code
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	ErrorNotFound    ErrorCategory = "not_found"
	ErrorRateLimited ErrorCategory = "rate_limited"
)

// ProviderError wraps a failed provider call with its category.
type ProviderError struct {
	Category   ErrorCategory
	Operation  string
	Message    string
	Underlying error
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("rawg %s [%s]: %s: %v", e.Operation, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("rawg %s [%s]: %s", e.Operation, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

func newProviderError(category ErrorCategory, op, message string, underlying error) *ProviderError {
	return &ProviderError{Category: category, Operation: op, Message: message, Underlying: underlying}
}

// Category extracts the category of err, or "" when err is not a provider error.
func Category(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// IsNotFound reports whether the provider answered 404.
func IsNotFound(err error) bool {
	return Category(err) == ErrorNotFound
}

// tripsBreaker reports whether the failure says the provider itself is unhealthy.
func tripsBreaker(category ErrorCategory) bool {
	switch category {
	case ErrorTimeout, ErrorProviderOutage, ErrorRateLimited:
		return true
	}
	return false
}
