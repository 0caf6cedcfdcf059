package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeNoProvider         ErrorType = "no_provider_available"
	ErrorTypeProvidersExhausted ErrorType = "all_providers_exhausted"
	ErrorTypeInternal           ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	// ErrValidation is returned for malformed requests. Fatal: no
	// provider is attempted and no fallback applies.
	ErrValidation = NewDomainError(ErrorTypeValidation, "invalid analysis request", nil)

	// ErrNoProviderAvailable is returned when no provider is enabled
	// for the request. Fatal: nothing was attempted.
	ErrNoProviderAvailable = NewDomainError(ErrorTypeNoProvider, "no provider available", nil)
)

// NewValidationError creates a validation error with a field-level reason.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, nil)
}

// AllProvidersExhaustedError is returned when every reachable fallback
// failed. It carries the last underlying provider error for diagnostics
// and the ordered list of providers that were attempted.
type AllProvidersExhaustedError struct {
	Attempted []models.ProviderID
	Last      error
}

// Error implements the error interface
func (e *AllProvidersExhaustedError) Error() string {
	names := make([]string, len(e.Attempted))
	for i, p := range e.Attempted {
		names[i] = string(p)
	}
	return fmt.Sprintf("all providers exhausted (attempted: %s): %v", strings.Join(names, ", "), e.Last)
}

// Unwrap implements errors.Unwrap
func (e *AllProvidersExhaustedError) Unwrap() error {
	return e.Last
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsNoProviderAvailable checks if an error means no provider was enabled
func IsNoProviderAvailable(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNoProvider
	}
	return false
}

// IsAllProvidersExhausted checks if an error is a fallback exhaustion error
func IsAllProvidersExhausted(err error) bool {
	var exhausted *AllProvidersExhaustedError
	return errors.As(err, &exhausted)
}

// AsAllProvidersExhausted extracts the exhaustion error from a chain.
func AsAllProvidersExhausted(err error) (*AllProvidersExhaustedError, bool) {
	var exhausted *AllProvidersExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted, true
	}
	return nil, false
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}
