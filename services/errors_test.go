package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxislegal/legal-ai-gateway/models"
)

func TestDomainError(t *testing.T) {
	t.Run("error message includes type", func(t *testing.T) {
		err := NewDomainError(ErrorTypeValidation, "input is empty", nil)
		assert.Contains(t, err.Error(), "validation")
		assert.Contains(t, err.Error(), "input is empty")
	})

	t.Run("wraps an underlying error", func(t *testing.T) {
		inner := errors.New("boom")
		err := NewDomainError(ErrorTypeInternal, "something failed", inner)
		assert.ErrorIs(t, err, inner)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Is matches on type", func(t *testing.T) {
		err := NewValidationError("temperature out of range")
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrNoProviderAvailable)
	})

	t.Run("WithDetail accumulates details", func(t *testing.T) {
		err := NewValidationError("bad field").
			WithDetail("field", "temperature").
			WithDetail("max", 2.0)

		details := GetErrorDetails(err)
		require.NotNil(t, details)
		assert.Equal(t, "temperature", details["field"])
		assert.Equal(t, 2.0, details["max"])
	})
}

func TestErrorPredicates(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		assert.True(t, IsValidationError(NewValidationError("bad input")))
		assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", ErrValidation)))
		assert.False(t, IsValidationError(ErrNoProviderAvailable))
		assert.False(t, IsValidationError(errors.New("plain")))
		assert.False(t, IsValidationError(nil))
	})

	t.Run("no provider available", func(t *testing.T) {
		assert.True(t, IsNoProviderAvailable(ErrNoProviderAvailable))
		assert.True(t, IsNoProviderAvailable(fmt.Errorf("routing: %w", ErrNoProviderAvailable)))
		assert.False(t, IsNoProviderAvailable(ErrValidation))
	})
}

func TestAllProvidersExhaustedError(t *testing.T) {
	last := errors.New("upstream returned 500")
	err := &AllProvidersExhaustedError{
		Attempted: []models.ProviderID{
			models.ProviderSelfHostedGeneral,
			models.ProviderOpenAI,
			models.ProviderGemini,
		},
		Last: last,
	}

	t.Run("message names every attempted provider", func(t *testing.T) {
		msg := err.Error()
		assert.Contains(t, msg, "self_hosted_general")
		assert.Contains(t, msg, "openai")
		assert.Contains(t, msg, "gemini")
		assert.Contains(t, msg, "upstream returned 500")
	})

	t.Run("unwraps to the last provider error", func(t *testing.T) {
		assert.ErrorIs(t, err, last)
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("gateway: %w", err)
		assert.True(t, IsAllProvidersExhausted(wrapped))

		extracted, ok := AsAllProvidersExhausted(wrapped)
		require.True(t, ok)
		assert.Len(t, extracted.Attempted, 3)
	})

	t.Run("not detected for other errors", func(t *testing.T) {
		assert.False(t, IsAllProvidersExhausted(ErrNoProviderAvailable))
		_, ok := AsAllProvidersExhausted(errors.New("plain"))
		assert.False(t, ok)
	})
}
