package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name:     "status and message",
			err:      &ProviderError{StatusCode: 404, Message: "city not found"},
			expected: "weather provider error (status 404): city not found",
		},
		{
			name:     "transport failure",
			err:      &ProviderError{Err: errors.New("connection refused")},
			expected: "weather provider error: connection refused",
		},
		{
			name:     "bare",
			err:      &ProviderError{},
			expected: "weather provider error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsProviderError(t *testing.T) {
	cause := errors.New("timeout")
	wrapped := fmt.Errorf("failed to get reading: %w", &ProviderError{Err: cause})

	assert.True(t, IsProviderError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, IsProviderError(errors.New("other")))
	assert.False(t, IsProviderError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("installation: %w", ErrNotFound)))
	assert.False(t, IsNotFoundError(ErrVerificationFailed))
	assert.False(t, IsNotFoundError(nil))
}
