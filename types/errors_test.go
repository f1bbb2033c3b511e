package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrKindConfig, KindOf(NewConfigError("bad config")))
	assert.Equal(t, ErrKindNotFound, KindOf(NewNotFoundError("missing")))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	// The kind survives fmt wrapping.
	wrapped := fmt.Errorf("handler: %w", NewTimeoutError("deadline", nil))
	assert.Equal(t, ErrKindTimeout, KindOf(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewEmbeddingProviderError("rate limited", true, nil)))
	assert.False(t, IsRetryable(NewEmbeddingProviderError("bad request", false, nil)))
	assert.True(t, IsRetryable(NewTimeoutError("deadline", nil)))
	assert.False(t, IsRetryable(NewNotFoundError("missing")))
	assert.False(t, IsRetryable(errors.New("plain")))

	wrapped := fmt.Errorf("handler: %w", NewGenerationError("overloaded", true, nil))
	assert.True(t, IsRetryable(wrapped))
}

func TestAppError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewRetrievalError("vector index search failed", cause)

	assert.Contains(t, err.Error(), "retrieval")
	assert.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)
}
