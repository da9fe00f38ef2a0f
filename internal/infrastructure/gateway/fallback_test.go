package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithFallbackPrimarySucceeds(t *testing.T) {
	fallbackCalled := false

	got, err := FetchWithFallback(context.Background(),
		func(ctx context.Context) (string, error) { return "primary", nil },
		func(ctx context.Context) (string, error) {
			fallbackCalled = true
			return "fallback", nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "primary", got)
	assert.False(t, fallbackCalled, "fallback must not run when primary succeeds")
}

func TestFetchWithFallbackUsesFallbackOnPrimaryFailure(t *testing.T) {
	got, err := FetchWithFallback(context.Background(),
		func(ctx context.Context) (int, error) { return 0, errors.New("hybrid endpoint down") },
		func(ctx context.Context) (int, error) { return 42, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestFetchWithFallbackSurfacesFallbackError(t *testing.T) {
	primaryErr := &APIError{Status: 503, Message: "hybrid unavailable"}
	fallbackErr := &APIError{Status: 404, Message: "not found"}

	_, err := FetchWithFallback(context.Background(),
		func(ctx context.Context) (string, error) { return "", primaryErr },
		func(ctx context.Context) (string, error) { return "", fallbackErr },
	)

	// The fallback's error is the one callers see: it ran last and its
	// status is what matters for mapping (e.g. 404 detection).
	require.Error(t, err)
	assert.Equal(t, fallbackErr, err)
	assert.True(t, IsNotFound(err))
}
