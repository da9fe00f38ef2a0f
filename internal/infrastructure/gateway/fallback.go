package gateway

import "context"

// FetchWithFallback tries primary and, on any error, retries with fallback.
// The upstream exposes enriched "hybrid" endpoints that are not always
// deployed alongside the standard ones; callers prefer the enriched
// endpoint and degrade transparently. The primary's error is discarded;
// the fallback's error, if any, is the one surfaced.
func FetchWithFallback[T any](ctx context.Context, primary, fallback func(context.Context) (T, error)) (T, error) {
	v, err := primary(ctx)
	if err == nil {
		return v, nil
	}
	return fallback(ctx)
}
