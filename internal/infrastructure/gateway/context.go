package gateway

import "context"

type clientKeyContextKey struct{}

// WithClientKey returns a context carrying the client identity used to look
// up stored credentials for outgoing requests
func WithClientKey(ctx context.Context, clientKey string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, clientKey)
}

// ClientKeyFrom returns the client identity from ctx, or empty when absent
func ClientKeyFrom(ctx context.Context) string {
	if key, ok := ctx.Value(clientKeyContextKey{}).(string); ok {
		return key
	}
	return ""
}
