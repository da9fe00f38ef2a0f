package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/storefront/internal/infrastructure/storage"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Credentials) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	creds := NewCredentials(store, time.Hour)
	client := New(Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, creds, zap.NewNop())
	return client, creds
}

func TestClientInjectsBearerToken(t *testing.T) {
	var gotAuth string
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	ctx := WithClientKey(context.Background(), "client-1")
	require.NoError(t, creds.Save(ctx, "client-1", "tok-abc", `{"id":1}`))

	require.NoError(t, client.Get(ctx, "/products", nil, nil))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClientOmitsAuthorizationWithoutCredentials(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	ctx := WithClientKey(context.Background(), "client-1")
	require.NoError(t, client.Get(ctx, "/products", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestClientDecodesResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/7", r.URL.Path)
		w.Write([]byte(`{"id":7,"name":"Mug"}`))
	}))

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, client.Get(context.Background(), "/products/7", nil, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Mug", out.Name)
}

func TestClientExtractsErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "flat message payload",
			status:  http.StatusBadRequest,
			body:    `{"message":"Product is out of stock"}`,
			wantMsg: "Product is out of stock",
		},
		{
			name:    "nested error payload",
			status:  http.StatusConflict,
			body:    `{"error":{"message":"Cart was modified concurrently"}}`,
			wantMsg: "Cart was modified concurrently",
		},
		{
			name:    "unparseable body falls back to generic text",
			status:  http.StatusInternalServerError,
			body:    `<html>boom</html>`,
			wantMsg: "Request failed with HTTP 500",
		},
		{
			name:    "empty body falls back to generic text",
			status:  http.StatusBadGateway,
			body:    "",
			wantMsg: "Request failed with HTTP 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			err := client.Get(context.Background(), "/products", nil, nil)
			require.Error(t, err)

			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClientNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Cart not found"}`))
	}))

	err := client.Get(context.Background(), "/carts/user/42", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestClientUnauthorizedPurgesCredentialsAndFiresHook(t *testing.T) {
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expired"}`))
	}))

	ctx := WithClientKey(context.Background(), "client-1")
	require.NoError(t, creds.Save(ctx, "client-1", "stale-token", `{"id":1}`))

	var hookKey string
	client.SetOnUnauthorized(func(ctx context.Context, clientKey string) {
		hookKey = clientKey
	})

	err := client.Get(ctx, "/auth/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Token expired", err.(*APIError).Message)

	// Caller still gets the error, but the stored credentials are gone
	// and the re-auth hook has fired.
	assert.Equal(t, "client-1", hookKey)

	token, err := creds.Token(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := creds.User(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, user)
}

func TestClientUnauthorizedWithoutClientKeySkipsHook(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	hookFired := false
	client.SetOnUnauthorized(func(ctx context.Context, clientKey string) {
		hookFired = true
	})

	err := client.Get(context.Background(), "/auth/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, hookFired)
}

func TestMessageHelper(t *testing.T) {
	apiErr := &APIError{Status: 400, Message: "Invalid quantity"}
	assert.Equal(t, "Invalid quantity", Message(apiErr, "fallback"))
	assert.Equal(t, "fallback", Message(context.DeadlineExceeded, "fallback"))
}
