package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cartapp "github.com/erp/storefront/internal/application/cart"
	catalogapp "github.com/erp/storefront/internal/application/catalog"
	identityapp "github.com/erp/storefront/internal/application/identity"
	domaincart "github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/infrastructure/gateway"
	"github.com/erp/storefront/internal/infrastructure/storage"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type localCartPayload struct {
	Items []domaincart.LocalItem `json:"items"`
	Count int                    `json:"count"`
	Total decimal.Decimal        `json:"total"`
}

type localCartEnvelope struct {
	Success bool             `json:"success"`
	Data    localCartPayload `json:"data"`
}

// newCartTestRouter wires the cart handler against real services backed
// by an in-memory store and the given upstream server.
func newCartTestRouter(t *testing.T, upstream http.Handler) *gin.Engine {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	creds := gateway.NewCredentials(store, time.Hour)
	gw := gateway.New(gateway.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, creds, zap.NewNop())

	cartSvc := cartapp.NewService(gw, store, zap.NewNop())
	catalogSvc := catalogapp.NewService(gw, zap.NewNop())
	identitySvc := identityapp.NewService(gw, creds, zap.NewNop())

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.ClientKey())

	h := NewCartHandler(cartSvc, catalogSvc, identitySvc)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

// productUpstream serves the hybrid product endpoint for a single product
func productUpstream(id int64, price, discountPrice string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("/hybrid/products/%d", id), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%d,"name":"Walnut Desk","price":"%s","discountPrice":"%s","stockQuantity":12,"sku":"DESK-01"}`, id, price, discountPrice)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not found"}`)
	})
	return mux
}

func doJSON(engine *gin.Engine, method, path, clientID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ClientIDHeader, clientID)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLocalCartFlow(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(7, "19.99", "14.99"))

	// add captures the discounted price from the catalog, not the client
	w := doJSON(engine, http.MethodPost, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 7,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp localCartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, int64(7), resp.Data.Items[0].ProductID)
	assert.Equal(t, 2, resp.Data.Items[0].Quantity)
	assert.True(t, resp.Data.Items[0].Price.Equal(decimal.RequireFromString("14.99")))
	assert.Equal(t, 2, resp.Data.Count)
	assert.True(t, resp.Data.Total.Equal(decimal.RequireFromString("29.98")))

	// adding the same product again merges quantities
	w = doJSON(engine, http.MethodPost, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 7,
		"quantity":  1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 3, resp.Data.Count)

	// the cart survives across requests for the same client
	w = doJSON(engine, http.MethodGet, "/api/v1/cart/local", "client-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Count)

	// another client sees an empty cart
	w = doJSON(engine, http.MethodGet, "/api/v1/cart/local", "client-b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, 0, resp.Data.Count)

	// quantity zero removes the line
	w = doJSON(engine, http.MethodPatch, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 7,
		"quantity":  0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
	assert.True(t, resp.Data.Total.IsZero())
}

func TestAddLocalItemUnknownProduct(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(7, "19.99", "14.99"))

	w := doJSON(engine, http.MethodPost, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 999,
		"quantity":  1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp localCartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestAddLocalItemDefaultsQuantity(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(3, "5.00", "5.00"))

	w := doJSON(engine, http.MethodPost, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp localCartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
}

func TestClearLocalCart(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(7, "19.99", "14.99"))

	w := doJSON(engine, http.MethodPost, "/api/v1/cart/local/items", "client-a", gin.H{
		"productId": 7,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodDelete, "/api/v1/cart/local", "client-a", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/v1/cart/local", "client-a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp localCartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
}

func TestPersistedCartRequiresAuth(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(7, "19.99", "14.99"))

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/cart", nil},
		{http.MethodPost, "/api/v1/cart/items", gin.H{"productId": 7, "quantity": 1}},
		{http.MethodPost, "/api/v1/cart/merge", nil},
		{http.MethodDelete, "/api/v1/cart", nil},
	} {
		w := doJSON(engine, tc.method, tc.path, "anon-client", tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAddLocalItemInvalidBody(t *testing.T) {
	engine := newCartTestRouter(t, productUpstream(7, "19.99", "14.99"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/local/items", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ClientIDHeader, "client-a")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
