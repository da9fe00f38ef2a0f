package cart

import (
	"context"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincart "github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/infrastructure/gateway"
	"github.com/erp/storefront/internal/infrastructure/storage"
)

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	args := m.Called(ctx, path, query, out)
	return args.Error(0)
}

func (m *MockGateway) Post(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *MockGateway) Patch(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *MockGateway) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func newTestService(t *testing.T) (*Service, *MockGateway, *storage.MemoryStore) {
	t.Helper()
	gw := new(MockGateway)
	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewService(gw, store, zap.NewNop()), gw, store
}

func product(id int64, price string) *catalog.Product {
	return &catalog.Product{
		ID:    id,
		Name:  "test product",
		Price: decimal.RequireFromString(price),
	}
}

func variants(pairs ...string) []catalog.ProductVariant {
	var vs []catalog.ProductVariant
	for i := 0; i+1 < len(pairs); i += 2 {
		vs = append(vs, catalog.ProductVariant{Name: pairs[i], Value: pairs[i+1]})
	}
	return vs
}

// ---------------------------------------------------------------------------
// Guest cart
// ---------------------------------------------------------------------------

func TestAddLocalItem_DistinctKeysCreateEntries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 1, nil)
	svc.AddLocalItem(ctx, "client-1", product(2, "5.00"), 3, nil)
	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 2, variants("size", "L"))

	items := svc.LocalItems(ctx, "client-1")
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 2, items[2].Quantity)
}

func TestAddLocalItem_SameKeySumsQuantities(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 2, variants("size", "L"))
	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 3, variants("size", "L"))

	items := svc.LocalItems(ctx, "client-1")
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddLocalItem_VariantOrderDoesNotSplitEntries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 1, variants("size", "L", "color", "red"))
	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 1, variants("color", "red", "size", "L"))

	items := svc.LocalItems(ctx, "client-1")
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddLocalItem_CapturesDiscountedPrice(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	discounted := decimal.RequireFromString("7.50")
	p := product(1, "9.99")
	p.DiscountPrice = &discounted

	svc.AddLocalItem(ctx, "client-1", p, 1, nil)

	items := svc.LocalItems(ctx, "client-1")
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(discounted))
}

func TestUpdateLocalItem(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantLen  int
		wantQty  int
	}{
		{name: "sets quantity", quantity: 7, wantLen: 1, wantQty: 7},
		{name: "zero removes entry", quantity: 0, wantLen: 0},
		{name: "negative removes entry", quantity: -2, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			ctx := context.Background()

			svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 2, nil)
			items := svc.UpdateLocalItem(ctx, "client-1", 1, tt.quantity, nil)

			require.Len(t, items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantQty, items[0].Quantity)
			}
		})
	}
}

func TestUpdateLocalItem_NoMatchIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 2, nil)
	svc.UpdateLocalItem(ctx, "client-1", 99, 5, nil)

	items := svc.LocalItems(ctx, "client-1")
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemoveLocalItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 1, nil)
	svc.AddLocalItem(ctx, "client-1", product(2, "5.00"), 1, nil)

	items := svc.RemoveLocalItem(ctx, "client-1", 1, nil)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)

	// Removing an absent entry is a no-op
	items = svc.RemoveLocalItem(ctx, "client-1", 42, nil)
	assert.Len(t, items, 1)
}

func TestLocalItems_CorruptStorageYieldsEmptyCart(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:local:client-1", "{not json", 0))

	assert.Empty(t, svc.LocalItems(ctx, "client-1"))
}

func TestLocalCountAndTotal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(1, "9.99"), 2, nil)
	svc.AddLocalItem(ctx, "client-1", product(2, "5.00"), 3, nil)

	assert.Equal(t, 5, svc.LocalItemCount(ctx, "client-1"))
	assert.True(t, svc.LocalTotal(ctx, "client-1").Equal(decimal.RequireFromString("34.98")))
}

// ---------------------------------------------------------------------------
// Persisted cart
// ---------------------------------------------------------------------------

func TestPersistedCart_NotFoundIsNotAnError(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Return(&gateway.APIError{Status: 404, Message: "Resource not found"})

	c, err := svc.PersistedCart(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestPersistedCart_SurfacesBackendMessage(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Return(&gateway.APIError{Status: 500, Message: "database unavailable"})

	_, err := svc.PersistedCart(ctx, 42)
	require.Error(t, err)
	assert.Equal(t, "database unavailable", err.Error())
}

// ---------------------------------------------------------------------------
// Merge
// ---------------------------------------------------------------------------

func TestMerge_EmptyLocalCartPerformsNoAdds(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*domaincart.Cart)
			out.ID = 9
			out.CustomerID = 42
		}).
		Return(nil)

	c, err := svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.ID)
	gw.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMerge_EmptyLocalAndNoPersistedCartReturnsSyntheticCart(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Return(&gateway.APIError{Status: 404, Message: "Resource not found"})

	c, err := svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.CustomerID)
	assert.Empty(t, c.Items)
	assert.True(t, c.TotalAmount.IsZero())
}

func TestMerge_AddsInStoredOrderThenClears(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(7, "9.99"), 2, nil)
	svc.AddLocalItem(ctx, "client-1", product(3, "5.00"), 1, nil)

	var added []int64
	gw.On("Post", ctx, "/carts/user/42/items", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			added = append(added, args.Get(2).(addItemRequest).ProductID)
		}).
		Return(nil)
	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*domaincart.Cart)
			out.CustomerID = 42
			out.Items = []domaincart.Item{
				{ID: 1, Quantity: 2, Product: catalog.Product{ID: 7}},
				{ID: 2, Quantity: 1, Product: catalog.Product{ID: 3}},
			}
		}).
		Return(nil)

	c, err := svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, added)
	assert.Len(t, c.Items, 2)
	assert.Empty(t, svc.LocalItems(ctx, "client-1"))

	// Immediate second merge is a no-op: no further adds are issued
	_, err = svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.NoError(t, err)
	gw.AssertNumberOfCalls(t, "Post", 2)
}

func TestMerge_AbortsBeforeClearOnFirstFailure(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(7, "9.99"), 2, nil)
	svc.AddLocalItem(ctx, "client-1", product(3, "5.00"), 1, nil)

	calls := 0
	gw.On("Post", ctx, "/carts/user/42/items", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { calls++ }).
		Return(nil).Once()
	gw.On("Post", ctx, "/carts/user/42/items", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { calls++ }).
		Return(&gateway.APIError{Status: 500, Message: "insert failed"}).Once()

	_, err := svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.Error(t, err)
	assert.Equal(t, "insert failed", err.Error())

	// The first add was already issued; the local cart remains intact
	assert.Equal(t, 2, calls)
	assert.Len(t, svc.LocalItems(ctx, "client-1"), 2)
	gw.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMerge_LoginScenario(t *testing.T) {
	svc, gw, _ := newTestService(t)
	ctx := context.Background()

	svc.AddLocalItem(ctx, "client-1", product(7, "9.99"), 2, nil)

	gw.On("Post", ctx, "/carts/user/42/items", addItemRequest{ProductID: 7, Quantity: 2}, mock.Anything).
		Return(nil)
	gw.On("Get", ctx, "/carts/user/42", url.Values(nil), mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*domaincart.Cart)
			out.CustomerID = 42
			out.Items = []domaincart.Item{{ID: 1, Quantity: 2, Product: catalog.Product{ID: 7}}}
		}).
		Return(nil)

	c, err := svc.MergeLocalIntoPersisted(ctx, "client-1", 42)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(7), c.Items[0].Product.ID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Empty(t, svc.LocalItems(ctx, "client-1"))
}
