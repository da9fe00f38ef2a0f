package order

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainorder "github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// MockGateway is a testify mock for the order Gateway
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

func newTestService(gw Gateway) *Service {
	return NewService(gw, zap.NewNop())
}

func TestCreateOrder(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Post", mock.Anything, "/orders", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			o := args.Get(3).(*domainorder.Order)
			o.ID = 42
			o.Status = domainorder.StatusPending
		}).
		Return(nil)

	svc := newTestService(gw)
	order, err := svc.Create(context.Background(), domainorder.CreateData{
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		PaymentMethod:   domainorder.PaymentCreditCard,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domainorder.StatusPending, order.Status)
}

func TestCreateOrderSurfacesBackendMessage(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Post", mock.Anything, "/orders", mock.Anything, mock.Anything).
		Return(&gateway.APIError{Status: http.StatusBadRequest, Message: "Insufficient stock for product 7"})

	svc := newTestService(gw)
	_, err := svc.Create(context.Background(), domainorder.CreateData{})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrUpstream.Code, domainErr.Code)
	assert.Equal(t, "Insufficient stock for product 7", domainErr.Message)
}

func TestOrderNotFound(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Get", mock.Anything, "/orders/99", mock.Anything, mock.Anything).
		Return(&gateway.APIError{Status: http.StatusNotFound, Message: "Order not found"})

	svc := newTestService(gw)
	_, err := svc.Order(context.Background(), 99)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserOrdersAppliesFilters(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Get", mock.Anything, "/orders/user/5", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			q := args.Get(2).(url.Values)
			assert.Equal(t, "shipped", q.Get("status"))
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "10", q.Get("limit"))

			page := args.Get(3).(*domainorder.Page)
			page.Data = []domainorder.Order{{ID: 1}, {ID: 2}}
			page.Total = 12
		}).
		Return(nil)

	svc := newTestService(gw)
	page, err := svc.UserOrders(context.Background(), 5, &domainorder.Filters{
		Status: domainorder.StatusShipped,
		Page:   2,
		Limit:  10,
	})

	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(12), page.Total)
}

func TestUserOrdersNilFilters(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Get", mock.Anything, "/orders/user/5", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			q := args.Get(2).(url.Values)
			assert.Empty(t, q)
		}).
		Return(nil)

	svc := newTestService(gw)
	_, err := svc.UserOrders(context.Background(), 5, nil)
	require.NoError(t, err)
}

func TestCancelSendsCancelledStatus(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Patch", mock.Anything, "/orders/42", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body := args.Get(2).(map[string]any)
			assert.Equal(t, domainorder.StatusCancelled, body["status"])

			o := args.Get(3).(*domainorder.Order)
			o.ID = 42
			o.Status = domainorder.StatusCancelled
		}).
		Return(nil)

	svc := newTestService(gw)
	order, err := svc.Cancel(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusCancelled, order.Status)
}

func TestCancelSurfacesBackendMessage(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Patch", mock.Anything, "/orders/42", mock.Anything, mock.Anything).
		Return(&gateway.APIError{Status: http.StatusConflict, Message: "Order already shipped"})

	svc := newTestService(gw)
	_, err := svc.Cancel(context.Background(), 42)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Order already shipped", domainErr.Message)
}
