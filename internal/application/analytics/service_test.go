package analytics

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// MockGateway is a testify mock for the analytics Gateway
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

// stubSessions returns a fixed session identifier
type stubSessions struct {
	id string
}

func (s stubSessions) SessionID(ctx context.Context, clientKey string) string {
	return s.id
}

func newTestService(gw Gateway) *Service {
	return NewService(gw, stubSessions{id: "session_1700000000000_abc123def"}, zap.NewNop())
}

func TestTrendingProductsPassesLimit(t *testing.T) {
	gw := new(MockGateway)
	var gotQuery url.Values
	gw.On("Get", mock.Anything, "/analytics/trending", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotQuery = args.Get(2).(url.Values)
			ids := args.Get(3).(*[]string)
			*ids = []string{"3", "1", "2"}
		}).
		Return(nil)

	svc := newTestService(gw)
	ids, err := svc.TrendingProducts(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, ids)
	assert.Equal(t, "8", gotQuery.Get("limit"))
}

func TestUserRecommendationsSurfacesUpstreamMessage(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Get", mock.Anything, "/recommendations/user/42", mock.Anything, mock.Anything).
		Return(&gateway.APIError{Status: 500, Message: "model retraining"})

	svc := newTestService(gw)
	_, err := svc.UserRecommendations(context.Background(), "42", 6)
	require.Error(t, err)
	assert.Equal(t, "model retraining", err.Error())
}

func TestRecordProductViewSwallowsFailure(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Post", mock.Anything, "/analytics/product-view", mock.Anything, mock.Anything).
		Return(errors.New("analytics backend down"))

	svc := newTestService(gw)

	// Must not panic or surface the error in any way.
	svc.RecordProductView(context.Background(), "client-1", "7", "42")
	gw.AssertExpectations(t)
}

func TestRecordProductViewIncludesSession(t *testing.T) {
	gw := new(MockGateway)
	var gotBody any
	gw.On("Post", mock.Anything, "/analytics/product-view", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotBody = args.Get(2)
		}).
		Return(nil)

	svc := newTestService(gw)
	svc.RecordProductView(context.Background(), "client-1", "7", "")

	event, ok := gotBody.(productViewEvent)
	require.True(t, ok)
	assert.Equal(t, "7", event.ProductID)
	assert.Empty(t, event.UserID)
	assert.Equal(t, "session_1700000000000_abc123def", event.SessionID)
}

func TestTrackSearchSwallowsFailure(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Post", mock.Anything, "/analytics/search", mock.Anything, mock.Anything).
		Return(errors.New("timeout"))

	svc := newTestService(gw)
	svc.TrackSearch(context.Background(), "client-1", "mug", "42", 17)
	gw.AssertExpectations(t)
}

func TestMostViewedProducts(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Get", mock.Anything, "/analytics/most-viewed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entries := args.Get(3).(*[]MostViewed)
			*entries = []MostViewed{{ProductID: "5", ViewCount: 120}}
		}).
		Return(nil)

	svc := newTestService(gw)
	entries, err := svc.MostViewedProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "5", entries[0].ProductID)
	assert.Equal(t, int64(120), entries[0].ViewCount)
}
