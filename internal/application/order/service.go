// Package order wraps the order endpoints of the upstream API.
package order

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	domainorder "github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// Gateway is the subset of the upstream client the order service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
}

// Service is the order API client
type Service struct {
	gw     Gateway
	logger *zap.Logger
}

// NewService creates an order Service
func NewService(gw Gateway, logger *zap.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

func filtersQuery(f *domainorder.Filters) url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Page != 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Create places a new order
func (s *Service) Create(ctx context.Context, data domainorder.CreateData) (*domainorder.Order, error) {
	var o domainorder.Order
	if err := s.gw.Post(ctx, "/orders", data, &o); err != nil {
		return nil, upstreamError(err, "Failed to create order")
	}
	return &o, nil
}

// Order fetches one order by ID
func (s *Service) Order(ctx context.Context, orderID int64) (*domainorder.Order, error) {
	var o domainorder.Order
	if err := s.gw.Get(ctx, fmt.Sprintf("/orders/%d", orderID), nil, &o); err != nil {
		if gateway.IsNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, upstreamError(err, "Failed to fetch order")
	}
	return &o, nil
}

// Orders lists all orders (admin console)
func (s *Service) Orders(ctx context.Context, filters *domainorder.Filters) (*domainorder.Page, error) {
	var page domainorder.Page
	if err := s.gw.Get(ctx, "/orders", filtersQuery(filters), &page); err != nil {
		return nil, upstreamError(err, "Failed to fetch orders")
	}
	return &page, nil
}

// UserOrders lists a customer's orders
func (s *Service) UserOrders(ctx context.Context, userID int64, filters *domainorder.Filters) (*domainorder.Page, error) {
	var page domainorder.Page
	if err := s.gw.Get(ctx, fmt.Sprintf("/orders/user/%d", userID), filtersQuery(filters), &page); err != nil {
		return nil, upstreamError(err, "Failed to fetch user orders")
	}
	return &page, nil
}

// UpdateStatus updates an order's status (admin console)
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status domainorder.Status) (*domainorder.Order, error) {
	var o domainorder.Order
	body := map[string]any{"status": status}
	if err := s.gw.Patch(ctx, fmt.Sprintf("/orders/%d", orderID), body, &o); err != nil {
		return nil, upstreamError(err, "Failed to update order status")
	}
	return &o, nil
}

// Cancel cancels an order
func (s *Service) Cancel(ctx context.Context, orderID int64) (*domainorder.Order, error) {
	var o domainorder.Order
	body := map[string]any{"status": domainorder.StatusCancelled}
	if err := s.gw.Patch(ctx, fmt.Sprintf("/orders/%d", orderID), body, &o); err != nil {
		return nil, upstreamError(err, "Failed to cancel order")
	}
	return &o, nil
}

func upstreamError(err error, fallback string) error {
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
