package review

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	domainreview "github.com/erp/storefront/internal/domain/review"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// Gateway is the subset of the upstream client the review service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// Service is the product review API client
type Service struct {
	gw     Gateway
	logger *zap.Logger
}

// NewService creates a review Service
func NewService(gw Gateway, logger *zap.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

// Create submits a new review
func (s *Service) Create(ctx context.Context, data domainreview.CreateData) (*domainreview.Review, error) {
	var r domainreview.Review
	if err := s.gw.Post(ctx, "/reviews", data, &r); err != nil {
		return nil, upstreamError(err, "Failed to create review")
	}
	return &r, nil
}

// ProductReviews returns a page of reviews for one product
func (s *Service) ProductReviews(ctx context.Context, productID int64, page, limit int) (*domainreview.Page, error) {
	var p domainreview.Page
	if err := s.gw.Get(ctx, fmt.Sprintf("/reviews/product/%d", productID), pageQuery(page, limit), &p); err != nil {
		return nil, upstreamError(err, "Failed to fetch product reviews")
	}
	return &p, nil
}

// UserReviews returns a page of reviews written by one customer
func (s *Service) UserReviews(ctx context.Context, userID int64, page, limit int) (*domainreview.Page, error) {
	var p domainreview.Page
	if err := s.gw.Get(ctx, fmt.Sprintf("/reviews/user/%d", userID), pageQuery(page, limit), &p); err != nil {
		return nil, upstreamError(err, "Failed to fetch user reviews")
	}
	return &p, nil
}

// AverageRating returns the average rating and review count for a product
func (s *Service) AverageRating(ctx context.Context, productID int64) (*domainreview.Rating, error) {
	var r domainreview.Rating
	if err := s.gw.Get(ctx, fmt.Sprintf("/reviews/product/%d/average-rating", productID), nil, &r); err != nil {
		return nil, upstreamError(err, "Failed to fetch product rating")
	}
	return &r, nil
}

// Summary returns the aggregated rating distribution for a product
func (s *Service) Summary(ctx context.Context, productID int64) (*domainreview.Summary, error) {
	var sum domainreview.Summary
	if err := s.gw.Get(ctx, fmt.Sprintf("/reviews/product/%d/summary", productID), nil, &sum); err != nil {
		return nil, upstreamError(err, "Failed to fetch review summary")
	}
	return &sum, nil
}

// Update patches an existing review
func (s *Service) Update(ctx context.Context, reviewID int64, data domainreview.CreateData) (*domainreview.Review, error) {
	var r domainreview.Review
	if err := s.gw.Patch(ctx, fmt.Sprintf("/reviews/%d", reviewID), data, &r); err != nil {
		return nil, upstreamError(err, "Failed to update review")
	}
	return &r, nil
}

// Remove deletes a review
func (s *Service) Remove(ctx context.Context, reviewID int64) error {
	if err := s.gw.Delete(ctx, fmt.Sprintf("/reviews/%d", reviewID)); err != nil {
		return upstreamError(err, "Failed to delete review")
	}
	return nil
}

// Eligibility checks whether a customer can review a product
func (s *Service) Eligibility(ctx context.Context, userID, productID int64) (*domainreview.Eligibility, error) {
	var e domainreview.Eligibility
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	q.Set("productId", strconv.FormatInt(productID, 10))
	if err := s.gw.Get(ctx, "/reviews/can-review", q, &e); err != nil {
		return nil, upstreamError(err, "Failed to check review eligibility")
	}
	return &e, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func upstreamError(err error, fallback string) error {
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
