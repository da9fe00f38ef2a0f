// Package analytics wraps the analytics and recommendation endpoints of
// the upstream API: identifier-list fetchers for the recommendation
// strategies, and best-effort event tracking that must never interrupt the
// user-facing flow that triggered it.
package analytics

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// Gateway is the subset of the upstream client the analytics service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// SessionProvider supplies the anonymous session identifier for a client
type SessionProvider interface {
	SessionID(ctx context.Context, clientKey string) string
}

// Service is the analytics API client
type Service struct {
	gw       Gateway
	sessions SessionProvider
	logger   *zap.Logger
}

// NewService creates an analytics Service
func NewService(gw Gateway, sessions SessionProvider, logger *zap.Logger) *Service {
	return &Service{
		gw:       gw,
		sessions: sessions,
		logger:   logger,
	}
}

func limitQuery(limit int) url.Values {
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

// ---------------------------------------------------------------------------
// Identifier-list fetchers
// ---------------------------------------------------------------------------

// TrendingProducts returns the globally trending product identifiers,
// most relevant first
func (s *Service) TrendingProducts(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	if err := s.gw.Get(ctx, "/analytics/trending", limitQuery(limit), &ids); err != nil {
		return nil, upstreamError(err, "Failed to fetch trending products")
	}
	return ids, nil
}

// UserRecommendations returns personalized product identifiers for a user
func (s *Service) UserRecommendations(ctx context.Context, userID string, limit int) ([]string, error) {
	var ids []string
	if err := s.gw.Get(ctx, "/recommendations/user/"+url.PathEscape(userID), limitQuery(limit), &ids); err != nil {
		return nil, upstreamError(err, "Failed to fetch user recommendations")
	}
	return ids, nil
}

// SimilarProducts returns identifiers of products similar to productID
func (s *Service) SimilarProducts(ctx context.Context, productID string, limit int) ([]string, error) {
	var ids []string
	if err := s.gw.Get(ctx, "/analytics/similar-products/"+url.PathEscape(productID), limitQuery(limit), &ids); err != nil {
		return nil, upstreamError(err, "Failed to fetch similar products")
	}
	return ids, nil
}

// FrequentlyBoughtTogether returns identifiers of products frequently
// bought together with productID
func (s *Service) FrequentlyBoughtTogether(ctx context.Context, productID string, limit int) ([]string, error) {
	var ids []string
	if err := s.gw.Get(ctx, "/analytics/frequently-bought-together/"+url.PathEscape(productID), limitQuery(limit), &ids); err != nil {
		return nil, upstreamError(err, "Failed to fetch frequently bought together")
	}
	return ids, nil
}

// PopularByCategory returns popular product identifiers within a category
func (s *Service) PopularByCategory(ctx context.Context, categoryID string, limit int) ([]string, error) {
	var ids []string
	if err := s.gw.Get(ctx, "/analytics/popular-by-category/"+url.PathEscape(categoryID), limitQuery(limit), &ids); err != nil {
		return nil, upstreamError(err, "Failed to fetch popular products by category")
	}
	return ids, nil
}

// MostViewed is a product with its view count and rank
type MostViewed struct {
	ProductID string `json:"productId"`
	ViewCount int64  `json:"viewCount"`
	Rank      int    `json:"rank"`
}

// MostViewedProducts returns the most viewed products site-wide
func (s *Service) MostViewedProducts(ctx context.Context, limit int) ([]MostViewed, error) {
	var out []MostViewed
	if err := s.gw.Get(ctx, "/analytics/most-viewed", limitQuery(limit), &out); err != nil {
		return nil, upstreamError(err, "Failed to fetch most viewed products")
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Best-effort event tracking
// ---------------------------------------------------------------------------

// productViewEvent is the product-view tracking payload
type productViewEvent struct {
	ProductID string `json:"productId"`
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId"`
}

// RecordProductView records a product view. Failures are logged and
// swallowed: tracking must never interrupt browsing.
func (s *Service) RecordProductView(ctx context.Context, clientKey, productID, userID string) {
	event := productViewEvent{
		ProductID: productID,
		UserID:    userID,
		SessionID: s.sessions.SessionID(ctx, clientKey),
	}
	if err := s.gw.Post(ctx, "/analytics/product-view", event, nil); err != nil {
		s.logger.Warn("Failed to record product view",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}

// categoryViewEvent is the category-view tracking payload
type categoryViewEvent struct {
	CategoryID string `json:"categoryId"`
	UserID     string `json:"userId,omitempty"`
	SessionID  string `json:"sessionId"`
}

// RecordCategoryView records a category view, best-effort
func (s *Service) RecordCategoryView(ctx context.Context, clientKey, categoryID, userID string) {
	event := categoryViewEvent{
		CategoryID: categoryID,
		UserID:     userID,
		SessionID:  s.sessions.SessionID(ctx, clientKey),
	}
	if err := s.gw.Post(ctx, "/analytics/category-view", event, nil); err != nil {
		s.logger.Warn("Failed to record category view",
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
	}
}

// pageViewEvent is the page-view tracking payload
type pageViewEvent struct {
	Page      string `json:"page"`
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
}

// TrackPageView records a generic page view, best-effort
func (s *Service) TrackPageView(ctx context.Context, clientKey, page, userID string) {
	event := pageViewEvent{
		Page:      page,
		UserID:    userID,
		SessionID: s.sessions.SessionID(ctx, clientKey),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.gw.Post(ctx, "/analytics/page-view", event, nil); err != nil {
		s.logger.Warn("Failed to track page view",
			zap.String("page", page),
			zap.Error(err),
		)
	}
}

// searchEvent is the search tracking payload
type searchEvent struct {
	Query        string `json:"query"`
	UserID       string `json:"userId,omitempty"`
	SessionID    string `json:"sessionId"`
	ResultsCount int    `json:"resultsCount"`
	Timestamp    string `json:"timestamp"`
}

// TrackSearch records a search query, best-effort
func (s *Service) TrackSearch(ctx context.Context, clientKey, query, userID string, resultsCount int) {
	event := searchEvent{
		Query:        query,
		UserID:       userID,
		SessionID:    s.sessions.SessionID(ctx, clientKey),
		ResultsCount: resultsCount,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.gw.Post(ctx, "/analytics/search", event, nil); err != nil {
		s.logger.Warn("Failed to track search",
			zap.String("query", query),
			zap.Error(err),
		)
	}
}

func upstreamError(err error, fallback string) error {
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
