// Package catalog wraps the product and category endpoints of the
// upstream API. Product reads prefer the enriched hybrid endpoints and
// fall back to the standard ones when they are unavailable.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	domaincatalog "github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// Gateway is the subset of the upstream client the catalog service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Service is the product/category API client
type Service struct {
	gw     Gateway
	logger *zap.Logger
}

// NewService creates a catalog Service
func NewService(gw Gateway, logger *zap.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

// filtersQuery converts product filters to query parameters
func filtersQuery(f *domaincatalog.ProductFilters) url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CategoryID != 0 {
		q.Set("categoryId", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.MinPrice != "" {
		q.Set("minPrice", f.MinPrice)
	}
	if f.MaxPrice != "" {
		q.Set("maxPrice", f.MaxPrice)
	}
	if f.InStock {
		q.Set("inStock", "true")
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.Page != 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Products lists products, preferring the hybrid endpoint
func (s *Service) Products(ctx context.Context, filters *domaincatalog.ProductFilters) (*domaincatalog.PaginatedProducts, error) {
	page, err := gateway.FetchWithFallback(ctx,
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, "/hybrid/products", filtersQuery(filters), &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			s.logger.Debug("Hybrid products endpoint unavailable, using standard endpoint")
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, "/products", filtersQuery(filters), &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
	)
	if err != nil {
		return nil, upstreamError(err, "Failed to fetch products")
	}
	return page, nil
}

// Product fetches one product by ID, preferring the hybrid endpoint.
// A 404 from both endpoints surfaces as shared.ErrNotFound.
func (s *Service) Product(ctx context.Context, id int64) (*domaincatalog.Product, error) {
	p, err := gateway.FetchWithFallback(ctx,
		func(ctx context.Context) (*domaincatalog.Product, error) {
			var p domaincatalog.Product
			if err := s.gw.Get(ctx, fmt.Sprintf("/hybrid/products/%d", id), nil, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func(ctx context.Context) (*domaincatalog.Product, error) {
			var p domaincatalog.Product
			if err := s.gw.Get(ctx, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
	)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, upstreamError(err, "Failed to fetch product")
	}
	return p, nil
}

// SearchProducts searches products by free-text query, preferring the
// hybrid endpoint
func (s *Service) SearchProducts(ctx context.Context, query string, filters *domaincatalog.ProductFilters) (*domaincatalog.PaginatedProducts, error) {
	page, err := gateway.FetchWithFallback(ctx,
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			q := filtersQuery(filters)
			q.Set("search", query)
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, "/hybrid/products", q, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			q := filtersQuery(filters)
			q.Set("query", query)
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, "/products/search", q, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
	)
	if err != nil {
		return nil, upstreamError(err, "Failed to search products")
	}
	return page, nil
}

// ProductsByCategory lists products within a category, preferring the
// hybrid endpoint
func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64, filters *domaincatalog.ProductFilters) (*domaincatalog.PaginatedProducts, error) {
	page, err := gateway.FetchWithFallback(ctx,
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			q := filtersQuery(filters)
			q.Set("categoryId", strconv.FormatInt(categoryID, 10))
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, "/hybrid/products", q, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func(ctx context.Context) (*domaincatalog.PaginatedProducts, error) {
			var p domaincatalog.PaginatedProducts
			if err := s.gw.Get(ctx, fmt.Sprintf("/products/category/%d", categoryID), filtersQuery(filters), &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
	)
	if err != nil {
		return nil, upstreamError(err, "Failed to fetch products by category")
	}
	return page, nil
}

// Categories lists all categories
func (s *Service) Categories(ctx context.Context) ([]domaincatalog.Category, error) {
	var categories []domaincatalog.Category
	if err := s.gw.Get(ctx, "/categories", nil, &categories); err != nil {
		return nil, upstreamError(err, "Failed to fetch categories")
	}
	return categories, nil
}

// Category fetches one category by ID
func (s *Service) Category(ctx context.Context, id int64) (*domaincatalog.Category, error) {
	var c domaincatalog.Category
	if err := s.gw.Get(ctx, fmt.Sprintf("/categories/%d", id), nil, &c); err != nil {
		if gateway.IsNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, upstreamError(err, "Failed to fetch category")
	}
	return &c, nil
}

func upstreamError(err error, fallback string) error {
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
