package catalog

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domaincatalog "github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
)

// FeaturedProducts assembles a storefront-landing product list by trying
// strategies in order: trending identifiers resolved to products, hybrid
// listing sorted by newest, the dedicated featured endpoint, and finally a
// plain product listing. Each strategy's failure only moves on to the next.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]domaincatalog.Product, error) {
	if products := s.featuredFromTrending(ctx, limit); len(products) > 0 {
		return products, nil
	}

	q := url.Values{"sortBy": []string{"newest"}, "limit": []string{strconv.Itoa(limit)}}
	var page domaincatalog.PaginatedProducts
	if err := s.gw.Get(ctx, "/hybrid/products", q, &page); err == nil && len(page.Data) > 0 {
		return page.Data, nil
	} else if err != nil {
		s.logger.Debug("Hybrid products endpoint unavailable for featured", zap.Error(err))
	}

	page = domaincatalog.PaginatedProducts{}
	if err := s.gw.Get(ctx, "/products/featured", url.Values{"limit": []string{strconv.Itoa(limit)}}, &page); err == nil && len(page.Data) > 0 {
		return page.Data, nil
	} else if err != nil {
		s.logger.Debug("Featured products endpoint unavailable", zap.Error(err))
	}

	page = domaincatalog.PaginatedProducts{}
	if err := s.gw.Get(ctx, "/products", q, &page); err != nil {
		return nil, shared.NewDomainError(shared.ErrUpstream.Code, "Failed to fetch featured products")
	}
	return page.Data, nil
}

// featuredFromTrending fetches trending identifiers and resolves them to
// products concurrently, dropping identifiers that fail to resolve
func (s *Service) featuredFromTrending(ctx context.Context, limit int) []domaincatalog.Product {
	var ids []string
	if err := s.gw.Get(ctx, "/analytics/trending", url.Values{"limit": []string{strconv.Itoa(limit)}}, &ids); err != nil {
		s.logger.Debug("Trending endpoint unavailable for featured", zap.Error(err))
		return nil
	}
	if len(ids) == 0 {
		return nil
	}

	resolved := make([]*domaincatalog.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		productID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		i, productID := i, productID
		g.Go(func() error {
			p, err := s.Product(gctx, productID)
			if err != nil {
				// Partial resolution is the expected case
				return nil
			}
			resolved[i] = p
			return nil
		})
	}
	_ = g.Wait()

	products := make([]domaincatalog.Product, 0, len(ids))
	for _, p := range resolved {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products
}
