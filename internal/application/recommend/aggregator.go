// Package recommend assembles the storefront recommendation strips: up to
// four independent identifier lists fetched concurrently, each resolved to
// full product records with per-item failure tolerance.
package recommend

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erp/storefront/internal/domain/catalog"
	domainrecommend "github.com/erp/storefront/internal/domain/recommend"
)

// IdentifierSource fetches ordered product-identifier lists per strategy
type IdentifierSource interface {
	TrendingProducts(ctx context.Context, limit int) ([]string, error)
	UserRecommendations(ctx context.Context, userID string, limit int) ([]string, error)
	SimilarProducts(ctx context.Context, productID string, limit int) ([]string, error)
	FrequentlyBoughtTogether(ctx context.Context, productID string, limit int) ([]string, error)
}

// ProductResolver resolves one product identifier to its full record
type ProductResolver interface {
	Product(ctx context.Context, id int64) (*catalog.Product, error)
}

// Limits holds the configured maximum count per section
type Limits struct {
	Trending         int
	Personalized     int
	Similar          int
	FrequentlyBought int
}

// Request describes one aggregation: UserID enables the personalized
// section, CurrentProductID enables the similar and frequently-bought
// sections. Trending is always requested.
type Request struct {
	UserID           string
	CurrentProductID string
}

// Aggregator fans out the section fetches and resolutions. Every
// aggregation runs the full sequence from scratch; a refresh is simply
// another call.
type Aggregator struct {
	src      IdentifierSource
	resolver ProductResolver
	limits   Limits
	logger   *zap.Logger
}

// NewAggregator creates an Aggregator
func NewAggregator(src IdentifierSource, resolver ProductResolver, limits Limits, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		src:      src,
		resolver: resolver,
		limits:   limits,
		logger:   logger,
	}
}

// fetchResult is one section's identifier-list outcome
type fetchResult struct {
	ids []string
	err error
}

// Aggregate runs the full fan-out: identifier fetches for the applicable
// sections run concurrently, then every section's identifiers are resolved
// concurrently. A section whose identifier fetch failed carries its error;
// a section that resolved to nothing is simply empty. Sections are
// returned in fixed priority order: personalized, similar,
// frequently-bought, trending.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) []domainrecommend.Section {
	var trending, personalized, similar, frequentlyBought fetchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trending.ids, trending.err = a.src.TrendingProducts(gctx, a.limits.Trending)
		return nil
	})
	if req.UserID != "" {
		g.Go(func() error {
			personalized.ids, personalized.err = a.src.UserRecommendations(gctx, req.UserID, a.limits.Personalized)
			return nil
		})
	}
	if req.CurrentProductID != "" {
		g.Go(func() error {
			similar.ids, similar.err = a.src.SimilarProducts(gctx, req.CurrentProductID, a.limits.Similar)
			return nil
		})
		g.Go(func() error {
			frequentlyBought.ids, frequentlyBought.err = a.src.FrequentlyBoughtTogether(gctx, req.CurrentProductID, a.limits.FrequentlyBought)
			return nil
		})
	}
	_ = g.Wait()

	// The personalized slot is never left empty while a user is known,
	// unless trending failed too: trending identifiers fill in.
	if req.UserID != "" && (personalized.err != nil || len(personalized.ids) == 0) {
		if trending.err == nil {
			if personalized.err != nil {
				a.logger.Warn("Personalized recommendations unavailable, falling back to trending",
					zap.String("user_id", req.UserID),
					zap.Error(personalized.err),
				)
			}
			personalized = fetchResult{ids: trending.ids}
		}
	}

	sections := make([]domainrecommend.Section, 0, 4)
	if req.UserID != "" {
		sections = append(sections, a.buildSection(ctx, domainrecommend.SourcePersonalized, personalized, a.limits.Personalized))
	}
	if req.CurrentProductID != "" {
		sections = append(sections, a.buildSection(ctx, domainrecommend.SourceSimilar, similar, a.limits.Similar))
		sections = append(sections, a.buildSection(ctx, domainrecommend.SourceFrequentlyBought, frequentlyBought, a.limits.FrequentlyBought))
	}
	sections = append(sections, a.buildSection(ctx, domainrecommend.SourceTrending, trending, a.limits.Trending))

	return sections
}

// buildSection truncates a section's identifier list to its limit and
// resolves it. A failed identifier fetch short-circuits with the error
// attached so callers can report it distinctly from an empty result.
func (a *Aggregator) buildSection(ctx context.Context, source domainrecommend.Source, res fetchResult, limit int) domainrecommend.Section {
	section := domainrecommend.Section{
		Source: source,
		Title:  source.Title(),
	}
	if res.err != nil {
		section.Err = res.err
		return section
	}

	ids := res.ids
	if len(ids) > limit {
		ids = ids[:limit]
	}
	section.ProductIDs = ids
	section.Products = a.resolve(ctx, ids)
	return section
}

// resolve maps identifiers to full product records with one concurrent
// lookup per identifier. Lookups that fail are dropped; the relative order
// of the identifiers that did resolve is preserved.
func (a *Aggregator) resolve(ctx context.Context, ids []string) []catalog.Product {
	if len(ids) == 0 {
		return []catalog.Product{}
	}

	resolved := make([]*catalog.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		productID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			a.logger.Warn("Skipping non-numeric product identifier", zap.String("id", id))
			continue
		}
		i, productID := i, productID
		g.Go(func() error {
			p, err := a.resolver.Product(gctx, productID)
			if err != nil {
				// Partial success is the normal case, not degraded behavior
				a.logger.Debug("Dropping unresolvable recommendation",
					zap.Int64("product_id", productID),
					zap.Error(err),
				)
				return nil
			}
			resolved[i] = p
			return nil
		})
	}
	_ = g.Wait()

	products := make([]catalog.Product, 0, len(ids))
	for _, p := range resolved {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products
}
