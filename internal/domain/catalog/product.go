package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the full product record returned by the commerce backend.
// Rich content fields populated by the hybrid endpoint may be absent when
// the standard endpoint served the request.
type Product struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         decimal.Decimal    `json:"price"`
	DiscountPrice *decimal.Decimal   `json:"discountPrice,omitempty"`
	StockQuantity int                `json:"stockQuantity"`
	SKU           string             `json:"sku"`
	Weight        *float64           `json:"weight,omitempty"`
	Images        []ProductImage     `json:"images,omitempty"`
	Category      *Category          `json:"category,omitempty"`
	Variants      []ProductVariant   `json:"variants,omitempty"`
	Attributes    []ProductAttribute `json:"attributes,omitempty"`
	Content       []ProductContent   `json:"content,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// EffectivePrice returns the discounted price when present, else the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}

// InStock reports whether the product has stock available.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductImage is a product gallery image
type ProductImage struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"altText,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// PrimaryImage returns the primary image, or the first one when none is flagged.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// ProductVariant is a selectable product option (e.g. size, color)
type ProductVariant struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Value           string          `json:"value"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	StockQuantity   int             `json:"stockQuantity"`
}

// ProductAttribute is a display-only product property
type ProductAttribute struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductContent holds enriched content served only by the hybrid endpoint
type ProductContent struct {
	ID              string         `json:"id"`
	ProductID       string         `json:"productId"`
	Description     string         `json:"description,omitempty"`
	Features        []string       `json:"features,omitempty"`
	Specifications  map[string]any `json:"specifications,omitempty"`
	RichDescription string         `json:"richDescription,omitempty"`
	VideoURLs       []string       `json:"videoUrls,omitempty"`
}

// ProductFilters are query parameters accepted by the product listing endpoints
type ProductFilters struct {
	Search     string `json:"search,omitempty"`
	CategoryID int64  `json:"categoryId,omitempty"`
	MinPrice   string `json:"minPrice,omitempty"`
	MaxPrice   string `json:"maxPrice,omitempty"`
	InStock    bool   `json:"inStock,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// PaginatedProducts is a page of products with pagination metadata
type PaginatedProducts struct {
	Data       []Product `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
