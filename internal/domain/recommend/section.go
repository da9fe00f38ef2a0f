package recommend

import "github.com/erp/storefront/internal/domain/catalog"

// Source names a recommendation strategy served by the analytics backend
type Source string

const (
	SourceTrending         Source = "trending"
	SourcePersonalized     Source = "personalized"
	SourceSimilar          Source = "similar"
	SourceFrequentlyBought Source = "frequently_bought_together"
)

// Title returns the user-facing heading for a source
func (s Source) Title() string {
	switch s {
	case SourcePersonalized:
		return "Recommended for You"
	case SourceSimilar:
		return "Similar Products"
	case SourceFrequentlyBought:
		return "Frequently Bought Together"
	default:
		return "Trending Now"
	}
}

// Section is one resolved recommendation strip. ProductIDs is the ordered
// identifier list the backend returned; Products holds the identifiers that
// resolved to full records, in the same relative order. Err is set only when
// the identifier-list fetch itself failed, which callers must report
// distinctly from an empty result.
type Section struct {
	Source     Source            `json:"source"`
	Title      string            `json:"title"`
	ProductIDs []string          `json:"productIds"`
	Products   []catalog.Product `json:"products"`
	Err        error             `json:"-"`
}

// Empty reports whether the section resolved to nothing without failing.
func (s *Section) Empty() bool {
	return s.Err == nil && len(s.Products) == 0
}
