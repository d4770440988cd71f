package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type SortBy string

const (
	SortPopularity     SortBy = "popularity"
	SortPriceLowToHigh SortBy = "priceLowToHigh"
	SortPriceHighToLow SortBy = "priceHighToLow"
	SortNewest         SortBy = "newest"
)

const (
	AllCategories = "all"
	PageSize      = 12
)

var (
	DefaultMinPrice = decimal.Zero
	DefaultMaxPrice = decimal.NewFromInt(1000)
)

type Filter struct {
	Category  string
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	MinRating float64
	SortBy    SortBy
	Page      int
}

// DefaultFilter matches the storefront's initial filter state.
func DefaultFilter() Filter {
	return Filter{
		Category: AllCategories,
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		SortBy:   SortPopularity,
		Page:     1,
	}
}

type Page struct {
	Items      []domain.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// Query filters, sorts and paginates the catalog. A swapped price range is
// normalized rather than rejected.
func (c *Catalog) Query(f Filter) Page {
	lo, hi := f.MinPrice, f.MaxPrice
	if hi.LessThan(lo) {
		lo, hi = hi, lo
	}
	var matched []domain.Product
	for _, p := range c.products {
		if f.Category != "" && f.Category != AllCategories && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if p.Price.LessThan(lo) || p.Price.GreaterThan(hi) {
			continue
		}
		if p.Rating < f.MinRating {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched, f.SortBy)

	page := max(f.Page, 1)
	total := len(matched)
	start := min((page-1)*PageSize, total)
	end := min(start+PageSize, total)
	items := make([]domain.Product, end-start)
	copy(items, matched[start:end])
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: (total + PageSize - 1) / PageSize,
	}
}

func sortProducts(ps []domain.Product, by SortBy) {
	switch by {
	case SortPriceLowToHigh:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.LessThan(ps[j].Price) })
	case SortPriceHighToLow:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.GreaterThan(ps[j].Price) })
	case SortNewest:
		// RFC3339 timestamps sort lexically.
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt > ps[j].CreatedAt })
	default:
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Rating != ps[j].Rating {
				return ps[i].Rating > ps[j].Rating
			}
			return ps[i].Reviews > ps[j].Reviews
		})
	}
}

// ParseSort falls back to popularity for unknown values.
func ParseSort(s string) SortBy {
	switch SortBy(strings.TrimSpace(s)) {
	case SortPriceLowToHigh:
		return SortPriceLowToHigh
	case SortPriceHighToLow:
		return SortPriceHighToLow
	case SortNewest:
		return SortNewest
	}
	return SortPopularity
}
