package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

func fixture() *catalog.Catalog {
	return catalog.New([]domain.Product{
		{ID: 1, Name: "Headphones", Category: "Electronics", Price: decimal.RequireFromString("99.99"), Rating: 4, Reviews: 10, CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: 2, Name: "Tee", Category: "Clothing", Price: decimal.NewFromInt(20), Rating: 5, Reviews: 3, CreatedAt: "2024-03-01T00:00:00Z"},
		{ID: 3, Name: "Novel", Category: "Books", Price: decimal.NewFromInt(12), Rating: 3, Reviews: 50, CreatedAt: "2024-02-01T00:00:00Z"},
		{ID: 4, Name: "Speaker", Category: "Electronics", Price: decimal.NewFromInt(1500), Rating: 4, Reviews: 40, CreatedAt: "2023-12-01T00:00:00Z"},
	})
}

func ids(ps []domain.Product) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestGetAndCategories(t *testing.T) {
	c := fixture()
	p, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Tee", p.Name)
	_, ok = c.Get(99)
	assert.False(t, ok)
	assert.Equal(t, []string{"Books", "Clothing", "Electronics"}, c.Categories())
}

func TestQueryDefaultExcludesOverPriced(t *testing.T) {
	page := fixture().Query(catalog.DefaultFilter())
	// popularity: rating desc, then reviews desc
	assert.Equal(t, []int{2, 1, 3}, ids(page.Items))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestQueryFilters(t *testing.T) {
	c := fixture()
	cases := []struct {
		name string
		mod  func(*catalog.Filter)
		want []int
	}{
		{"category", func(f *catalog.Filter) { f.Category = "electronics"; f.MaxPrice = decimal.NewFromInt(5000) }, []int{4, 1}},
		{"min rating", func(f *catalog.Filter) { f.MinRating = 4 }, []int{2, 1}},
		{"price asc", func(f *catalog.Filter) { f.SortBy = catalog.SortPriceLowToHigh }, []int{3, 2, 1}},
		{"price desc", func(f *catalog.Filter) { f.SortBy = catalog.SortPriceHighToLow }, []int{1, 2, 3}},
		{"newest", func(f *catalog.Filter) { f.SortBy = catalog.SortNewest }, []int{2, 3, 1}},
		{"swapped range", func(f *catalog.Filter) { f.MinPrice, f.MaxPrice = decimal.NewFromInt(50), decimal.NewFromInt(10) }, []int{2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := catalog.DefaultFilter()
			tc.mod(&f)
			assert.Equal(t, tc.want, ids(c.Query(f).Items))
		})
	}
}

func TestQueryPagination(t *testing.T) {
	var ps []domain.Product
	for i := 1; i <= 30; i++ {
		ps = append(ps, domain.Product{ID: i, Price: decimal.NewFromInt(int64(i)), Rating: 1})
	}
	c := catalog.New(ps)
	f := catalog.DefaultFilter()
	f.SortBy = catalog.SortPriceLowToHigh

	f.Page = 3
	page := c.Query(f)
	assert.Equal(t, []int{25, 26, 27, 28, 29, 30}, ids(page.Items))
	assert.Equal(t, 3, page.TotalPages)

	f.Page = 9
	assert.Empty(t, c.Query(f).Items)

	f.Page = 0
	assert.Equal(t, 1, c.Query(f).Page)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, catalog.SortNewest, catalog.ParseSort("newest"))
	assert.Equal(t, catalog.SortPopularity, catalog.ParseSort("bogus"))
}
