package services

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

type CatalogService struct {
	Catalog *catalog.Catalog
	Carts   *CartService
}

func NewCatalogService(cat *catalog.Catalog, carts *CartService) *CatalogService {
	return &CatalogService{Catalog: cat, Carts: carts}
}

func (s *CatalogService) ListCategories() []string {
	return s.Catalog.Categories()
}

func (s *CatalogService) ListProducts(f catalog.Filter) catalog.Page {
	return s.Catalog.Query(f)
}

type ProductDetail struct {
	Product domain.Product `json:"product"`
	Stock   StockView      `json:"stock"`
}

// GetProduct returns the product with its stock as seen by the session's cart.
func (s *CatalogService) GetProduct(ctx context.Context, sid string, id int) (ProductDetail, error) {
	p, ok := s.Catalog.Get(id)
	if !ok {
		return ProductDetail{}, ErrProductNotFound
	}
	return ProductDetail{Product: p, Stock: s.Carts.StockFor(ctx, sid, p)}, nil
}
