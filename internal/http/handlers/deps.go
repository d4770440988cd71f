package handlers

import (
	"time"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/storage"
)

type Deps struct {
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	PageHandler    *PageHandler
}

type DepsOptions struct {
	SecureCookie bool
	// Zero values keep the CartService defaults.
	SessionIdleTTL time.Duration
	MaxSessions    int
}

// NewDeps wires services over one blob backend. orders may be nil, which
// disables order history.
func NewDeps(cat *catalog.Catalog, blobs storage.BlobStore, orders *repos.OrderRepo, m *metrics.CartMetrics, opts DepsOptions) *Deps {
	cartSvc := services.NewCartService(cat, blobs, m)
	if opts.SessionIdleTTL > 0 {
		cartSvc.IdleTTL = opts.SessionIdleTTL
	}
	if opts.MaxSessions > 0 {
		cartSvc.MaxSessions = opts.MaxSessions
	}
	catalogSvc := services.NewCatalogService(cat, cartSvc)
	orderSvc := services.NewOrderService(cartSvc, checkout.NewFinalizer(blobs), orders, m)
	sess := Sessions{Secure: opts.SecureCookie}

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Sessions: sess},
		CartHandler:    &CartHandler{Cart: cartSvc, Sessions: sess},
		OrderHandler:   &OrderHandler{Order: orderSvc, Sessions: sess},
		PageHandler:    &PageHandler{Catalog: catalogSvc, Cart: cartSvc, Order: orderSvc, Sessions: sess},
	}
}
