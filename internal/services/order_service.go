package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/storage"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderService struct {
	Carts     *CartService
	Finalizer *checkout.Finalizer
	Orders    *repos.OrderRepo
	Metrics   *metrics.CartMetrics
}

func NewOrderService(carts *CartService, fin *checkout.Finalizer, orders *repos.OrderRepo, m *metrics.CartMetrics) *OrderService {
	return &OrderService{Carts: carts, Finalizer: fin, Orders: orders, Metrics: m}
}

// Checkout finalizes the session's cart. The last-order blob is the record
// of truth; a failed history insert is logged and does not fail the checkout.
func (s *OrderService) Checkout(ctx context.Context, sid string, details domain.CheckoutDetails) (domain.Order, error) {
	var order domain.Order
	err := s.Carts.WithCart(ctx, sid, func(st *cart.Store) error {
		o, err := s.Finalizer.Finalize(ctx, st, storage.LastOrderKey(sid), details)
		order = o
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.Metrics.IncCheckout(string(order.ShippingMethod))
	s.Metrics.IncMutation(cart.Kind(cart.Clear{}), cart.Cleared.String())
	if s.Orders != nil {
		if err := s.Orders.Create(sid, order); err != nil {
			applog.Error(nil, "order.history", err, map[string]any{"order_id": order.ID})
		}
	}
	return order, nil
}

func (s *OrderService) Last(ctx context.Context, sid string) (domain.Order, error) {
	return checkout.LastOrder(ctx, s.Finalizer.Blobs, storage.LastOrderKey(sid))
}

// History lists the session's orders, newest first.
func (s *OrderService) History(sid string) ([]repos.OrderSummary, error) {
	if s.Orders == nil {
		return []repos.OrderSummary{}, nil
	}
	return s.Orders.ListBySession(sid)
}

// Get returns one order from the history. Orders of other sessions report
// ErrOrderNotFound, the same as missing ones.
func (s *OrderService) Get(sid, orderID string) (domain.Order, error) {
	if s.Orders == nil {
		return domain.Order{}, ErrOrderNotFound
	}
	o, owner, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != sid) {
		return domain.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("load order %s: %w", orderID, err)
	}
	return o, nil
}
