// Package checkout turns a cart into an order snapshot.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrNoLastOrder = errors.New("no completed order")
)

var (
	standardShipping = decimal.NewFromInt(10)
	expressShipping  = decimal.NewFromInt(20)
	taxRate          = decimal.RequireFromString("0.10")
)

// ShippingCost is a flat fee per method.
func ShippingCost(m domain.ShippingMethod) decimal.Decimal {
	if m == domain.ShippingExpress {
		return expressShipping
	}
	return standardShipping
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals uses the price snapshot on each line. Tax is 10% of the
// subtotal, rounded to cents.
func ComputeTotals(lines []domain.CartLine, m domain.ShippingMethod) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	shipping := ShippingCost(m)
	tax := subtotal.Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Cart is the part of a cart store the finalizer uses.
type Cart interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context) cart.Result
}

type Finalizer struct {
	Blobs storage.BlobStore
	Now   func() time.Time
	NewID func() string
}

func NewFinalizer(blobs storage.BlobStore) *Finalizer {
	return &Finalizer{Blobs: blobs, Now: time.Now, NewID: uuid.NewString}
}

// Finalize snapshots the cart into an order, stores it under orderKey and
// then clears the cart. Stock is not re-checked here.
func (f *Finalizer) Finalize(ctx context.Context, c Cart, orderKey string, details domain.CheckoutDetails) (domain.Order, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	method := domain.ParseShippingMethod(string(details.ShippingMethod))
	t := ComputeTotals(lines, method)
	order := domain.Order{
		ID:              f.NewID(),
		PlacedAt:        f.Now().UTC(),
		Cart:            lines,
		Subtotal:        t.Subtotal,
		Shipping:        t.Shipping,
		Tax:             t.Tax,
		Total:           t.Total,
		ShippingMethod:  method,
		Email:           details.Email,
		ShippingAddress: details.ShippingAddress,
		CustomerInfo:    details.CustomerInfo,
	}
	b, err := json.Marshal(order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode order: %w", err)
	}
	if err := f.Blobs.Set(ctx, orderKey, b); err != nil {
		return domain.Order{}, fmt.Errorf("store last order: %w", err)
	}
	c.Clear(ctx)
	return order, nil
}

// LastOrder reads the order stored under key. Missing or unreadable blobs
// report ErrNoLastOrder.
func LastOrder(ctx context.Context, blobs storage.BlobStore, key string) (domain.Order, error) {
	b, err := blobs.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Order{}, ErrNoLastOrder
	}
	if err != nil {
		return domain.Order{}, err
	}
	var o domain.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return domain.Order{}, ErrNoLastOrder
	}
	return o, nil
}
