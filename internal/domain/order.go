package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// ParseShippingMethod maps anything other than "express" to standard.
func ParseShippingMethod(s string) ShippingMethod {
	if strings.EqualFold(strings.TrimSpace(s), string(ShippingExpress)) {
		return ShippingExpress
	}
	return ShippingStandard
}

type Address struct {
	Street    string `json:"street" validate:"required,max=120"`
	Apartment string `json:"apartment,omitempty" validate:"max=60"`
	City      string `json:"city" validate:"required,max=60"`
	State     string `json:"state" validate:"required,max=60"`
	Zip       string `json:"zip" validate:"required,max=12"`
}

type CustomerInfo struct {
	FirstName string `json:"firstName" validate:"required,max=40"`
	LastName  string `json:"lastName" validate:"required,max=40"`
	Phone     string `json:"phone" validate:"required,max=24"`
}

// CheckoutDetails is the form data bundled into an order. It is stored as-is.
type CheckoutDetails struct {
	Email           string         `json:"email" validate:"required,email,max=80"`
	ShippingMethod  ShippingMethod `json:"shippingMethod" validate:"omitempty,oneof=standard express"`
	ShippingAddress Address        `json:"shippingAddress"`
	CustomerInfo    CustomerInfo   `json:"customerInfo"`
}

type Order struct {
	ID              string          `json:"id"`
	PlacedAt        time.Time       `json:"placedAt"`
	Cart            []CartLine      `json:"cart"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingMethod  ShippingMethod  `json:"shippingMethod"`
	Email           string          `json:"email"`
	ShippingAddress Address         `json:"shippingAddress"`
	CustomerInfo    CustomerInfo    `json:"customerInfo"`
}
