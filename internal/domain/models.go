package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoSize marks a cart line for a product without a size dimension.
const NoSize = ""

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes"`
	Images      []string        `json:"images"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Specs       []string        `json:"specs,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// Image returns the primary image, or "" when the product has none.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// DefaultSize is the first non-blank size, or NoSize.
func (p Product) DefaultSize() string {
	for _, s := range p.Sizes {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return NoSize
}

// CartLine is one (product, size, quantity) record. Name, Price and Image are
// copied from the product when the line is created and are not re-synced.
type CartLine struct {
	ProductID int             `json:"productId"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

type LineKey struct {
	ProductID int
	Size      string
}

func NormalizeSize(size string) string { return strings.TrimSpace(size) }

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: NormalizeSize(l.Size)}
}

// Subtotal is Price x Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
