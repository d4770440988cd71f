package cart

import (
	"strings"

	"storefront/internal/domain"
)

// Catalog is the read-only product lookup the reconciler needs.
type Catalog interface {
	Get(id int) (domain.Product, bool)
}

// Snapshot is anything that can hand out the current cart lines.
type Snapshot interface {
	Lines() []domain.CartLine
}

// Reconciler derives stock figures from the catalog and a cart snapshot.
// Stock is a pool shared by every size of a product, so all checks
// aggregate by product id. Unknown products count as stock 0.
type Reconciler struct {
	catalog Catalog
	cart    Snapshot
}

func NewReconciler(catalog Catalog, cart Snapshot) *Reconciler {
	return &Reconciler{catalog: catalog, cart: cart}
}

func (r *Reconciler) stock(productID int) int {
	p, ok := r.catalog.Get(productID)
	if !ok || p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// TotalQuantityInCart sums quantity over every line of the product.
func (r *Reconciler) TotalQuantityInCart(productID int) int {
	return totalQuantity(r.cart.Lines(), productID)
}

func totalQuantity(lines []domain.CartLine, productID int) int {
	n := 0
	for _, l := range lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}

// RemainingStock is the stock not yet claimed by any line.
func (r *Reconciler) RemainingStock(productID int) int {
	return max(0, r.stock(productID)-r.TotalQuantityInCart(productID))
}

// RemainingStockForLine is the stock not claimed by the other lines of the
// same product, i.e. the most this line may hold.
func (r *Reconciler) RemainingStockForLine(line domain.CartLine) int {
	others := r.TotalQuantityInCart(line.ProductID) - line.Quantity
	return max(0, r.stock(line.ProductID)-others)
}

func (r *Reconciler) IsAtLimit(line domain.CartLine) bool {
	stock := r.stock(line.ProductID)
	return line.Quantity >= stock || r.TotalQuantityInCart(line.ProductID) >= stock
}

// ClampDelta approves currentQuantity+delta for a later UpdateQuantity. It
// rejects a result <= 0 and any increase past the product's stock.
func (r *Reconciler) ClampDelta(productID, currentQuantity, delta int) (int, bool) {
	next := currentQuantity + delta
	if next <= 0 {
		return 0, false
	}
	if r.TotalQuantityInCart(productID)+delta > r.stock(productID) {
		return 0, false
	}
	return next, true
}

// ClampAdd caps a requested add quantity at the remaining stock. Zero means
// nothing may be added.
func (r *Reconciler) ClampAdd(productID, quantity int) int {
	if quantity <= 0 {
		return 0
	}
	return min(quantity, r.RemainingStock(productID))
}

// HasVariations reports whether any size label is non-blank.
func HasVariations(p domain.Product) bool {
	for _, s := range p.Sizes {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func IsOutOfStock(p domain.Product) bool { return p.Stock <= 0 }
