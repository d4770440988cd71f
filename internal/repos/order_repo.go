package repos

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- History list summary ----------
type OrderSummary struct {
	ID             string `db:"id" json:"id"`
	ShippingMethod string `db:"shipping_method" json:"shippingMethod"`
	Email          string `db:"email" json:"email"`
	Total          string `db:"total" json:"total"`
	Items          int    `db:"items" json:"items"`
	CreatedAt      string `db:"created_at" json:"createdAt"`
}

// Create inserts the order header, its items and the full snapshot in one transaction.
func (r *OrderRepo) Create(sessionID string, o domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, session_id, shipping_method, email, subtotal, shipping, tax, total, payload, created_at)
	  VALUES
	    (?,  ?,          ?,               ?,     ?,        ?,        ?,   ?,     ?,       ?)
	`, o.ID, sessionID, string(o.ShippingMethod), o.Email,
		o.Subtotal.String(), o.Shipping.String(), o.Tax.String(), o.Total.String(),
		string(payload), o.PlacedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	for _, it := range o.Cart {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, size, name, qty, price)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Size, it.Name, it.Quantity, it.Price.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get returns the stored snapshot of one order.
func (r *OrderRepo) Get(orderID string) (domain.Order, string, error) {
	var row struct {
		SessionID string `db:"session_id"`
		Payload   string `db:"payload"`
	}
	if err := r.db.Get(&row, `SELECT session_id, payload FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, "", err
	}
	var o domain.Order
	if err := json.Unmarshal([]byte(row.Payload), &o); err != nil {
		return domain.Order{}, "", fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return o, row.SessionID, nil
}

// ListBySession returns orders placed by one session, newest first.
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderSummary, error) {
	out := []OrderSummary{}
	err := r.db.Select(&out, `
		SELECT o.id, o.shipping_method, COALESCE(o.email,'') AS email, o.total, o.created_at,
		       (SELECT COALESCE(SUM(qty),0) FROM order_items oi WHERE oi.order_id = o.id) AS items
		FROM orders o
		WHERE o.session_id = ?
		ORDER BY o.created_at DESC
	`, sessionID)
	return out, err
}
