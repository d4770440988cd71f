package repos

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID          int             `db:"id"`
	Name        string          `db:"name"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	SizesJSON   string          `db:"sizes_json"`
	ImagesJSON  string          `db:"images_json"`
	SpecsJSON   string          `db:"specs_json"`
	Rating      float64         `db:"rating"`
	Reviews     int             `db:"reviews"`
	CreatedAt   string          `db:"created_at"`
}

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID: r.ID, Name: r.Name, Category: r.Category, Description: r.Description,
		Price: r.Price, Stock: r.Stock, Rating: r.Rating, Reviews: r.Reviews, CreatedAt: r.CreatedAt,
	}
	for _, f := range []struct {
		raw string
		dst *[]string
	}{{r.SizesJSON, &p.Sizes}, {r.ImagesJSON, &p.Images}, {r.SpecsJSON, &p.Specs}} {
		if f.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return domain.Product{}, fmt.Errorf("product %d: %w", r.ID, err)
		}
	}
	return p, nil
}

const productColumns = `
    id, name, category, COALESCE(description,'') AS description, price, stock,
    sizes_json, images_json, specs_json, rating, reviews, COALESCE(created_at,'') AS created_at`

// All loads the full catalog in id order.
func (r *ProductRepo) All() ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
