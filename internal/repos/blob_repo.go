package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/storage"
)

// BlobRepo stores named blobs in the blobs table.
type BlobRepo struct{ db *sqlx.DB }

func NewBlobRepo(db *sqlx.DB) *BlobRepo { return &BlobRepo{db: db} }

func (r *BlobRepo) Get(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := r.db.GetContext(ctx, &body, `SELECT body FROM blobs WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", name, err)
	}
	return body, nil
}

func (r *BlobRepo) Set(ctx context.Context, name string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blobs(name, body, updated_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`, name, body)
	if err != nil {
		return fmt.Errorf("set blob %s: %w", name, err)
	}
	return nil
}
