package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetProduct retrieves a catalog product by identifier.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	const q = `
SELECT id, name, price_cents, created_at, updated_at
FROM products
WHERE id = $1
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, q, id)
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// GetVariationPriceCents returns the price override for a product variation.
// The boolean reports whether an override exists.
func (r *PostgresRepository) GetVariationPriceCents(ctx context.Context, productID, variationID int64) (int64, bool, error) {
	const q = `
SELECT price_cents
FROM product_variations
WHERE product_id = $1 AND variation_id = $2
LIMIT 1;
`
	var cents int64
	if err := r.pool.QueryRow(ctx, q, productID, variationID).Scan(&cents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get variation price %d/%d: %w", productID, variationID, err)
	}
	return cents, true, nil
}

// UpsertProduct creates or updates a catalog product.
func (r *PostgresRepository) UpsertProduct(ctx context.Context, p Product) error {
	const q = `
INSERT INTO products (id, name, price_cents)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.PriceCents); err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}
	return nil
}
