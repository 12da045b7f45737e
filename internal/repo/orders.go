package repo

import (
	"context"
	"fmt"
)

// InsertDraftOrder creates a new order row and returns its identifier.
func (r *PostgresRepository) InsertDraftOrder(ctx context.Context, orderRef, status string) (int64, error) {
	const q = `
INSERT INTO orders (order_ref, status)
VALUES ($1, $2)
RETURNING id;
`
	var id int64
	if err := r.pool.QueryRow(ctx, q, orderRef, status).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert draft order: %w", err)
	}
	return id, nil
}

// InsertOrderItem attaches one line item to an order.
func (r *PostgresRepository) InsertOrderItem(ctx context.Context, item OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, product_id, variation_id, name, quantity, unit_price_cents, line_total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, q,
		item.OrderID,
		item.ProductID,
		item.VariationID,
		item.Name,
		item.Quantity,
		item.UnitPriceCents,
		item.LineTotalCents,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// UpdateOrderAddress stores a billing or shipping address JSON blob.
func (r *PostgresRepository) UpdateOrderAddress(ctx context.Context, orderID int64, kind string, address []byte) error {
	var q string
	switch kind {
	case "billing":
		q = `UPDATE orders SET billing_address = $2, updated_at = NOW() WHERE id = $1;`
	case "shipping":
		q = `UPDATE orders SET shipping_address = $2, updated_at = NOW() WHERE id = $1;`
	default:
		return fmt.Errorf("unknown address kind: %s", kind)
	}
	ct, err := r.pool.Exec(ctx, q, orderID, address)
	if err != nil {
		return fmt.Errorf("update order address: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

// SumOrderItems returns the sum of line totals attached to an order.
func (r *PostgresRepository) SumOrderItems(ctx context.Context, orderID int64) (int64, error) {
	const q = `
SELECT COALESCE(SUM(line_total_cents), 0)
FROM order_items
WHERE order_id = $1;
`
	var total int64
	if err := r.pool.QueryRow(ctx, q, orderID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum order items: %w", err)
	}
	return total, nil
}

// UpdateOrderTotal stores the computed grand total.
func (r *PostgresRepository) UpdateOrderTotal(ctx context.Context, orderID, totalCents int64) error {
	const q = `UPDATE orders SET total_cents = $2, updated_at = NOW() WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, q, orderID, totalCents)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

// UpdateOrderStatus moves the order to a new status.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	const q = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, q, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}
