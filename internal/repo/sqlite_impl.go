package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// -- Settings --

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM settings WHERE key = ? LIMIT 1;`
	var value []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) PutSetting(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO settings (key, value)
VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    updated_at = CURRENT_TIMESTAMP;
`
	if _, err := r.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// -- Products --

func (r *SQLiteRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	const q = `
SELECT id, name, price_cents, created_at, updated_at
FROM products
WHERE id = ?
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) GetVariationPriceCents(ctx context.Context, productID, variationID int64) (int64, bool, error) {
	const q = `
SELECT price_cents
FROM product_variations
WHERE product_id = ? AND variation_id = ?
LIMIT 1;
`
	var cents int64
	if err := r.db.QueryRowContext(ctx, q, productID, variationID).Scan(&cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get variation price %d/%d: %w", productID, variationID, err)
	}
	return cents, true, nil
}

func (r *SQLiteRepository) UpsertProduct(ctx context.Context, p Product) error {
	const q = `
INSERT INTO products (id, name, price_cents)
VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    price_cents = excluded.price_cents,
    updated_at = CURRENT_TIMESTAMP;
`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.PriceCents); err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}
	return nil
}

// -- Profiles --

func (r *SQLiteRepository) GetProfileField(ctx context.Context, userID, field string) (string, error) {
	column, ok := profileColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown profile field: %s", field)
	}
	q := fmt.Sprintf(`SELECT COALESCE(%s, '') FROM profiles WHERE user_id = ? LIMIT 1;`, column)
	var value string
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get profile field %s: %w", field, err)
	}
	return value, nil
}

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p Profile) error {
	const q = `
INSERT INTO profiles (user_id, first_name, last_name, phone, address_1, city, email, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id) DO UPDATE SET
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    phone = excluded.phone,
    address_1 = excluded.address_1,
    city = excluded.city,
    email = excluded.email,
    updated_at = CURRENT_TIMESTAMP;
`
	_, err := r.db.ExecContext(ctx, q, p.UserID, p.FirstName, p.LastName, p.Phone, p.Address1, p.City, p.Email)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// -- Draft orders --

func (r *SQLiteRepository) InsertDraftOrder(ctx context.Context, orderRef, status string) (int64, error) {
	const q = `INSERT INTO orders (order_ref, status) VALUES (?, ?);`
	res, err := r.db.ExecContext(ctx, q, orderRef, status)
	if err != nil {
		return 0, fmt.Errorf("insert draft order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("draft order id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) InsertOrderItem(ctx context.Context, item OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, product_id, variation_id, name, quantity, unit_price_cents, line_total_cents)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q,
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

func (r *SQLiteRepository) UpdateOrderAddress(ctx context.Context, orderID int64, kind string, address []byte) error {
	var q string
	switch kind {
	case "billing":
		q = `UPDATE orders SET billing_address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`
	case "shipping":
		q = `UPDATE orders SET shipping_address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`
	default:
		return fmt.Errorf("unknown address kind: %s", kind)
	}
	ct, err := r.db.ExecContext(ctx, q, address, orderID)
	if err != nil {
		return fmt.Errorf("update order address: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

func (r *SQLiteRepository) SumOrderItems(ctx context.Context, orderID int64) (int64, error) {
	const q = `
SELECT COALESCE(SUM(line_total_cents), 0)
FROM order_items
WHERE order_id = ?;
`
	var total int64
	if err := r.db.QueryRowContext(ctx, q, orderID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum order items: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) UpdateOrderTotal(ctx context.Context, orderID, totalCents int64) error {
	const q = `UPDATE orders SET total_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`
	ct, err := r.db.ExecContext(ctx, q, totalCents, orderID)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

func (r *SQLiteRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	const q = `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`
	ct, err := r.db.ExecContext(ctx, q, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

// -- Analytics --

func (r *SQLiteRepository) AppendEvent(ctx context.Context, event AnalyticsEvent) error {
	const q = `
INSERT INTO wa_cart_analytics (time, event_type, product_id, order_id)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q, event.EventType, event.ProductID, event.OrderID)
	if err != nil {
		if isMissingTable(err) {
			return ErrNotProvisioned
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRecentEvents(ctx context.Context, limit int) ([]AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, time, event_type, product_id, order_id
FROM wa_cart_analytics
ORDER BY time DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	var events []AnalyticsEvent
	for rows.Next() {
		var e AnalyticsEvent
		if err := rows.Scan(&e.ID, &e.Time, &e.EventType, &e.ProductID, &e.OrderID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *SQLiteRepository) CountEventsByType(ctx context.Context, eventType string) (int64, error) {
	const q = `SELECT COUNT(*) FROM wa_cart_analytics WHERE event_type = ?;`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, eventType).Scan(&count); err != nil {
		if isMissingTable(err) {
			return 0, ErrNotProvisioned
		}
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) EventTypeCounts(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT event_type, COUNT(*) FROM wa_cart_analytics GROUP BY event_type;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("event type counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event counts: %w", err)
	}
	return counts, nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
