package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUndefinedTable is the SQLSTATE for a relation that does not exist.
const pgUndefinedTable = "42P01"

// AppendEvent writes one analytics row. A missing analytics table maps to
// ErrNotProvisioned so callers can treat it as a no-op.
func (r *PostgresRepository) AppendEvent(ctx context.Context, event AnalyticsEvent) error {
	const q = `
INSERT INTO wa_cart_analytics (time, event_type, product_id, order_id)
VALUES (NOW(), $1, $2, $3);
`
	_, err := r.pool.Exec(ctx, q, event.EventType, event.ProductID, event.OrderID)
	if err != nil {
		if isUndefinedTable(err) {
			return ErrNotProvisioned
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListRecentEvents returns the latest analytics rows, newest first.
func (r *PostgresRepository) ListRecentEvents(ctx context.Context, limit int) ([]AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, time, event_type, product_id, order_id
FROM wa_cart_analytics
ORDER BY time DESC, id DESC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		if isUndefinedTable(err) {
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

// CountEventsByType counts rows for one event type.
func (r *PostgresRepository) CountEventsByType(ctx context.Context, eventType string) (int64, error) {
	const q = `SELECT COUNT(*) FROM wa_cart_analytics WHERE event_type = $1;`
	var count int64
	if err := r.pool.QueryRow(ctx, q, eventType).Scan(&count); err != nil {
		if isUndefinedTable(err) {
			return 0, ErrNotProvisioned
		}
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// EventTypeCounts returns row counts grouped by event type.
func (r *PostgresRepository) EventTypeCounts(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT event_type, COUNT(*) FROM wa_cart_analytics GROUP BY event_type;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		if isUndefinedTable(err) {
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

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
