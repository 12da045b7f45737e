package analytics

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"wa-cart/internal/metrics"
	"wa-cart/internal/repo"
)

// Log is the append-only event store. Satisfied by repo.Repository.
type Log interface {
	AppendEvent(ctx context.Context, event repo.AnalyticsEvent) error
	ListRecentEvents(ctx context.Context, limit int) ([]repo.AnalyticsEvent, error)
	EventTypeCounts(ctx context.Context) (map[string]int64, error)
}

// Recorder appends analytics events without ever failing the caller: a
// missing table is a silent no-op and any other append error is logged and
// swallowed.
type Recorder struct {
	log     Log
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRecorder creates an event recorder over the given log.
func NewRecorder(log Log, logger *slog.Logger, metricRegistry *metrics.Metrics) *Recorder {
	return &Recorder{
		log:     log,
		logger:  logger.With("component", "analytics"),
		metrics: metricRegistry,
	}
}

// Record appends one event. Zero productID/orderID are stored as NULL.
func (r *Recorder) Record(ctx context.Context, eventType string, productID, orderID int64) {
	event := repo.AnalyticsEvent{EventType: eventType}
	if productID > 0 {
		event.ProductID = &productID
	}
	if orderID > 0 {
		event.OrderID = &orderID
	}

	if err := r.log.AppendEvent(ctx, event); err != nil {
		if errors.Is(err, repo.ErrNotProvisioned) {
			r.logger.Debug("analytics table missing, event dropped", "event_type", eventType)
			return
		}
		r.logger.Warn("failed recording analytics event", "event_type", eventType, "error", err)
		if r.metrics != nil {
			r.metrics.Errors.WithLabelValues("analytics").Inc()
		}
		return
	}

	if r.metrics != nil {
		r.metrics.AnalyticsEvents.WithLabelValues(eventType).Inc()
	}
}

// Summary aggregates event counts for the reporting endpoint.
type Summary struct {
	TotalClicks    int64            `json:"total_clicks"`
	TotalOrders    int64            `json:"total_orders"`
	ClicksProduct  int64            `json:"clicks_product"`
	ClicksCart     int64            `json:"clicks_cart"`
	ClicksCheckout int64            `json:"clicks_checkout"`
	ByType         map[string]int64 `json:"by_type"`
}

// Summarize computes aggregate counts. A missing table yields zeros.
func (r *Recorder) Summarize(ctx context.Context) (*Summary, error) {
	counts, err := r.log.EventTypeCounts(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotProvisioned) {
			return &Summary{ByType: map[string]int64{}}, nil
		}
		return nil, err
	}

	summary := &Summary{
		ClicksProduct:  counts[repo.EventClickProduct],
		ClicksCart:     counts[repo.EventClickCart],
		ClicksCheckout: counts[repo.EventClickCheckout],
		TotalOrders:    counts[repo.EventOrderCreated],
		ByType:         counts,
	}
	for eventType, count := range counts {
		if strings.HasPrefix(eventType, "click_") {
			summary.TotalClicks += count
		}
	}
	return summary, nil
}

// Recent returns the newest events. A missing table yields an empty slice.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]repo.AnalyticsEvent, error) {
	events, err := r.log.ListRecentEvents(ctx, limit)
	if err != nil {
		if errors.Is(err, repo.ErrNotProvisioned) {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}
