package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"wa-cart/internal/repo"
)

type fakeLog struct {
	events    []repo.AnalyticsEvent
	appendErr error
	counts    map[string]int64
	countsErr error
}

func (f *fakeLog) AppendEvent(ctx context.Context, event repo.AnalyticsEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLog) ListRecentEvents(ctx context.Context, limit int) ([]repo.AnalyticsEvent, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return f.events[:limit], nil
}

func (f *fakeLog) EventTypeCounts(ctx context.Context) (map[string]int64, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.counts, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordStoresEvent(t *testing.T) {
	log := &fakeLog{}
	rec := NewRecorder(log, testLogger(), nil)

	rec.Record(context.Background(), repo.EventClickProduct, 7, 0)

	if len(log.events) != 1 {
		t.Fatalf("expected one event, got %d", len(log.events))
	}
	ev := log.events[0]
	if ev.EventType != repo.EventClickProduct {
		t.Fatalf("event type = %q", ev.EventType)
	}
	if ev.ProductID == nil || *ev.ProductID != 7 {
		t.Fatalf("product id = %v", ev.ProductID)
	}
	if ev.OrderID != nil {
		t.Fatalf("zero order id must be stored as NULL, got %v", ev.OrderID)
	}
}

func TestRecordSwallowsMissingTable(t *testing.T) {
	log := &fakeLog{appendErr: repo.ErrNotProvisioned}
	rec := NewRecorder(log, testLogger(), nil)

	rec.Record(context.Background(), repo.EventClickCart, 0, 0)
	// No panic, no stored event; the caller never sees the failure.
	if len(log.events) != 0 {
		t.Fatalf("expected no events, got %d", len(log.events))
	}
}

func TestRecordSwallowsOtherErrors(t *testing.T) {
	log := &fakeLog{appendErr: errors.New("connection reset")}
	rec := NewRecorder(log, testLogger(), nil)
	rec.Record(context.Background(), repo.EventClickCheckout, 0, 0)
}

func TestSummarize(t *testing.T) {
	log := &fakeLog{counts: map[string]int64{
		repo.EventClickProduct:  3,
		repo.EventClickCart:     2,
		repo.EventClickCheckout: 1,
		repo.EventOrderCreated:  4,
	}}
	rec := NewRecorder(log, testLogger(), nil)

	summary, err := rec.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalClicks != 6 {
		t.Fatalf("total clicks = %d, want 6", summary.TotalClicks)
	}
	if summary.TotalOrders != 4 {
		t.Fatalf("total orders = %d, want 4", summary.TotalOrders)
	}
	if summary.ClicksProduct != 3 || summary.ClicksCart != 2 || summary.ClicksCheckout != 1 {
		t.Fatalf("unexpected click breakdown %+v", summary)
	}
}

func TestSummarizeMissingTable(t *testing.T) {
	log := &fakeLog{countsErr: repo.ErrNotProvisioned}
	rec := NewRecorder(log, testLogger(), nil)

	summary, err := rec.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalClicks != 0 || summary.TotalOrders != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestRecentMissingTable(t *testing.T) {
	log := &fakeLog{countsErr: repo.ErrNotProvisioned}
	rec := NewRecorder(log, testLogger(), nil)

	events, err := rec.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
