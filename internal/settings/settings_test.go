package settings

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"wa-cart/internal/repo"
)

type fakeStore struct {
	rows map[string][]byte
	puts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string][]byte{}}
}

func (f *fakeStore) GetSetting(ctx context.Context, key string) ([]byte, error) {
	value, ok := f.rows[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return value, nil
}

func (f *fakeStore) PutSetting(ctx context.Context, key string, value []byte) error {
	f.rows[key] = value
	f.puts++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if !d.EnableOnCart || !d.EnableOnCheckout {
		t.Fatal("cart and checkout buttons should default on")
	}
	if d.EnableOnProduct {
		t.Fatal("product button should default off")
	}
	if d.CreateDraftOrder {
		t.Fatal("draft orders should default off")
	}
	if d.CurrencySymbol != "$" {
		t.Fatalf("currency symbol = %q", d.CurrencySymbol)
	}
	for _, token := range []string{"{product_list}", "{total}", "{name}", "{phone}", "{address}", "{city}"} {
		if !strings.Contains(d.MessageTemplate, token) {
			t.Fatalf("default template missing %s", token)
		}
	}
}

func TestEnsureDefaultsInstallsOnce(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.Minute, testLogger())

	if err := svc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("expected one write, got %d", store.puts)
	}

	if err := svc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("second call must not overwrite, got %d writes", store.puts)
	}
}

func TestSaveAndCurrentRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.Minute, testLogger())

	in := Settings{
		WhatsAppNumber:   "15551234567",
		EnableOnProduct:  true,
		CreateDraftOrder: true,
		CurrencySymbol:   "Rp",
		MessageTemplate:  "Order {order_id}",
	}
	if err := svc.Save(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", out, in)
	}
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(newFakeStore(), nil, time.Minute, testLogger())

	out, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if out != Defaults() {
		t.Fatalf("expected defaults when unset, got %+v", out)
	}
}
