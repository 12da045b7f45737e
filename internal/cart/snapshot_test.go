package cart

import (
	"context"
	"errors"
	"testing"
)

type fakeCart struct {
	lines   []Line
	emptied bool
	loadErr error
}

func (f *fakeCart) IsEmpty(ctx context.Context) (bool, error) { return len(f.lines) == 0, nil }
func (f *fakeCart) Lines(ctx context.Context) ([]Line, error) { return f.lines, f.loadErr }
func (f *fakeCart) AddLine(ctx context.Context, productID int64, quantity int, variationID int64) error {
	return nil
}
func (f *fakeCart) Empty(ctx context.Context) error {
	f.lines = nil
	f.emptied = true
	return nil
}
func (f *fakeCart) TotalCents(ctx context.Context) (int64, error) {
	var total int64
	for _, l := range f.lines {
		total += l.LineTotalCents
	}
	return total, nil
}

func TestTakeSnapshotTotals(t *testing.T) {
	c := &fakeCart{lines: []Line{
		{ProductID: 1, Name: "Widget", Quantity: 2, UnitPriceCents: 1000, LineTotalCents: 2000},
		{ProductID: 2, Name: "Gadget", Quantity: 1, UnitPriceCents: 500, LineTotalCents: 500},
	}}

	snap, err := TakeSnapshot(context.Background(), c, "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TotalCents != 2500 {
		t.Fatalf("total = %d, want 2500", snap.TotalCents)
	}
	if snap.TotalDisplay != "$25.00" {
		t.Fatalf("total display = %q", snap.TotalDisplay)
	}
}

func TestSnapshotProductList(t *testing.T) {
	c := &fakeCart{lines: []Line{
		{Name: "Widget", Quantity: 2, LineTotalCents: 2000},
		{Name: "<b>Gadget</b>", Quantity: 1, LineTotalCents: 500},
	}}

	snap, err := TakeSnapshot(context.Background(), c, "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Widget x 2 - $20.00\nGadget x 1 - $5.00"
	if got := snap.ProductList("$"); got != want {
		t.Fatalf("product list:\n%q\nwant:\n%q", got, want)
	}
}

func TestTakeSnapshotEmptyCart(t *testing.T) {
	_, err := TakeSnapshot(context.Background(), &fakeCart{}, "$")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSnapshotSurvivesEmptying(t *testing.T) {
	c := &fakeCart{lines: []Line{
		{Name: "Widget", Quantity: 1, LineTotalCents: 1500},
	}}

	snap, err := TakeSnapshot(context.Background(), c, "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Empty(context.Background()); err != nil {
		t.Fatalf("empty: %v", err)
	}

	if got := snap.ProductList("$"); got != "Widget x 1 - $15.00" {
		t.Fatalf("snapshot changed after cart emptied: %q", got)
	}
	if snap.TotalDisplay != "$15.00" {
		t.Fatalf("total display = %q", snap.TotalDisplay)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		cents  int64
		symbol string
		want   string
	}{
		{0, "$", "$0.00"},
		{5, "$", "$0.05"},
		{2000, "$", "$20.00"},
		{123456, "$", "$1,234.56"},
		{100000000, "Rp", "Rp1,000,000.00"},
		{-2050, "$", "-$20.50"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.cents, tc.symbol); got != tc.want {
			t.Fatalf("FormatMoney(%d, %q) = %q, want %q", tc.cents, tc.symbol, got, tc.want)
		}
	}
}
