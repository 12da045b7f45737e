package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wa-cart/internal/message"
)

// ErrEmptyCart indicates there are no lines to compose a message from.
var ErrEmptyCart = errors.New("cart is empty")

// Snapshot captures the cart state at one point in time so message
// composition stays correct even after the live cart is emptied.
type Snapshot struct {
	Lines        []Line
	TotalCents   int64
	TotalDisplay string
}

// TakeSnapshot reads the cart's lines and grand total. Returns ErrEmptyCart
// when there is nothing to snapshot.
func TakeSnapshot(ctx context.Context, c Cart, currencySymbol string) (*Snapshot, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total int64
	for _, line := range lines {
		total += line.LineTotalCents
	}

	return &Snapshot{
		Lines:        lines,
		TotalCents:   total,
		TotalDisplay: FormatMoney(total, currencySymbol),
	}, nil
}

// ProductList renders the snapshot lines as the {product_list} token value:
// one "name x quantity - price" entry per line, joined by newlines.
func (s *Snapshot) ProductList(currencySymbol string) string {
	var b strings.Builder
	for i, line := range s.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		name := message.StripMarkup(line.Name)
		price := FormatMoney(line.LineTotalCents, currencySymbol)
		b.WriteString(fmt.Sprintf("%s x %d - %s", name, line.Quantity, price))
	}
	return b.String()
}
