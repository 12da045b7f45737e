package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wa-cart/internal/cache"
	"wa-cart/internal/repo"
)

// Line is one entry in a shopper's cart. Order of lines is the order they
// were added.
type Line struct {
	ProductID      int64  `json:"product_id"`
	VariationID    int64  `json:"variation_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// Cart is the per-session cart contract the order intent flow depends on.
type Cart interface {
	IsEmpty(ctx context.Context) (bool, error)
	Lines(ctx context.Context) ([]Line, error)
	AddLine(ctx context.Context, productID int64, quantity int, variationID int64) error
	Empty(ctx context.Context) error
	TotalCents(ctx context.Context) (int64, error)
}

// Catalog resolves product names and prices for cart lines. Satisfied by
// repo.Repository.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*repo.Product, error)
	GetVariationPriceCents(ctx context.Context, productID, variationID int64) (int64, bool, error)
}

// Store hands out session-scoped carts backed by Redis.
type Store struct {
	cache   *cache.Redis
	catalog Catalog
	ttl     time.Duration
	logger  *slog.Logger
}

// NewStore creates a cart store with the given session TTL.
func NewStore(redis *cache.Redis, catalog Catalog, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		cache:   redis,
		catalog: catalog,
		ttl:     ttl,
		logger:  logger.With("component", "cart"),
	}
}

// ForSession returns the cart bound to the given session identifier.
func (s *Store) ForSession(sessionID string) Cart {
	return &sessionCart{
		store: s,
		key:   "wacart:cart:" + sessionID,
	}
}

type sessionCart struct {
	store *Store
	key   string
}

func (c *sessionCart) load(ctx context.Context) ([]Line, error) {
	var lines []Line
	if _, err := c.store.cache.GetJSON(ctx, c.key, &lines); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return lines, nil
}

func (c *sessionCart) save(ctx context.Context, lines []Line) error {
	if err := c.store.cache.SetJSON(ctx, c.key, lines, c.store.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (c *sessionCart) IsEmpty(ctx context.Context) (bool, error) {
	lines, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	return len(lines) == 0, nil
}

func (c *sessionCart) Lines(ctx context.Context) ([]Line, error) {
	return c.load(ctx)
}

func (c *sessionCart) AddLine(ctx context.Context, productID int64, quantity int, variationID int64) error {
	if quantity <= 0 {
		quantity = 1
	}
	product, err := c.store.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("resolve product %d: %w", productID, err)
	}

	unit := product.PriceCents
	if variationID > 0 {
		if cents, ok, err := c.store.catalog.GetVariationPriceCents(ctx, productID, variationID); err != nil {
			return fmt.Errorf("resolve variation %d/%d: %w", productID, variationID, err)
		} else if ok {
			unit = cents
		}
	}

	lines, err := c.load(ctx)
	if err != nil {
		return err
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == productID && lines[i].VariationID == variationID {
			lines[i].Quantity += quantity
			lines[i].LineTotalCents = lines[i].UnitPriceCents * int64(lines[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{
			ProductID:      productID,
			VariationID:    variationID,
			Name:           product.Name,
			Quantity:       quantity,
			UnitPriceCents: unit,
			LineTotalCents: unit * int64(quantity),
		})
	}

	return c.save(ctx, lines)
}

func (c *sessionCart) Empty(ctx context.Context) error {
	if err := c.store.cache.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("empty cart: %w", err)
	}
	return nil
}

func (c *sessionCart) TotalCents(ctx context.Context) (int64, error) {
	lines, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, line := range lines {
		total += line.LineTotalCents
	}
	return total, nil
}
