package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"wa-cart/internal/cart"
	"wa-cart/internal/repo"
)

// StatusWhatsAppPending marks a draft order awaiting the shopper's WhatsApp
// conversation with the store.
const StatusWhatsAppPending = "whatsapp-pending"

// Address kinds accepted by SetAddress.
const (
	KindBilling  = "billing"
	KindShipping = "shipping"
)

// Address carries customer fields attached to a draft order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
}

// Draft is a provisionally created order being assembled.
type Draft interface {
	AddLine(ctx context.Context, line cart.Line) error
	SetAddress(ctx context.Context, kind string, addr Address) error
	CalculateTotals(ctx context.Context) error
	SetStatus(ctx context.Context, status string) error
	ID() int64
	TotalCents() int64
}

// Provider creates draft orders.
type Provider interface {
	Create(ctx context.Context) (Draft, error)
}

// Store is the persistence subset draft orders need. Satisfied by
// repo.Repository.
type Store interface {
	InsertDraftOrder(ctx context.Context, orderRef, status string) (int64, error)
	InsertOrderItem(ctx context.Context, item repo.OrderItem) error
	UpdateOrderAddress(ctx context.Context, orderID int64, kind string, address []byte) error
	SumOrderItems(ctx context.Context, orderID int64) (int64, error)
	UpdateOrderTotal(ctx context.Context, orderID, totalCents int64) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// Service is the repo-backed Provider.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a draft order provider over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("component", "orders"),
	}
}

// Create inserts a new draft order row and returns a handle to assemble it.
func (s *Service) Create(ctx context.Context) (Draft, error) {
	ref := uuid.NewString()
	id, err := s.store.InsertDraftOrder(ctx, ref, "draft")
	if err != nil {
		return nil, fmt.Errorf("create draft order: %w", err)
	}
	s.logger.Debug("draft order created", "order_id", id, "order_ref", ref)
	return &draft{store: s.store, id: id}, nil
}

type draft struct {
	store Store
	id    int64
	total int64
}

func (d *draft) AddLine(ctx context.Context, line cart.Line) error {
	item := repo.OrderItem{
		OrderID:        d.id,
		ProductID:      line.ProductID,
		VariationID:    line.VariationID,
		Name:           line.Name,
		Quantity:       line.Quantity,
		UnitPriceCents: line.UnitPriceCents,
		LineTotalCents: line.LineTotalCents,
	}
	if err := d.store.InsertOrderItem(ctx, item); err != nil {
		return fmt.Errorf("add order line: %w", err)
	}
	return nil
}

func (d *draft) SetAddress(ctx context.Context, kind string, addr Address) error {
	data, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	if err := d.store.UpdateOrderAddress(ctx, d.id, kind, data); err != nil {
		return fmt.Errorf("set %s address: %w", kind, err)
	}
	return nil
}

func (d *draft) CalculateTotals(ctx context.Context) error {
	total, err := d.store.SumOrderItems(ctx, d.id)
	if err != nil {
		return fmt.Errorf("calculate totals: %w", err)
	}
	if err := d.store.UpdateOrderTotal(ctx, d.id, total); err != nil {
		return fmt.Errorf("store total: %w", err)
	}
	d.total = total
	return nil
}

func (d *draft) SetStatus(ctx context.Context, status string) error {
	if err := d.store.UpdateOrderStatus(ctx, d.id, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func (d *draft) ID() int64 {
	return d.id
}

func (d *draft) TotalCents() int64 {
	return d.total
}
