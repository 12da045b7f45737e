package repo

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotProvisioned indicates the backing table has not been created.
	ErrNotProvisioned = errors.New("table not provisioned")
)

// Analytics event types written by the recorder.
const (
	EventClickProduct  = "click_product"
	EventClickCart     = "click_cart"
	EventClickCheckout = "click_checkout"
	EventOrderCreated  = "order_created"
)

// Product represents a row in the products table.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profile carries stored billing fields for a known shopper.
type Profile struct {
	UserID    string
	FirstName string
	LastName  string
	Phone     string
	Address1  string
	City      string
	Email     string
	UpdatedAt time.Time
}

// OrderItem is one line attached to a draft order.
type OrderItem struct {
	OrderID        int64
	ProductID      int64
	VariationID    int64
	Name           string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
}

// AnalyticsEvent is one append-only row in wa_cart_analytics.
type AnalyticsEvent struct {
	ID        int64
	Time      time.Time
	EventType string
	ProductID *int64
	OrderID   *int64
}
