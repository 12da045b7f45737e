package repo

import (
	"context"
	"io/fs"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// Settings
	GetSetting(ctx context.Context, key string) ([]byte, error)
	PutSetting(ctx context.Context, key string, value []byte) error

	// Products
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetVariationPriceCents(ctx context.Context, productID, variationID int64) (int64, bool, error)
	UpsertProduct(ctx context.Context, p Product) error

	// Profiles
	GetProfileField(ctx context.Context, userID, field string) (string, error)
	UpsertProfile(ctx context.Context, p Profile) error

	// Draft orders
	InsertDraftOrder(ctx context.Context, orderRef, status string) (int64, error)
	InsertOrderItem(ctx context.Context, item OrderItem) error
	UpdateOrderAddress(ctx context.Context, orderID int64, kind string, address []byte) error
	SumOrderItems(ctx context.Context, orderID int64) (int64, error)
	UpdateOrderTotal(ctx context.Context, orderID, totalCents int64) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error

	// Analytics
	AppendEvent(ctx context.Context, event AnalyticsEvent) error
	ListRecentEvents(ctx context.Context, limit int) ([]AnalyticsEvent, error)
	CountEventsByType(ctx context.Context, eventType string) (int64, error)
	EventTypeCounts(ctx context.Context) (map[string]int64, error)
}
