package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wa-cart/internal/cache"
	"wa-cart/internal/repo"
)

const (
	storageKey = "wa_cart_settings"
	cacheKey   = "wacart:settings"
)

// Settings is the singleton configuration for the WhatsApp order button.
type Settings struct {
	WhatsAppNumber   string `json:"whatsapp_number"`
	EnableOnProduct  bool   `json:"enable_on_product"`
	EnableOnCart     bool   `json:"enable_on_cart"`
	EnableOnCheckout bool   `json:"enable_on_checkout"`
	CreateDraftOrder bool   `json:"create_draft_order"`
	CurrencySymbol   string `json:"currency_symbol"`
	MessageTemplate  string `json:"message_template"`
}

// Defaults returns the settings installed on first run.
func Defaults() Settings {
	return Settings{
		WhatsAppNumber:   "",
		EnableOnProduct:  false,
		EnableOnCart:     true,
		EnableOnCheckout: true,
		CreateDraftOrder: false,
		CurrencySymbol:   "$",
		MessageTemplate: "Hello, I would like to order:\n\n{product_list}\n\nTotal: {total}\n\n" +
			"My Details:\nName: {name}\nPhone: {phone}\nAddress: {address}, {city}",
	}
}

// Store is the persistence subset the service needs. Satisfied by
// repo.Repository.
type Store interface {
	GetSetting(ctx context.Context, key string) ([]byte, error)
	PutSetting(ctx context.Context, key string, value []byte) error
}

// Service loads and saves the settings singleton with a short-lived cache in
// front of the database.
type Service struct {
	store  Store
	cache  *cache.Redis
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates the settings service. The cache is optional.
func NewService(store Store, redis *cache.Redis, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		store:  store,
		cache:  redis,
		ttl:    ttl,
		logger: logger.With("component", "settings"),
	}
}

// EnsureDefaults installs the default settings when none are stored yet.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	_, err := s.store.GetSetting(ctx, storageKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("check settings: %w", err)
	}
	if err := s.Save(ctx, Defaults()); err != nil {
		return fmt.Errorf("install default settings: %w", err)
	}
	s.logger.Info("default settings installed")
	return nil
}

// Current returns the stored settings, falling back to defaults when the
// singleton row is missing.
func (s *Service) Current(ctx context.Context) (Settings, error) {
	if s.cache != nil {
		var cached Settings
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("settings cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	raw, err := s.store.GetSetting(ctx, storageKey)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, loaded, s.ttl); err != nil {
			s.logger.Warn("settings cache write failed", "error", err)
		}
	}
	return loaded, nil
}

// Save persists the settings and invalidates the cache.
func (s *Service) Save(ctx context.Context, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.PutSetting(ctx, storageKey, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			s.logger.Warn("settings cache invalidation failed", "error", err)
		}
	}
	return nil
}
