package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"wa-cart/internal/cart"
	"wa-cart/internal/message"
	"wa-cart/internal/metrics"
	"wa-cart/internal/order"
	"wa-cart/internal/repo"
	"wa-cart/internal/settings"
)

var (
	// ErrForbidden indicates a missing or invalid anti-forgery token.
	ErrForbidden = errors.New("invalid security token")
	// ErrInvalidProduct indicates a product click without a usable product id.
	ErrInvalidProduct = errors.New("invalid product")
)

// Context identifies which page originated the click.
type Context string

const (
	ContextProduct  Context = "product"
	ContextCart     Context = "cart"
	ContextCheckout Context = "checkout"
)

// Request is one inbound order-intent submission.
type Request struct {
	SessionID   string
	Security    string
	UserID      string
	IsProduct   bool
	IsCart      bool
	IsCheckout  bool
	ProductID   int64
	Quantity    int
	VariationID int64
	FormData    string
}

// Result is the successful outcome: the WhatsApp deep link to redirect to.
type Result struct {
	RedirectURL string `json:"redirect_url"`
}

// SettingsSource provides the current button settings.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// CartSource hands out session-scoped carts.
type CartSource interface {
	ForSession(sessionID string) cart.Cart
}

// ProfileStore reads stored billing fields for known shoppers.
type ProfileStore interface {
	GetProfileField(ctx context.Context, userID, field string) (string, error)
}

// Recorder appends analytics events, best-effort.
type Recorder interface {
	Record(ctx context.Context, eventType string, productID, orderID int64)
}

// Notifier pushes an order summary to the store operator, best-effort.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Processor runs the order-intent flow: authenticate, classify, mutate the
// cart when needed, optionally create a draft order, compose the message,
// and build the wa.me deep link.
type Processor struct {
	settings SettingsSource
	carts    CartSource
	orders   order.Provider
	profiles ProfileStore
	recorder Recorder
	notifier Notifier
	nonces   *NonceIssuer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewProcessor wires the order intent processor. notifier may be nil.
func NewProcessor(
	settingsSource SettingsSource,
	carts CartSource,
	orders order.Provider,
	profiles ProfileStore,
	recorder Recorder,
	notifier Notifier,
	nonces *NonceIssuer,
	logger *slog.Logger,
	metricRegistry *metrics.Metrics,
) *Processor {
	return &Processor{
		settings: settingsSource,
		carts:    carts,
		orders:   orders,
		profiles: profiles,
		recorder: recorder,
		notifier: notifier,
		nonces:   nonces,
		logger:   logger.With("component", "intent"),
		metrics:  metricRegistry,
	}
}

// Classify resolves the click context; missing flags fall back to a generic
// cart-style submission.
func Classify(req Request) Context {
	switch {
	case req.IsProduct:
		return ContextProduct
	case req.IsCheckout:
		return ContextCheckout
	default:
		return ContextCart
	}
}

// Process handles one request and is terminal: it either returns the
// redirect link or one of the taxonomy errors.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result, err := p.process(ctx, req)

	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrForbidden):
		status = "forbidden"
	case errors.Is(err, ErrInvalidProduct):
		status = "invalid_product"
	case errors.Is(err, cart.ErrEmptyCart):
		status = "empty_cart"
	default:
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.IntentRequests.WithLabelValues(string(Classify(req)), status).Inc()
		p.metrics.IntentDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
	return result, err
}

func (p *Processor) process(ctx context.Context, req Request) (*Result, error) {
	if !p.nonces.Verify(req.SessionID, req.Security) {
		return nil, ErrForbidden
	}

	cfg, err := p.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	clickContext := Classify(req)
	switch clickContext {
	case ContextProduct:
		p.recorder.Record(ctx, repo.EventClickProduct, req.ProductID, 0)
	case ContextCheckout:
		p.recorder.Record(ctx, repo.EventClickCheckout, 0, 0)
	default:
		p.recorder.Record(ctx, repo.EventClickCart, 0, 0)
	}

	shopperCart := p.carts.ForSession(req.SessionID)

	if clickContext == ContextProduct {
		if req.ProductID <= 0 {
			return nil, ErrInvalidProduct
		}
		variationID := req.VariationID
		if variationID < 0 {
			variationID = 0
		}
		if err := shopperCart.Empty(ctx); err != nil {
			return nil, fmt.Errorf("reset cart: %w", err)
		}
		if err := shopperCart.AddLine(ctx, req.ProductID, req.Quantity, variationID); err != nil {
			return nil, fmt.Errorf("add product to cart: %w", err)
		}
	}

	empty, err := shopperCart.IsEmpty(ctx)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if empty {
		return nil, cart.ErrEmptyCart
	}

	customer := p.resolveCustomer(ctx, req)

	// Snapshot before any order-side mutation so the composed message still
	// lists the purchased items after the cart is emptied.
	snap, err := cart.TakeSnapshot(ctx, shopperCart, cfg.CurrencySymbol)
	if err != nil {
		return nil, err
	}

	orderIDDisplay := "N/A"
	totalDisplay := snap.TotalDisplay

	if cfg.CreateDraftOrder {
		draft, err := p.createDraftOrder(ctx, snap, customer)
		if err != nil {
			if p.metrics != nil {
				p.metrics.DraftOrders.WithLabelValues("error").Inc()
			}
			return nil, err
		}
		if p.metrics != nil {
			p.metrics.DraftOrders.WithLabelValues("created").Inc()
		}

		orderIDDisplay = strconv.FormatInt(draft.ID(), 10)
		totalDisplay = cart.FormatMoney(draft.TotalCents(), cfg.CurrencySymbol)

		p.recorder.Record(ctx, repo.EventOrderCreated, 0, draft.ID())
		p.notifyOperator(ctx, draft.ID(), snap, totalDisplay, customer, cfg.CurrencySymbol)

		if err := shopperCart.Empty(ctx); err != nil {
			return nil, fmt.Errorf("empty cart after order: %w", err)
		}
	}

	tokens := message.Tokens{
		OrderID:     orderIDDisplay,
		ProductList: snap.ProductList(cfg.CurrencySymbol),
		Total:       message.StripMarkup(totalDisplay),
		Name:        customer.FirstName + " " + customer.LastName,
		Phone:       customer.Phone,
		City:        customer.City,
		Address:     customer.Address1,
	}
	composed := message.Render(cfg.MessageTemplate, tokens)

	redirectURL := fmt.Sprintf("https://wa.me/%s?text=%s", cfg.WhatsAppNumber, url.QueryEscape(composed))
	return &Result{RedirectURL: redirectURL}, nil
}

type customerInfo struct {
	FirstName string
	LastName  string
	Phone     string
	Address1  string
	City      string
	Email     string
}

func (p *Processor) resolveCustomer(ctx context.Context, req Request) customerInfo {
	if req.FormData != "" {
		// ParseQuery keeps the fields it could decode even on error.
		values, err := url.ParseQuery(req.FormData)
		if err != nil {
			p.logger.Warn("malformed checkout form data", "error", err)
		}
		return customerInfo{
			FirstName: sanitizeText(values.Get("billing_first_name")),
			LastName:  sanitizeText(values.Get("billing_last_name")),
			Phone:     sanitizeText(values.Get("billing_phone")),
			Address1:  sanitizeText(values.Get("billing_address_1")),
			City:      sanitizeText(values.Get("billing_city")),
			Email:     sanitizeEmail(values.Get("billing_email")),
		}
	}

	if req.UserID != "" {
		return customerInfo{
			FirstName: p.profileField(ctx, req.UserID, "billing_first_name"),
			LastName:  p.profileField(ctx, req.UserID, "billing_last_name"),
			Phone:     p.profileField(ctx, req.UserID, "billing_phone"),
			Address1:  p.profileField(ctx, req.UserID, "billing_address_1"),
			City:      p.profileField(ctx, req.UserID, "billing_city"),
			Email:     p.profileField(ctx, req.UserID, "billing_email"),
		}
	}

	return customerInfo{}
}

func (p *Processor) profileField(ctx context.Context, userID, field string) string {
	value, err := p.profiles.GetProfileField(ctx, userID, field)
	if err != nil {
		p.logger.Warn("profile field lookup failed", "user_id", userID, "field", field, "error", err)
		return ""
	}
	return value
}

func (p *Processor) createDraftOrder(ctx context.Context, snap *cart.Snapshot, customer customerInfo) (order.Draft, error) {
	draft, err := p.orders.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, line := range snap.Lines {
		if err := draft.AddLine(ctx, line); err != nil {
			return nil, fmt.Errorf("attach order line: %w", err)
		}
	}

	address := order.Address{
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Address1:  customer.Address1,
		City:      customer.City,
	}
	if err := draft.SetAddress(ctx, order.KindBilling, address); err != nil {
		return nil, err
	}
	if err := draft.SetAddress(ctx, order.KindShipping, address); err != nil {
		return nil, err
	}
	if err := draft.CalculateTotals(ctx); err != nil {
		return nil, err
	}
	if err := draft.SetStatus(ctx, order.StatusWhatsAppPending); err != nil {
		return nil, err
	}
	return draft, nil
}

func (p *Processor) notifyOperator(ctx context.Context, orderID int64, snap *cart.Snapshot, totalDisplay string, customer customerInfo, symbol string) {
	if p.notifier == nil {
		return
	}
	text := fmt.Sprintf("New WhatsApp order #%d\n\n%s\n\nTotal: %s\nCustomer: %s %s\nPhone: %s",
		orderID,
		snap.ProductList(symbol),
		totalDisplay,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
	)
	p.notifier.Notify(ctx, text)
}
