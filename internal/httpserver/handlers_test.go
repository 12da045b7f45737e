package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"wa-cart/internal/analytics"
	"wa-cart/internal/cart"
	"wa-cart/internal/intent"
	"wa-cart/internal/repo"
	"wa-cart/internal/settings"
)

type fakeCart struct {
	lines []cart.Line
}

func (f *fakeCart) IsEmpty(ctx context.Context) (bool, error) { return len(f.lines) == 0, nil }
func (f *fakeCart) Lines(ctx context.Context) ([]cart.Line, error) {
	return f.lines, nil
}
func (f *fakeCart) AddLine(ctx context.Context, productID int64, quantity int, variationID int64) error {
	return nil
}
func (f *fakeCart) Empty(ctx context.Context) error {
	f.lines = nil
	return nil
}
func (f *fakeCart) TotalCents(ctx context.Context) (int64, error) {
	var total int64
	for _, l := range f.lines {
		total += l.LineTotalCents
	}
	return total, nil
}

type fakeCartSource struct {
	cart *fakeCart
}

func (f *fakeCartSource) ForSession(sessionID string) cart.Cart { return f.cart }

type fakeSettingsStore struct {
	rows map[string][]byte
}

func (f *fakeSettingsStore) GetSetting(ctx context.Context, key string) ([]byte, error) {
	value, ok := f.rows[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return value, nil
}

func (f *fakeSettingsStore) PutSetting(ctx context.Context, key string, value []byte) error {
	f.rows[key] = value
	return nil
}

type fakeProfiles struct{}

func (fakeProfiles) GetProfileField(ctx context.Context, userID, field string) (string, error) {
	return "", nil
}

type fakeEventLog struct {
	events []repo.AnalyticsEvent
}

func (f *fakeEventLog) AppendEvent(ctx context.Context, event repo.AnalyticsEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeEventLog) ListRecentEvents(ctx context.Context, limit int) ([]repo.AnalyticsEvent, error) {
	return f.events, nil
}
func (f *fakeEventLog) EventTypeCounts(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, ev := range f.events {
		counts[ev.EventType]++
	}
	return counts, nil
}

type testServer struct {
	server *Server
	nonces *intent.NonceIssuer
	cart   *fakeCart
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	settingsService := settings.NewService(&fakeSettingsStore{rows: map[string][]byte{}}, nil, time.Minute, logger)
	if err := settingsService.Save(context.Background(), settings.Settings{
		WhatsAppNumber:  "15551234567",
		EnableOnCart:    true,
		CurrencySymbol:  "$",
		MessageTemplate: "Order {order_id}: {product_list} = {total}",
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	recorder := analytics.NewRecorder(&fakeEventLog{}, logger, nil)
	nonces := intent.NewNonceIssuer("test-secret", time.Hour)
	shopperCart := &fakeCart{}

	processor := intent.NewProcessor(settingsService, &fakeCartSource{cart: shopperCart}, nil,
		fakeProfiles{}, recorder, nil, nonces, logger, nil)

	server := New(":0", logger, nil, Dependencies{
		Processor: processor,
		Nonces:    nonces,
		Settings:  settingsService,
		Analytics: recorder,
	}, "")

	return &testServer{server: server, nonces: nonces, cart: shopperCart}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.server.httpServer.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestOrderIntentRejectsBadNonce(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(postForm("/order-intent", url.Values{
		"session":  {"s1"},
		"security": {"bogus"},
	}))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid security token") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestOrderIntentEmptyCart(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(postForm("/order-intent", url.Values{
		"session":  {"s1"},
		"security": {ts.nonces.Issue("s1")},
		"is_cart":  {"true"},
	}))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Cart is empty") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestOrderIntentInvalidProduct(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(postForm("/order-intent", url.Values{
		"session":    {"s1"},
		"security":   {ts.nonces.Issue("s1")},
		"is_product": {"true"},
		"product_id": {"0"},
	}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid Product") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestOrderIntentSuccess(t *testing.T) {
	ts := newTestServer(t)
	ts.cart.lines = []cart.Line{
		{ProductID: 1, Name: "Widget", Quantity: 2, LineTotalCents: 2000},
	}

	rr := ts.do(postForm("/order-intent", url.Values{
		"session":  {"s1"},
		"security": {ts.nonces.Issue("s1")},
		"is_cart":  {"true"},
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var result intent.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(result.RedirectURL, "https://wa.me/15551234567?text=") {
		t.Fatalf("unexpected redirect %q", result.RedirectURL)
	}
}

func TestOrderIntentRejectsGet(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest(http.MethodGet, "/order-intent", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}

func TestNonceEndpointIssuesSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/order-intent/nonce", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["session"] == "" || body["nonce"] == "" {
		t.Fatalf("expected session and nonce, got %+v", body)
	}
	if !ts.nonces.Verify(body["session"], body["nonce"]) {
		t.Fatal("issued nonce should verify for its session")
	}
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	payload := `{"whatsapp_number":"628111","enable_on_product":true,"enable_on_cart":true,"enable_on_checkout":false,"create_draft_order":false,"currency_symbol":"Rp","message_template":"Order {order_id}"}`
	put := httptest.NewRequest(http.MethodPut, "/admin/settings", strings.NewReader(payload))
	put.Header.Set("Content-Type", "application/json")
	if rr := ts.do(put); rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var got settings.Settings
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if got.WhatsAppNumber != "628111" || got.CurrencySymbol != "Rp" || !got.EnableOnProduct {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestAdminSettingsRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)
	put := httptest.NewRequest(http.MethodPut, "/admin/settings", strings.NewReader(`{"bogus":true}`))
	put.Header.Set("Content-Type", "application/json")
	if rr := ts.do(put); rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAdminAnalytics(t *testing.T) {
	ts := newTestServer(t)
	ts.cart.lines = []cart.Line{{Name: "Widget", Quantity: 1, LineTotalCents: 500}}

	rr := ts.do(postForm("/order-intent", url.Values{
		"session":  {"s1"},
		"security": {ts.nonces.Issue("s1")},
		"is_cart":  {"true"},
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("intent status = %d", rr.Code)
	}

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rr.Code)
	}
	var body struct {
		Summary analytics.Summary     `json:"summary"`
		Recent  []repo.AnalyticsEvent `json:"recent"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Summary.ClicksCart != 1 || body.Summary.TotalClicks != 1 {
		t.Fatalf("unexpected summary %+v", body.Summary)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestBasePathMounting(t *testing.T) {
	if got := normaliseBasePath("wa-cart/"); got != "/wa-cart" {
		t.Fatalf("normaliseBasePath = %q", got)
	}
	if got := normaliseBasePath("/"); got != "" {
		t.Fatalf("normaliseBasePath(/) = %q", got)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
	mounted := mountWithBasePath("/wa-cart", inner)

	rr := httptest.NewRecorder()
	mounted.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wa-cart/healthz", nil))
	if rr.Body.String() != "/healthz" {
		t.Fatalf("expected stripped path, got %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mounted.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/other/healthz", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("paths outside the base must 404, got %d", rr.Code)
	}
}
