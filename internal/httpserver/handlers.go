package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"wa-cart/internal/cart"
	"wa-cart/internal/intent"
	"wa-cart/internal/settings"

	"github.com/google/uuid"
)

func (s *Server) handleOrderIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, "malformed request")
		return
	}

	req := intent.Request{
		SessionID:   r.PostFormValue("session"),
		Security:    r.PostFormValue("security"),
		UserID:      r.PostFormValue("user_id"),
		IsProduct:   formBool(r.PostFormValue("is_product")),
		IsCart:      formBool(r.PostFormValue("is_cart")),
		IsCheckout:  formBool(r.PostFormValue("is_checkout")),
		ProductID:   formInt(r.PostFormValue("product_id")),
		Quantity:    int(formInt(r.PostFormValue("quantity"))),
		VariationID: formInt(r.PostFormValue("variation_id")),
		FormData:    r.PostFormValue("form_data"),
	}

	result, err := s.deps.Processor.Process(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrForbidden):
			writeFailure(w, http.StatusForbidden, "Invalid security token")
		case errors.Is(err, intent.ErrInvalidProduct):
			writeFailure(w, http.StatusBadRequest, "Invalid Product")
		case errors.Is(err, cart.ErrEmptyCart):
			writeFailure(w, http.StatusConflict, "Cart is empty")
		default:
			s.logger.Error("order intent failed", "error", err)
			writeFailure(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if session == "" {
		session = uuid.NewString()
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session": session,
		"nonce":   s.deps.Nonces.Issue(session),
	})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if session == "" {
		writeFailure(w, http.StatusBadRequest, "session is required")
		return
	}
	shopperCart := s.deps.Carts.ForSession(session)

	switch r.Method {
	case http.MethodGet:
		lines, err := shopperCart.Lines(r.Context())
		if err != nil {
			s.logger.Error("failed reading cart", "error", err)
			writeFailure(w, http.StatusInternalServerError, "failed reading cart")
			return
		}
		total, err := shopperCart.TotalCents(r.Context())
		if err != nil {
			s.logger.Error("failed totalling cart", "error", err)
			writeFailure(w, http.StatusInternalServerError, "failed reading cart")
			return
		}
		if lines == nil {
			lines = []cart.Line{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"lines":       lines,
			"total_cents": total,
		})
	case http.MethodDelete:
		if err := shopperCart.Empty(r.Context()); err != nil {
			s.logger.Error("failed emptying cart", "error", err)
			writeFailure(w, http.StatusInternalServerError, "failed emptying cart")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCartItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, "malformed request")
		return
	}
	session := strings.TrimSpace(r.PostFormValue("session"))
	if session == "" {
		writeFailure(w, http.StatusBadRequest, "session is required")
		return
	}
	productID := formInt(r.PostFormValue("product_id"))
	if productID <= 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid Product")
		return
	}

	shopperCart := s.deps.Carts.ForSession(session)
	err := shopperCart.AddLine(r.Context(),
		productID,
		int(formInt(r.PostFormValue("quantity"))),
		formInt(r.PostFormValue("variation_id")),
	)
	if err != nil {
		s.logger.Error("failed adding cart line", "error", err, "product_id", productID)
		writeFailure(w, http.StatusInternalServerError, "failed adding to cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStorefrontConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := s.deps.Settings.Current(r.Context())
	if err != nil {
		s.logger.Error("failed loading settings", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed loading settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"enable_on_product":  cfg.EnableOnProduct,
		"enable_on_cart":     cfg.EnableOnCart,
		"enable_on_checkout": cfg.EnableOnCheckout,
	})
}

func (s *Server) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.deps.Settings.Current(r.Context())
		if err != nil {
			s.logger.Error("failed loading settings", "error", err)
			writeFailure(w, http.StatusInternalServerError, "failed loading settings")
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut, http.MethodPost:
		var cfg settings.Settings
		if err := decodeJSONBody(r, &cfg); err != nil {
			writeFailure(w, http.StatusBadRequest, "malformed settings payload")
			return
		}
		if err := s.deps.Settings.Save(r.Context(), cfg); err != nil {
			s.logger.Error("failed saving settings", "error", err)
			writeFailure(w, http.StatusInternalServerError, "failed saving settings")
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := int(formInt(r.URL.Query().Get("limit")))
	if limit <= 0 {
		limit = 20
	}

	summary, err := s.deps.Analytics.Summarize(r.Context())
	if err != nil {
		s.logger.Error("failed summarising analytics", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed loading analytics")
		return
	}
	recent, err := s.deps.Analytics.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed listing analytics", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed loading analytics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"recent":  recent,
	})
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func formBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func formInt(val string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
