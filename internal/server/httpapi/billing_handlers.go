package httpapi

import (
	"errors"
	"net/http"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/server/billing"
)

type checkoutRequest struct {
	PriceID    string `json:"price_id"`
	Mode       string `json:"mode"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// ListProducts handles GET /v1/billing/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.billing.Products())
}

// Checkout handles POST /v1/billing/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, _ := UserIDFromContext(r.Context())

	url, err := h.billing.Checkout(r.Context(), billing.CheckoutRequest{
		PriceID:    req.PriceID,
		Mode:       billing.Mode(req.Mode),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		UserID:     userID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

// Subscription handles GET /v1/billing/subscription; 204 when there is none.
func (h *Handler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	sub, err := h.billing.Subscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// ActivePlan handles GET /v1/billing/plan
func (h *Handler) ActivePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	p, err := h.billing.ActivePlan(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
