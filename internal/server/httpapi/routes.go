package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/roomify-app/roomify/internal/server/ratelimit"
)

// SetupRoutes configures all HTTP routes. Auth endpoints share a per-address
// limit of authRequestsPerHour. trustProxy keys that limit on X-Forwarded-For.
func (h *Handler) SetupRoutes(authLimiter *ratelimit.Limiter, authRequestsPerHour int, trustProxy bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.recoverMiddleware, corsMiddleware)

	api := r.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public auth endpoints (rate limited)
	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.Use(RateLimitMiddleware(authLimiter, authRequestsPerHour, trustProxy))
	authAPI.HandleFunc("/signup", h.SignUp).Methods(http.MethodPost)
	authAPI.HandleFunc("/signin", h.SignIn).Methods(http.MethodPost)
	authAPI.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	authAPI.HandleFunc("/recover", h.RequestRecovery).Methods(http.MethodPost)
	authAPI.HandleFunc("/recover/confirm", h.ConfirmRecovery).Methods(http.MethodPost)

	// Session event stream; browsers cannot set headers on websockets, so the
	// token may also arrive as ?access_token=.
	api.Handle("/auth/events", h.authMiddleware(http.HandlerFunc(h.Events), true)).Methods(http.MethodGet)

	api.HandleFunc("/billing/products", h.ListProducts).Methods(http.MethodGet)

	// Authenticated endpoints
	authed := api.PathPrefix("").Subrouter()
	authed.Use(func(next http.Handler) http.Handler { return h.authMiddleware(next, false) })

	authed.HandleFunc("/auth/signout", h.SignOut).Methods(http.MethodPost)
	authed.HandleFunc("/auth/user", h.CurrentUser).Methods(http.MethodGet)

	authed.HandleFunc("/keys", h.ListKeys).Methods(http.MethodGet)
	authed.HandleFunc("/keys", h.AddKey).Methods(http.MethodPost)
	authed.HandleFunc("/keys/active", h.ActiveKey).Methods(http.MethodGet)
	authed.HandleFunc("/keys/{id}", h.RemoveKey).Methods(http.MethodDelete)

	authed.HandleFunc("/usage", h.LogUsage).Methods(http.MethodPost)
	authed.HandleFunc("/usage", h.ListUsage).Methods(http.MethodGet)

	authed.HandleFunc("/billing/checkout", h.Checkout).Methods(http.MethodPost)
	authed.HandleFunc("/billing/subscription", h.Subscription).Methods(http.MethodGet)
	authed.HandleFunc("/billing/plan", h.ActivePlan).Methods(http.MethodGet)

	// CORS preflight; corsMiddleware answers it
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return r
}
