package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/roomify-app/roomify/internal/common"
)

type addKeyRequest struct {
	Key     string `json:"key"`
	KeyType string `json:"key_type"`
}

type activeKeyResponse struct {
	KeyType common.Provider `json:"key_type"`
	Key     string          `json:"key"`
}

type usageRequest struct {
	FeatureUsed string `json:"feature_used"`
	TokensUsed  *int   `json:"tokens_used,omitempty"`
}

// ListKeys handles GET /v1/keys
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	keys, err := h.keys.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// AddKey handles POST /v1/keys and answers with the refreshed list.
func (h *Handler) AddKey(w http.ResponseWriter, r *http.Request) {
	var req addKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	provider, err := common.ParseProvider(req.KeyType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	if err := h.keys.Add(r.Context(), userID, req.Key, provider); err != nil {
		h.writeError(w, r, err)
		return
	}

	keys, err := h.keys.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, keys)
}

// RemoveKey handles DELETE /v1/keys/{id}
func (h *Handler) RemoveKey(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := h.keys.Remove(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveKey handles GET /v1/keys/active?key_type=
func (h *Handler) ActiveKey(w http.ResponseWriter, r *http.Request) {
	provider, err := common.ParseProvider(r.URL.Query().Get("key_type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	key, err := h.keys.Active(r.Context(), userID, provider)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, activeKeyResponse{KeyType: provider, Key: key})
}

// LogUsage handles POST /v1/usage. Recording is best effort, so any well-formed
// request is accepted.
func (h *Handler) LogUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	h.usage.LogUsage(r.Context(), userID, req.FeatureUsed, req.TokensUsed)
	w.WriteHeader(http.StatusAccepted)
}

// ListUsage handles GET /v1/usage?limit=
func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	userID, _ := UserIDFromContext(r.Context())

	logs, err := h.usage.Recent(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	type usageEntry struct {
		FeatureUsed string `json:"feature_used"`
		TokensUsed  *int   `json:"tokens_used,omitempty"`
		CreatedAt   string `json:"created_at"`
	}
	out := make([]usageEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, usageEntry{FeatureUsed: l.FeatureUsed, TokensUsed: l.TokensUsed, CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339)})
	}
	writeJSON(w, http.StatusOK, out)
}
