package httpapi

import (
	"net/http"
	"time"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

type confirmRecoveryRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignUp handles POST /v1/auth/signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.users.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

// SignIn handles POST /v1/auth/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /v1/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeErrorMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusNotFound {
			// unknown refresh tokens are an auth failure, not a missing resource
			status, msg = http.StatusUnauthorized, "invalid refresh token"
		}
		writeErrorMessage(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// SignOut handles POST /v1/auth/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := h.users.SignOut(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser handles GET /v1/auth/user
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
}

// RequestRecovery handles POST /v1/auth/recover
func (h *Handler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.users.RequestRecovery(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConfirmRecovery handles POST /v1/auth/recover/confirm
func (h *Handler) ConfirmRecovery(w http.ResponseWriter, r *http.Request) {
	var req confirmRecoveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pair, err := h.users.ConfirmRecovery(r.Context(), req.Token, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}
