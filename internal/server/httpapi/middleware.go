package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/server/auth"
	"github.com/roomify-app/roomify/internal/server/ratelimit"
)

type ctxKey string

// UserIDKey carries the authenticated user id in request contexts.
const UserIDKey ctxKey = "userID"

// UserIDFromContext returns the user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// authMiddleware requires a valid bearer access token. Expired tokens are
// answered with 401 "token expired" so clients know to refresh.
func (h *Handler) authMiddleware(next http.Handler, allowQueryToken bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" && allowQueryToken {
			token = r.URL.Query().Get("access_token")
		}
		if token == "" {
			writeErrorMessage(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, h.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeErrorMessage(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
				return
			}
			writeErrorMessage(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, userID)))
	})
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(v, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(v, common.BearerPrefix))
}

// RateLimitMiddleware rejects clients that exceed their per-address budget.
// X-Forwarded-For is only consulted when trustProxy is set.
func RateLimitMiddleware(limiter *ratelimit.Limiter, requestsPerHour int, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientAddr(r, trustProxy)

			if !limiter.Allow(key) {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requestsPerHour))
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeErrorMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requestsPerHour))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens(key))))

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if addr := strings.TrimSpace(strings.Split(fwd, ",")[0]); addr != "" {
				return addr
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// corsMiddleware adds CORS headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				h.logger.Error(r.Context(), "handler panic", "path", r.URL.Path, "panic", p)
				writeErrorMessage(w, http.StatusInternalServerError, common.ErrorInternal.Error())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
