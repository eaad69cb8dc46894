package middleware

import (
	"net/http"
	"strings"

	"github.com/orivyx/orivyx-backend/internal/auth"
	"github.com/orivyx/orivyx-backend/internal/config"
)

// Auth returns middleware that enforces auth mode (disabled | required) on
// admin routes and sets claims in context. Public paths (health, metrics,
// lead capture) are never gated.
func Auth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}
			mode := strings.ToLower(strings.TrimSpace(cfg.AuthMode))
			if mode == "disabled" {
				next.ServeHTTP(w, r)
				return
			}
			token := extractBearer(r)
			if token == "" {
				unauthorized(w, "Authentication required")
				return
			}
			claims, err := auth.ValidateToken(cfg.AuthJWTSecret, token)
			if err != nil {
				msg := "Invalid or expired token"
				if err == auth.ErrExpiredToken {
					msg = "Token expired"
				}
				unauthorized(w, msg)
				return
			}
			ctx := auth.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(r *http.Request) bool {
	path := r.URL.Path
	if path == "/health" || path == "/metrics" {
		return true
	}
	// Lead capture is the public contact form endpoint.
	return path == "/api/v1/leads" && r.Method == http.MethodPost
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

func extractBearer(r *http.Request) string {
	s := r.Header.Get("Authorization")
	if s == "" {
		return r.URL.Query().Get("token")
	}
	const prefix = "Bearer "
	if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	return ""
}
