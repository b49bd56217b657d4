package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pickemleague/pickem-server/internal/api/apierr"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/auth"
	"github.com/pickemleague/pickem-server/internal/services/token"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Auth creates authentication middleware. A request with no bearer token
// at all gets 401; a token that is present but fails verification gets
// 403, including expired tokens.
func Auth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that restricts a route to admins. It
// checks the user's CURRENT stored role rather than trusting the role
// claim baked into the token, so a revoked admin loses access as soon as
// the revocation lands, not when their token expires.
func RequireAdmin(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			user, err := authService.GetUser(r.Context(), claims.UserID())
			if err != nil {
				apierr.WriteError(w, apierr.NewForbiddenError("Admin access required"))
				return
			}
			if !user.IsAdmin() {
				apierr.WriteError(w, apierr.NewForbiddenError("Admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetClaims returns the verified token claims from the request context
func GetClaims(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*token.Claims)
	return claims
}

// GetUserID returns the authenticated user's id from the request context
func GetUserID(ctx context.Context) model.UserID {
	claims := GetClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID()
}

// MustGetUserID returns the authenticated user's id or panics
func MustGetUserID(ctx context.Context) model.UserID {
	id := GetUserID(ctx)
	if id == "" {
		panic("no claims in context - auth middleware not applied?")
	}
	return id
}
