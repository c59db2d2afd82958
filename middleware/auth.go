package middleware

import (
	"context"
	"net/http"
	"strings"

	"rucja-api/config"
	"rucja-api/utils"
)

type contextKey string

const userClaimsKey contextKey = "userClaims"

// Guard enforces bearer-token authorization on configured route/method
// pairs. Requests that match no rule pass through untouched; protected
// requests must carry a token that verifies, and the decoded claims are
// attached to the request context for downstream handlers.
func Guard(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresAuthorization(cfg.Auth.ProtectedRoutes, r) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Its a protected route/method. You need an auth token to access it.", http.StatusForbidden)
				return
			}

			claims, err := utils.ParseAccessToken(token, cfg.Auth.AccessTokenSecret)
			if err != nil {
				// Legacy message, typo and all; clients match on it.
				http.Error(w, "Some error occurred wile verifying token.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// requiresAuthorization scans the rules in order and stops at the first
// whose route prefix and method set both match. Order matters when
// prefixes overlap.
func requiresAuthorization(rules []config.ProtectedRoute, r *http.Request) bool {
	for _, rule := range rules {
		if !strings.HasPrefix(r.URL.Path, rule.Route) {
			continue
		}
		for _, method := range rule.Methods {
			if method == r.Method {
				return true
			}
		}
	}
	return false
}

// bearerToken extracts the token segment of an Authorization header.
// "Bearer" with no token yields "".
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*utils.Claims)
	return claims, ok
}

func ContextWithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}
