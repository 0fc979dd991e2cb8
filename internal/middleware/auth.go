package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/stockpile-hq/stockpile/internal/ctxkeys"
	"github.com/stockpile-hq/stockpile/internal/model"
)

// TokenVerifier turns a bearer token into the identity it carries.
type TokenVerifier interface {
	Principal(token string) (model.Principal, error)
}

// AuthMiddleware checks for a JWT and adds the principal to the context if valid.
// Requests without a valid token continue anonymously.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.Principal(token)
			if err != nil {
				slog.Debug("rejected token", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a principal.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxkeys.Principal(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// bearerToken reads the Authorization header, falling back to the auth_token cookie.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return ""
	}
	return cookie.Value
}
