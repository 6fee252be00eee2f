package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/eventhub/internal/repository"
)

// errNoBearerToken signals a missing or malformed Authorization header.
var errNoBearerToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// user id in a request context — no other package can collide with it.
type contextKey string

const userIDKey contextKey = "userID"

// BearerPrefix is the expected Authorization scheme.
const bearerPrefix = "Bearer "

// RequireAuth enforces authentication on protected routes.
//
// It extracts the token from the "Authorization: Bearer <token>" header,
// verifies it, and stores the subject user id in the request context. A
// missing header, a malformed header, or an invalid/expired token
// short-circuits the chain with 401 Unauthorized.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "valid authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin flag on top of RequireAuth.
//
// It must be mounted after RequireAuth in the middleware chain: it reads the
// already-authenticated user id from the context, loads the user record, and
// rejects with 403 Forbidden unless the record exists and carries the admin
// flag. The DB lookup per request is deliberate — admin status lives in the
// database, not the token, so revoking admin takes effect immediately
// instead of when the token expires.
func RequireAdmin(users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "valid authentication required")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Warn("admin check: user lookup failed",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}

			if !user.IsAdmin {
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) for an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user id. Exported for
// handler tests, which bypass the middleware and build contexts directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// extractUserID reads and verifies the bearer token from the Authorization
// header. Shared by RequireAuth; kept separate so the parsing rules live in
// one place.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errNoBearerToken
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", errNoBearerToken
	}

	return tokens.Verify(token)
}

// writeAuthError writes the standard error envelope without importing the
// handler package (which would create an import cycle — handler uses this
// package's context helpers).
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}`))
}
