package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/httputil"
)

type ctxIdentityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey{}).(Identity)
	return id, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate turns a raw access token into the caller's current identity.
func Authenticate(ctx context.Context, tokens *TokenService, users IdentityLoader, raw string) (Identity, error) {
	claims, err := tokens.Validate(raw, TokenAccess)
	if errors.Is(err, ErrTokenExpired) {
		return Identity{}, apperr.Authentication("token has expired")
	}
	if err != nil {
		return Identity{}, apperr.Authentication("invalid token")
	}

	id, err := users.LoadIdentity(ctx, claims.UserID)
	if errors.Is(err, ErrUnknownUser) {
		return Identity{}, apperr.Authentication("user not found")
	}
	if err != nil {
		return Identity{}, err
	}
	if !id.Approved {
		return Identity{}, apperr.Authentication("user is not approved")
	}
	return id, nil
}

// Middleware rejects requests without a valid access token of an existing, approved user.
func Middleware(tokens *TokenService, users IdentityLoader, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				httputil.WriteError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}
			id, err := Authenticate(r.Context(), tokens, users, raw)
			if err != nil {
				httputil.WriteErr(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalMiddleware attaches the identity when a valid token is present and lets anonymous
// requests through untouched. A present but bad token is still rejected.
func OptionalMiddleware(tokens *TokenService, users IdentityLoader, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := Authenticate(r.Context(), tokens, users, raw)
			if err != nil {
				httputil.WriteErr(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles lets the request through only when the authenticated caller holds one of roles.
func RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.HasRole(roles...) {
				httputil.WriteError(w, http.StatusForbidden, "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
