package common

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   uint64
	Username string
	TokenID  string
	Claims   *Claims
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// ViewerID returns the caller's user id, or 0 for anonymous requests.
func ViewerID(ctx context.Context) uint64 {
	if id, ok := IdentityFrom(ctx); ok {
		return id.UserID
	}
	return 0
}

// Authenticate resolves an optional bearer token into an Identity.
// Missing, invalid or revoked tokens leave the request anonymous.
func Authenticate(tokens *TokenManager, revoker TokenRevoker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("ignoring invalid token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Warn("token revocation lookup failed", zap.Error(err))
				}
				if revoked || err != nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := WithIdentity(r.Context(), &Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				TokenID:  claims.ID,
				Claims:   claims,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			WriteError(w, ErrUnauthorized)
			return
		}
		next(w, r)
	}
}

// Authorization: Bearer <token>
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}
