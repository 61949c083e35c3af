package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/model"
)

// UserFinder looks up the account a verified subject claim refers to.
// *repository.Repository satisfies it.
type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// IdentityCache stores resolved identities keyed by token hash.
// *cache.Cache satisfies it.
type IdentityCache interface {
	GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error)
	SetIdentity(ctx context.Context, cacheKey string, id *model.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenService
	Users  UserFinder
	Cache  IdentityCache // optional
}

// Auth returns a middleware that resolves the acting user from a bearer
// token. It is the single authorization gate: the token signature is checked
// first, then the subject claim is resolved to an account. Every failure is
// the same opaque 401 so callers cannot distinguish a bad token from a
// deleted account.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			// Check cache first. The key is a hash of the raw token, so a
			// forged token never hits a cached entry: it already failed
			// signature verification above.
			cacheKey := auth.QuickHash(token)
			var identity *model.Identity
			if cfg.Cache != nil {
				identity, _ = cfg.Cache.GetIdentity(r.Context(), cacheKey)
			}

			if identity == nil {
				user, err := cfg.Users.GetUserByUsername(r.Context(), claims.Subject)
				if err != nil {
					// Unknown subject and store errors both end the request
					// with the opaque 401.
					logAuthFailure(cfg.Logger, r, "unknown_subject")
					writeAuthError(w)
					return
				}

				identity = &model.Identity{
					UserID:   user.ID,
					Username: user.Username,
					Email:    user.Email,
				}

				if cfg.Cache != nil {
					_ = cfg.Cache.SetIdentity(r.Context(), cacheKey, identity)
				}
			}

			cfg.Logger.Debug("authentication successful",
				slog.Int64("user_id", identity.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Could not validate credentials","code":"UNAUTHORIZED"}`))
}
