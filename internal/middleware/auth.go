package middleware

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// TokenVerifier resolves a raw token to the caller it identifies.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// Authenticate rejects requests that do not carry a valid session token and
// attaches the resolved identity to the request context. A rejected session
// cookie is cleared so that the client stops sending it.
func Authenticate(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), auth.TokenFromRequest(r))
			if err != nil {
				var domainErr *model.DomainError
				if !errors.As(err, &domainErr) {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
					writeJSONError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
					return
				}

				logger.Warn().
					Str("path", r.URL.Path).
					Str("reason", domainErr.Code).
					Msg("authentication rejected")
				clearSessionCookie(w)
				writeJSONError(w, http.StatusUnauthorized, domainErr.Code, domainErr.Message)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// AdminOnly rejects callers that are not administrators. It must run after
// Authenticate.
func AdminOnly(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.FromContext(r.Context())
			if err := auth.RequireAdmin(identity); err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("admin access denied")
				writeJSONError(w, http.StatusUnauthorized, model.ErrNotAdmin.Code, model.ErrNotAdmin.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
