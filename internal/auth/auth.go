// Package auth verifies bearer tokens and gates admin-only operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CookieName is the cookie that may carry the session token.
const CookieName = "jwt"

// Claims are the claims carried by a session token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier resolves session tokens to user identities.
type Verifier struct {
	secret []byte
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewVerifier creates a Verifier that checks HMAC signatures against secret.
func NewVerifier(secret string, users repository.UserRepository, logger zerolog.Logger) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		users:  users,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Verify validates token and loads the user it refers to.
//
// The returned error is one of ErrUnauthenticated, ErrInvalidToken,
// ErrTokenExpired or ErrUserNotFound, or a wrapped persistence error.
func (v *Verifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, model.ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			v.logger.Debug().Msg("token expired")
			return nil, model.ErrTokenExpired
		}
		v.logger.Debug().Err(err).Msg("token rejected")
		return nil, model.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		v.logger.Debug().Str("user_id", claims.UserID).Msg("token subject is not a valid id")
		return nil, model.ErrInvalidToken
	}

	identity, err := v.users.GetIdentity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	if identity == nil {
		v.logger.Info().Str("user_id", userID.String()).Msg("token refers to a deleted user")
		return nil, model.ErrUserNotFound
	}

	return identity, nil
}

// TokenFromRequest returns the bearer token of the Authorization header, or
// the session cookie when no bearer token is present.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// RequireAdmin permits the operation only for an identity with admin rights.
func RequireAdmin(identity *model.Identity) error {
	if identity == nil || !identity.IsAdmin {
		return model.ErrNotAdmin
	}
	return nil
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(*model.Identity)
	return identity, ok && identity != nil
}
