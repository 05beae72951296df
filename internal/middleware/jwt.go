package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

// TokenCookie is the cookie consulted when no Authorization header is sent.
const TokenCookie = "token"

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator verifies session tokens and builds the role gates on top.
type Authenticator struct {
	tokens  *utils.TokenSigner
	revoked RevocationChecker
	debug   bool
	log     *zerolog.Logger
}

// NewAuthenticator accepts a nil revoked; revocation is then not checked.
func NewAuthenticator(tokens *utils.TokenSigner, revoked RevocationChecker, debug bool, log *zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked, debug: debug, log: log}
}

// AuthenticateToken rejects requests without a valid token and attaches the
// caller's Identity to the context.
func (a *Authenticator) AuthenticateToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := a.authenticate(c); err != nil {
				return apperror.Write(c, err, a.debug)
			}
			return next(c)
		}
	}
}

func (a *Authenticator) authenticate(c echo.Context) (*Identity, error) {
	raw, err := extractToken(c.Request())
	if err != nil {
		return nil, err
	}

	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, tokenError(err)
	}

	if a.revoked != nil && claims.ID != "" {
		revoked, err := a.revoked.IsRevoked(c.Request().Context(), claims.ID)
		switch {
		case err != nil:
			a.log.Warn().Err(err).Str("jti", claims.ID).Msg("revocation check failed, allowing token")
		case revoked:
			return nil, apperror.TokenRevoked()
		}
	}

	id := &Identity{
		ID:      claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	c.Set(ctxIdentity, id)
	c.Set(ctxUserID, id.ID)
	c.Set(ctxRole, id.Role)
	return id, nil
}

// extractToken reads the Authorization header, falling back to the token
// cookie only when no header was sent at all.
func extractToken(r *http.Request) (string, error) {
	if vals, ok := r.Header["Authorization"]; ok {
		h := ""
		if len(vals) > 0 {
			h = vals[0]
		}
		fields := strings.Fields(h)
		switch {
		case len(fields) == 0:
			return "", apperror.InvalidTokenFormat()
		case strings.EqualFold(fields[0], "bearer"):
			if len(fields) != 2 {
				return "", apperror.InvalidTokenFormat()
			}
			return fields[1], nil
		case len(fields) == 1:
			return fields[0], nil
		default:
			return "", apperror.InvalidTokenFormat()
		}
	}
	if ck, err := r.Cookie(TokenCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", apperror.AuthRequired()
}

func tokenError(err error) *apperror.Error {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return apperror.TokenExpired()
	case errors.Is(err, utils.ErrTokenSignature):
		return apperror.InvalidSignature()
	case errors.Is(err, utils.ErrUnsupportedAlgorithm):
		return apperror.UnsupportedAlgorithm()
	default:
		return apperror.InvalidToken()
	}
}
