package middleware

// identity.go holds the request identity attached by the auth middleware and
// the helpers other middleware use to read it.

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Context keys set by AuthenticateToken.
const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

// Identity is the minimal projection of a verified token.
type Identity struct {
	ID        string
	Email     string
	Name      string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityFrom returns the identity attached to c, if any.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(ctxIdentity).(*Identity)
	return id, ok && id != nil
}

// userID returns the authenticated user id, or "anon" for guests.
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
