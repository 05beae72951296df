package middleware // middleware provides shared request processing for handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

// AdminSecretHeader carries the shared secret on mutating admin requests.
const AdminSecretHeader = "X-Admin-Secret"

// Auditor receives one entry per request that passed the admin gate.
type Auditor interface {
	Record(e model.AuditEntry)
}

// Admin authenticates the caller and requires the admin role.  Requests
// other than GET must also present the admin secret.  Every pass is
// handed to auditor, which may be nil.
func (a *Authenticator) Admin(adminSecret string, auditor Auditor) echo.MiddlewareFunc {
	secret := []byte(adminSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.authenticate(c)
			if err != nil {
				return apperror.Write(c, err, a.debug)
			}
			if id.Role != model.RoleAdmin {
				return apperror.Write(c, apperror.AdminAccessRequired(), a.debug)
			}

			req := c.Request()
			if req.Method != http.MethodGet {
				got := []byte(req.Header.Get(AdminSecretHeader))
				if len(secret) == 0 || subtle.ConstantTimeCompare(got, secret) != 1 {
					return apperror.Write(c, apperror.AdminSecretRequired(), a.debug)
				}
			}

			if auditor != nil {
				auditor.Record(model.AuditEntry{
					ActorID:    id.ID,
					ActorEmail: id.Email,
					Method:     req.Method,
					Path:       req.URL.Path,
					RemoteIP:   c.RealIP(),
					OccurredAt: time.Now().UTC(),
				})
			}
			return next(c)
		}
	}
}

// RequireRole authenticates the caller and requires role.  Admins satisfy
// every role.
func (a *Authenticator) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.authenticate(c)
			if err != nil {
				return apperror.Write(c, err, a.debug)
			}
			if id.Role != role && id.Role != model.RoleAdmin {
				return apperror.Write(c, apperror.RoleRequired(role), a.debug)
			}
			return next(c)
		}
	}
}
