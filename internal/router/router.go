package router // package router defines how HTTP routes are registered for the API

import (
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/handler"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/middleware"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

// multipartSlack leaves room for the text fields and boundaries that travel
// next to the image in a product form.
const multipartSlack = 1 << 20

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the /api/auth group.  rateLimit guards the whole
// group; pass nil to leave it unthrottled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn *middleware.Authenticator, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Bootstrap is protected by the admin secret in the body, not by a token.
	g.POST("/init-admin", a.InitAdmin)

	g.GET("/me", a.Me, authn.RequireRole(model.RoleUser))
	g.POST("/logout", a.Logout, authn.AuthenticateToken())
}

// RegisterProducts mounts the catalog.  Reads are public; every mutation
// runs the admin gate (token, admin role, X-Admin-Secret) and is audited.
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, authn *middleware.Authenticator, adminSecret string, auditor middleware.Auditor, maxUpload int64) {
	g := e.Group("/api/products")
	g.GET("", p.List)
	g.GET("/:id", p.Get)

	limit := echomw.BodyLimit(strconv.FormatInt(maxUpload+multipartSlack, 10) + "B")
	admin := []echo.MiddlewareFunc{authn.Admin(adminSecret, auditor), limit}
	g.POST("", p.Create, admin...)
	g.PUT("/:id", p.Replace, admin...)
	g.PATCH("/:id", p.Patch, admin...)
	g.DELETE("/:id", p.Delete, admin...)
}

// RegisterUploads serves stored product images under prefix.
func RegisterUploads(e *echo.Echo, u *handler.UploadsHandler, prefix string) {
	e.GET(prefix+"/:name", u.Image)
}
