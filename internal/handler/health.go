package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe for load balancers.  It returns "ok" as plain
// text with a 200 status.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
