package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
)

// UploadsHandler streams stored product images.
type UploadsHandler struct {
	Uploads *upload.Uploader
	Debug   bool
}

func NewUploadsHandler(u *upload.Uploader, debug bool) *UploadsHandler {
	return &UploadsHandler{Uploads: u, Debug: debug}
}

// Image: GET /uploads/products/:name
func (h *UploadsHandler) Image(c echo.Context) error {
	rc, ctype, err := h.Uploads.Open(c.Request().Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			return apperror.Write(c, apperror.New(http.StatusNotFound, apperror.CodeRouteNotFound, "File not found"), h.Debug)
		}
		return apperror.Write(c, err, h.Debug)
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.Stream(http.StatusOK, ctype, rc)
}
