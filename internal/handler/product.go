package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/middleware"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/service"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	Catalog *service.CatalogService
	Uploads *upload.Uploader
	Debug   bool
}

func NewProductHandler(catalog *service.CatalogService, uploads *upload.Uploader, debug bool) *ProductHandler {
	return &ProductHandler{Catalog: catalog, Uploads: uploads, Debug: debug}
}

type listResp struct {
	Success     bool            `json:"success"`
	Count       int             `json:"count"`
	Total       int64           `json:"total"`
	TotalPages  int64           `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Data        []model.Product `json:"data"`
}

type productResp struct {
	Success bool           `json:"success"`
	Data    *model.Product `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// List: GET /api/products
func (h *ProductHandler) List(c echo.Context) error {
	q := repository.ParseProductQuery(c.QueryParams())
	page, err := h.Catalog.List(c.Request().Context(), q)
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	if page.Items == nil {
		page.Items = []model.Product{}
	}
	return c.JSON(http.StatusOK, listResp{
		Success:     true,
		Count:       len(page.Items),
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.Page,
		Data:        page.Items,
	})
}

// Get: GET /api/products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.Catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, productResp{Success: true, Data: p})
}

// Create: POST /api/products (multipart, admin)
func (h *ProductHandler) Create(c echo.Context) error {
	form, img, cleanup, err := h.readProduct(c)
	defer cleanup()
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	p, err := h.Catalog.Create(c.Request().Context(), form, img, actorOf(c))
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusCreated, productResp{Success: true, Data: p, Message: "Product created successfully"})
}

// Replace: PUT /api/products/:id (admin)
func (h *ProductHandler) Replace(c echo.Context) error {
	form, img, cleanup, err := h.readProduct(c)
	defer cleanup()
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	p, err := h.Catalog.Replace(c.Request().Context(), c.Param("id"), form, img, actorOf(c))
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, productResp{Success: true, Data: p, Message: "Product updated successfully"})
}

// Patch: PATCH /api/products/:id (admin)
func (h *ProductHandler) Patch(c echo.Context) error {
	form, img, cleanup, err := h.readProduct(c)
	defer cleanup()
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	p, err := h.Catalog.Patch(c.Request().Context(), c.Param("id"), form, img, actorOf(c))
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, productResp{Success: true, Data: p, Message: "Product updated successfully"})
}

// Delete: DELETE /api/products/:id (admin)
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.Catalog.Delete(c.Request().Context(), c.Param("id"), actorOf(c)); err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, productResp{Success: true, Message: "Product deleted successfully"})
}

// readProduct accepts multipart, urlencoded or JSON bodies.  Only multipart
// bodies can carry an image.  cleanup is always safe to call.
func (h *ProductHandler) readProduct(c echo.Context) (service.ProductForm, *upload.Image, func(), error) {
	noop := func() {}
	ct := c.Request().Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(ct, echo.MIMEMultipartForm):
		mf, err := c.MultipartForm()
		if err != nil {
			return service.ProductForm{}, nil, noop, apperror.Upload("Malformed multipart body.").WithCause(err)
		}
		cleanup := func() { _ = mf.RemoveAll() }
		img, err := h.Uploads.Inspect(mf)
		if err != nil {
			return service.ProductForm{}, nil, cleanup, err
		}
		return service.NewProductForm(url.Values(mf.Value)), img, cleanup, nil

	case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
		// BindBody skips the :id path param, which Bind would copy into the map.
		var body map[string]any
		if err := new(echo.DefaultBinder).BindBody(c, &body); err != nil {
			return service.ProductForm{}, nil, noop, apperror.InvalidBody().WithCause(err)
		}
		return service.NewProductForm(jsonValues(body)), nil, noop, nil

	default:
		vals, err := c.FormParams()
		if err != nil {
			return service.ProductForm{}, nil, noop, apperror.InvalidBody().WithCause(err)
		}
		return service.NewProductForm(vals), nil, noop, nil
	}
}

// jsonValues flattens scalar JSON fields into form values; nulls are
// treated as absent.
func jsonValues(body map[string]any) url.Values {
	v := url.Values{}
	for k, raw := range body {
		switch t := raw.(type) {
		case nil:
		case string:
			v.Set(k, t)
		case float64:
			v.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			v.Set(k, fmt.Sprint(t))
		}
	}
	return v
}

func actorOf(c echo.Context) string {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.ID
	}
	return ""
}
