package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/handler"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/middleware"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/service"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

const adminSecret = "bootstrap-secret"

var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 64)...)

type testApp struct {
	e        *echo.Echo
	cfg      config.Config
	products *memProducts
	auditor  *memAuditor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Config{
		JWTSecret:     "test-secret",
		AdminSecret:   adminSecret,
		TokenIssuer:   "divyaanjani-api",
		TokenAudience: "divyaanjani-web",
		UserTokenTTL:  7 * 24 * time.Hour,
		AdminTokenTTL: 8 * time.Hour,
		BcryptCost:    4,
		AdminBcrypt:   4,
		DBTimeout:     time.Second,
		Upload:        config.UploadConfig{PublicPrefix: "/uploads/products", MaxBytes: 1 << 20},
	}
	log := zerolog.Nop()

	store, err := upload.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	uploads := upload.New(store, cfg.Upload, &log)

	users := &memUsers{byID: map[string]*model.User{}}
	products := &memProducts{items: map[string]*model.Product{}}
	auditor := &memAuditor{}
	signer := utils.NewTokenSigner(cfg)
	v := service.NewValidator()

	auth := service.NewAuthService(cfg, users, signer, nil, v, &log)
	catalog := service.NewCatalogService(products, uploads, v, cfg.DBTimeout, &log)
	authn := middleware.NewAuthenticator(signer, nil, true, &log)

	e := echo.New()
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(true)
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(auth, true), authn, nil)
	RegisterProducts(e, handler.NewProductHandler(catalog, uploads, true), authn, cfg.AdminSecret, auditor, cfg.Upload.MaxBytes)
	RegisterUploads(e, handler.NewUploadsHandler(uploads, true), cfg.Upload.PublicPrefix)

	return &testApp{e: e, cfg: cfg, products: products, auditor: auditor}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postJSON(path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return a.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// adminToken bootstraps an admin and logs in as it.
func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	rec := a.postJSON("/api/auth/init-admin", map[string]string{
		"secret": adminSecret, "email": "admin@example.com", "password": "admin-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.postJSON("/api/auth/login", map[string]string{"email": "admin@example.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="root.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (a *testApp) createProduct(t *testing.T, token string, fields map[string]string) map[string]any {
	t.Helper()
	body, ctype := productForm(t, fields, jpegBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := a.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["data"].(map[string]any)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSignupThenLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.postJSON("/api/auth/signup", map[string]string{"name": "A", "email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	signup := decode(t, rec)
	assert.Equal(t, "User created successfully", signup["message"])
	assert.NotEmpty(t, signup["token"])
	user := signup["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "password")

	rec = app.postJSON("/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode(t, rec)

	claims, err := utils.NewTokenSigner(app.cfg).Parse(login["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["_id"], claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login["token"].(string))
	rec = app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "a@b.com", decode(t, rec)["data"].(map[string]any)["email"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"name": "A", "email": "a@b.com", "password": "secret1"}
	require.Equal(t, http.StatusCreated, app.postJSON("/api/auth/signup", body).Code)

	rec := app.postJSON("/api/auth/signup", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeEmailExists, decode(t, rec)["code"])
}

func TestLogin_MalformedBody(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeInvalidBody, decode(t, rec)["code"])
}

func TestCreateProduct(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)

	data := app.createProduct(t, token, map[string]string{
		"name": "Ashwagandha", "description": "Root powder", "category": "Health Care", "price": "19.99",
	})
	assert.Equal(t, 19.99, data["price"])
	imageURL := data["imageUrl"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/products/"), imageURL)

	require.Len(t, app.auditor.entries, 1)
	assert.Equal(t, "admin@example.com", app.auditor.entries[0].ActorEmail)
	assert.Equal(t, http.MethodPost, app.auditor.entries[0].Method)

	rec := app.do(httptest.NewRequest(http.MethodGet, imageURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, jpegBytes, rec.Body.Bytes())
}

func TestCreateProduct_RequiresAdminSecret(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)

	body, ctype := productForm(t, map[string]string{"name": "x"}, jpegBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := app.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperror.CodeAdminSecretRequired, decode(t, rec)["code"])
	assert.Empty(t, app.products.items)
	assert.Empty(t, app.auditor.entries)
}

func TestCreateProduct_AnonymousRejected(t *testing.T) {
	app := newTestApp(t)
	body, ctype := productForm(t, map[string]string{"name": "x"}, jpegBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := app.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeAuthRequired, decode(t, rec)["code"])
}

func TestListProducts_CategoryFilterAndLimit(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	for i, cat := range []string{"Skin Care", "Health Care", "Protein Products", "Skin Care", "Health Care"} {
		app.createProduct(t, token, map[string]string{
			"name": fmt.Sprintf("p%d", i), "description": "d", "category": cat, "price": "5",
		})
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/products?category=Skin%20Care,Health%20Care&limit=2&page=1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)

	items := out["data"].([]any)
	assert.LessOrEqual(t, len(items), 2)
	assert.EqualValues(t, len(items), out["count"])
	assert.EqualValues(t, 4, out["total"])
	assert.EqualValues(t, 2, out["totalPages"])
	assert.EqualValues(t, 1, out["currentPage"])
	for _, it := range items {
		assert.Contains(t, []string{"Skin Care", "Health Care"}, it.(map[string]any)["category"])
	}
}

func TestPatchProduct_OnlyPrice(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	before := app.createProduct(t, token, map[string]string{
		"name": "Ashwagandha", "description": "Root powder", "category": "Health Care", "price": "19.99",
	})

	body, ctype := productForm(t, map[string]string{"price": "24.5"}, nil)
	req := httptest.NewRequest(http.MethodPatch, "/api/products/"+before["_id"].(string), body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, 24.5, after["price"])
	for _, k := range []string{"name", "description", "imageUrl", "category"} {
		assert.Equal(t, before[k], after[k], k)
	}
}

func TestPatchProduct_JSONBody(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	before := app.createProduct(t, token, map[string]string{
		"name": "Whey", "description": "Protein", "category": "Protein Products", "price": "30",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/products/"+before["_id"].(string), strings.NewReader(`{"stock": 12}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 12, decode(t, rec)["data"].(map[string]any)["stock"])
}

func TestGetProduct_Errors(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/products/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeInvalidID, decode(t, rec)["code"])

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/products/64b7f0c2a1b2c3d4e5f60718", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeProductNotFound, decode(t, rec)["code"])
}

func TestDeleteProduct(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	p := app.createProduct(t, token, map[string]string{
		"name": "Serum", "description": "Face", "category": "Skin Care", "price": "12",
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+p["_id"].(string), nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product deleted successfully", decode(t, rec)["message"])

	rec = app.do(httptest.NewRequest(http.MethodGet, p["imageUrl"].(string), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeRouteNotFound, decode(t, rec)["code"])
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/products?limit=500&page=0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, []any{}, out["data"])
	assert.EqualValues(t, 1, out["currentPage"])
}

func oversizedProduct(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	return productForm(t, map[string]string{"name": "Big"}, bytes.Repeat([]byte{0xFF}, 3<<20))
}

func TestCreateProduct_OversizedAnonymousNeedsAuthFirst(t *testing.T) {
	app := newTestApp(t)
	body, ctype := oversizedProduct(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := app.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeAuthRequired, decode(t, rec)["code"])
}

func TestCreateProduct_OversizedBodyIsBadRequest(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	body, ctype := oversizedProduct(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := app.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeFileTooLarge, decode(t, rec)["code"])
	assert.Empty(t, app.products.items)
}

func TestPatchProduct_JSONIgnoresPathParam(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	before := app.createProduct(t, token, map[string]string{
		"name": "Whey", "description": "Protein", "category": "Protein Products", "price": "30",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/products/"+before["_id"].(string), strings.NewReader(`{"name": "Whey Isolate"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Whey Isolate", after["name"])
	assert.Equal(t, before["_id"], after["_id"])
	assert.Equal(t, before["price"], after["price"])
}
