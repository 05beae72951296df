package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/middleware"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/service"
)

// AuthHandler exposes signup, login, admin bootstrap and session endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Debug bool
}

func NewAuthHandler(auth *service.AuthService, debug bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Debug: debug}
}

type authResp struct {
	Message string           `json:"message"`
	Token   string           `json:"token,omitempty"`
	User    model.PublicUser `json:"user"`
}

// Signup: create a regular user and return a token immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return apperror.Write(c, apperror.InvalidBody().WithCause(err), h.Debug)
	}
	res, err := h.Auth.Signup(c.Request().Context(), req)
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusCreated, authResp{Message: "User created successfully", Token: res.Token, User: res.User})
}

// Login: exchange email and password for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return apperror.Write(c, apperror.InvalidBody().WithCause(err), h.Debug)
	}
	res, err := h.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, authResp{Message: "Login successful", Token: res.Token, User: res.User})
}

// InitAdmin: one-time admin bootstrap guarded by the admin secret.
func (h *AuthHandler) InitAdmin(c echo.Context) error {
	var req service.InitAdminInput
	if err := c.Bind(&req); err != nil {
		return apperror.Write(c, apperror.InvalidBody().WithCause(err), h.Debug)
	}
	user, err := h.Auth.InitAdmin(c.Request().Context(), req)
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusCreated, authResp{Message: "Admin user created successfully", User: *user})
}

// Me returns the profile behind the current token.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return apperror.Write(c, apperror.AuthRequired(), h.Debug)
	}
	user, err := h.Auth.Me(c.Request().Context(), id.ID)
	if err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// Logout revokes the current token and clears the token cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return apperror.Write(c, apperror.AuthRequired(), h.Debug)
	}
	if err := h.Auth.Logout(c.Request().Context(), id.TokenID, id.ExpiresAt); err != nil {
		return apperror.Write(c, err, h.Debug)
	}
	c.SetCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return c.NoContent(http.StatusNoContent)
}
