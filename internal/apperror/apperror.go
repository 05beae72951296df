// Package apperror defines the error taxonomy shared by middleware, services
// and handlers.  Every failure that leaves the API is rendered with the same
// JSON envelope: {success:false, message, code, timestamp} plus optional
// errors[] and debug fields.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Machine-readable error codes.
const (
	CodeAuthRequired         = "AUTH_REQUIRED"
	CodeInvalidTokenFormat   = "INVALID_TOKEN_FORMAT"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeInvalidSignature     = "INVALID_SIGNATURE"
	CodeUnsupportedAlgorithm = "UNSUPPORTED_ALGORITHM"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenRevoked         = "TOKEN_REVOKED"
	CodeAdminAccessRequired  = "ADMIN_ACCESS_REQUIRED"
	CodeAdminSecretRequired  = "ADMIN_SECRET_REQUIRED"
	CodeRoleRequired         = "ROLE_REQUIRED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidID            = "INVALID_ID"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeUploadError          = "UPLOAD_ERROR"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeTooManyFiles         = "TOO_MANY_FILES"
	CodeMissingImage         = "MISSING_IMAGE"
	CodeCreationFailed       = "PRODUCT_CREATION_FAILED"
	CodeUpdateFailed         = "PRODUCT_UPDATE_FAILED"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeAdminExists          = "ADMIN_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidAdminSecret   = "INVALID_ADMIN_SECRET"
	CodeInvalidBody          = "INVALID_BODY"
	CodeRateLimited          = "RATE_LIMITED"
	CodeRouteNotFound        = "NOT_FOUND"
	CodeServerError          = "SERVER_ERROR"
)

// Error is a failure that carries its HTTP status and code.  Cause is kept
// for logging and the debug field; it is never shown in production.
type Error struct {
	Status  int
	Code    string
	Message string
	Errors  []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// WithCause returns a copy of e that wraps cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// New builds an Error with the given status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func AuthRequired() *Error {
	return New(http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
}

func InvalidTokenFormat() *Error {
	return New(http.StatusUnauthorized, CodeInvalidTokenFormat, "Invalid token format")
}

func TokenExpired() *Error {
	return New(http.StatusForbidden, CodeTokenExpired, "Session expired. Please log in again.")
}

func InvalidSignature() *Error {
	return New(http.StatusUnauthorized, CodeInvalidSignature, "Invalid token signature")
}

func UnsupportedAlgorithm() *Error {
	return New(http.StatusUnauthorized, CodeUnsupportedAlgorithm, "Unsupported token algorithm")
}

func InvalidToken() *Error {
	return New(http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
}

func TokenRevoked() *Error {
	return New(http.StatusUnauthorized, CodeTokenRevoked, "Token has been revoked")
}

func AdminAccessRequired() *Error {
	return New(http.StatusForbidden, CodeAdminAccessRequired, "Administrator privileges required")
}

func AdminSecretRequired() *Error {
	return New(http.StatusForbidden, CodeAdminSecretRequired, "Admin verification failed")
}

func RoleRequired(role string) *Error {
	return New(http.StatusForbidden, CodeRoleRequired, "Insufficient permissions. Required role: "+role)
}

// Validation carries the full list of violated rules.
func Validation(violations []string) *Error {
	e := New(http.StatusBadRequest, CodeValidation, "Validation failed")
	e.Errors = violations
	return e
}

func InvalidID() *Error {
	return New(http.StatusBadRequest, CodeInvalidID, "Invalid product ID format")
}

func ProductNotFound() *Error {
	return New(http.StatusNotFound, CodeProductNotFound, "Product not found")
}

func Upload(reason string) *Error {
	return New(http.StatusBadRequest, CodeUploadError, reason)
}

func FileTooLarge(maxBytes int64) *Error {
	return New(http.StatusBadRequest, CodeFileTooLarge,
		fmt.Sprintf("File too large. Maximum size is %dMB.", maxBytes/(1024*1024)))
}

func TooManyFiles() *Error {
	return New(http.StatusBadRequest, CodeTooManyFiles, "Only one file is allowed.")
}

func MissingImage() *Error {
	return New(http.StatusBadRequest, CodeMissingImage, "Product image is required")
}

func CreationFailed(cause error) *Error {
	return New(http.StatusBadRequest, CodeCreationFailed, "Product creation failed").WithCause(cause)
}

func UpdateFailed(cause error) *Error {
	return New(http.StatusBadRequest, CodeUpdateFailed, "Product update failed").WithCause(cause)
}

func EmailExists() *Error {
	return New(http.StatusBadRequest, CodeEmailExists, "Email already exists")
}

func AdminExists() *Error {
	return New(http.StatusBadRequest, CodeAdminExists, "Admin user already exists")
}

func InvalidCredentials() *Error {
	return New(http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
}

func InvalidAdminSecret() *Error {
	return New(http.StatusForbidden, CodeInvalidAdminSecret, "Invalid admin secret")
}

func InvalidBody() *Error {
	return New(http.StatusBadRequest, CodeInvalidBody, "Invalid request body")
}

func RateLimited() *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
}

func Server(cause error) *Error {
	return New(http.StatusInternalServerError, CodeServerError, "Internal server error").WithCause(cause)
}

// From converts any error into an *Error.  Errors that are not part of the
// taxonomy become SERVER_ERROR.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Server(err)
}

// Body is the JSON envelope written for every failure.
type Body struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Code      string   `json:"code"`
	Timestamp string   `json:"timestamp"`
	Errors    []string `json:"errors,omitempty"`
	Debug     string   `json:"debug,omitempty"`
}

// Envelope renders e; the cause is exposed as debug only when debug is set.
func (e *Error) Envelope(debug bool) Body {
	b := Body{
		Success:   false,
		Message:   e.Message,
		Code:      e.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Errors:    e.Errors,
	}
	if debug && e.Cause != nil {
		b.Debug = e.Cause.Error()
	}
	return b
}

// Write sends err as a JSON error response.
func Write(c echo.Context, err error, debug bool) error {
	ae := From(err)
	return c.JSON(ae.Status, ae.Envelope(debug))
}

// HTTPErrorHandler replaces Echo's default handler so router-level failures
// (unknown route, wrong method, oversized body) share the same envelope.
func HTTPErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
			status, code := he.Code, CodeServerError
			switch {
			case he.Code == http.StatusNotFound:
				code = CodeRouteNotFound
			case he.Code == http.StatusRequestEntityTooLarge:
				status, code = http.StatusBadRequest, CodeFileTooLarge
			case he.Code < http.StatusInternalServerError:
				code = CodeInvalidBody
			}
			_ = c.JSON(status, New(status, code, msg).WithCause(he.Internal).Envelope(debug))
			return
		}
		_ = Write(c, err, debug)
	}
}
