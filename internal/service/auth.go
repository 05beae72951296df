package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

// UserStore is the credential persistence the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// TokenRevoker blocks a token id until it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, exp time.Time) error
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,min=6,pwbytes"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required"`
}

type InitAdminInput struct {
	Secret   string `json:"secret"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,min=6,pwbytes"`
}

var authMessages = messages{
	"Name.required":     "Name is required",
	"Name.max":          "Name cannot exceed 100 characters",
	"Email.required":    "Email is required",
	"Email.emailaddr":   "Please provide a valid email",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters long",
	"Password.pwbytes":  "Password cannot exceed 72 bytes",
	"Phone.phone":       "Please provide a valid phone number",
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	Token string
	User  model.PublicUser
}

// AuthService implements signup, login, admin bootstrap and logout.
type AuthService struct {
	users       UserStore
	tokens      *utils.TokenSigner
	revoker     TokenRevoker
	validate    *Validator
	adminSecret string
	userCost    int
	adminCost   int
	timeout     time.Duration
	log         *zerolog.Logger
}

// NewAuthService wires the auth flows.  revoker may be nil, in which case
// logout is acknowledged but tokens stay valid until they expire.
func NewAuthService(cfg config.Config, users UserStore, tokens *utils.TokenSigner, revoker TokenRevoker, v *Validator, log *zerolog.Logger) *AuthService {
	timeout := cfg.DBTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		revoker:     revoker,
		validate:    v,
		adminSecret: cfg.AdminSecret,
		userCost:    cfg.BcryptCost,
		adminCost:   cfg.AdminBcrypt,
		timeout:     timeout,
		log:         log,
	}
}

// Signup creates a regular user and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in, authMessages); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.userCost)
	if err != nil {
		return nil, apperror.Server(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Phone: in.Phone}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperror.EmailExists()
		}
		return nil, apperror.Server(err)
	}
	return s.issue(u)
}

// Login checks credentials.  Unknown emails and wrong passwords fail the
// same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in, authMessages); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, apperror.Server(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, apperror.InvalidCredentials()
	}
	return s.issue(u)
}

// InitAdmin creates an admin account when the bootstrap secret matches.
func (s *AuthService) InitAdmin(ctx context.Context, in InitAdminInput) (*model.PublicUser, error) {
	if subtle.ConstantTimeCompare([]byte(in.Secret), []byte(s.adminSecret)) != 1 {
		return nil, apperror.InvalidAdminSecret()
	}
	in.Email = repository.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in, authMessages); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing.IsAdmin:
		return nil, apperror.AdminExists()
	case err == nil:
		return nil, apperror.EmailExists()
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, apperror.Server(err)
	}

	hash, err := utils.HashPassword(in.Password, s.adminCost)
	if err != nil {
		return nil, apperror.Server(err)
	}
	u := &model.User{Name: "Admin", Email: in.Email, PasswordHash: hash, IsAdmin: true}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperror.EmailExists()
		}
		return nil, apperror.Server(err)
	}
	s.log.Info().Str("user_id", u.ID.Hex()).Str("email", u.Email).Msg("admin user created")
	pub := u.Public()
	return &pub, nil
}

// Me returns the stored profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.PublicUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.InvalidToken()
		}
		return nil, apperror.Server(err)
	}
	pub := u.Public()
	return &pub, nil
}

// Logout revokes the token id until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenID string, exp time.Time) error {
	if s.revoker == nil {
		s.log.Debug().Str("jti", tokenID).Msg("logout without revocation store")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.revoker.Revoke(ctx, tokenID, exp); err != nil {
		return apperror.Server(err)
	}
	return nil
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	tok, err := s.tokens.GenerateToken(u, u.IsAdmin)
	if err != nil {
		return nil, apperror.Server(err)
	}
	return &AuthResult{Token: tok.Token, User: u.Public()}, nil
}
