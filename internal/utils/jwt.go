package utils // package utils provides helpers for session tokens and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

// Verification failures.  Parse returns exactly one of these so callers can
// map them to response codes without inspecting jwt internals.
var (
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenSignature       = errors.New("token signature invalid")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrTokenInvalid         = errors.New("token invalid")
)

// Claims is the payload of a session token.  The identity fields sit next to
// the registered claims (iss, aud, iat, exp, jti).
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionToken is a signed token together with the values a caller may want
// without decoding it again.
type SessionToken struct {
	Token     string    // the serialized JWT string
	ID        string    // jti, used for revocation
	IssuedAt  time.Time // UTC
	ExpiresAt time.Time // UTC
}

// TokenSigner issues and verifies HS256 session tokens for one issuer and
// audience pair.
type TokenSigner struct {
	secret   []byte
	issuer   string
	audience string
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

// NewTokenSigner builds a signer from the application config.
func NewTokenSigner(cfg config.Config) *TokenSigner {
	return &TokenSigner{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.TokenIssuer,
		audience: cfg.TokenAudience,
		userTTL:  cfg.UserTokenTTL,
		adminTTL: cfg.AdminTokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	cp := *s
	cp.now = now
	return &cp
}

// GenerateToken signs a token for u.  Admin tokens use the shorter admin
// lifetime.
func (s *TokenSigner) GenerateToken(u *model.User, isAdmin bool) (SessionToken, error) {
	role, ttl := model.RoleUser, s.userTTL
	if isAdmin {
		role, ttl = model.RoleAdmin, s.adminTTL
	}
	iat := s.now().Truncate(time.Second)
	exp := iat.Add(ttl)
	id := uuid.NewString()

	claims := Claims{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		Name:   u.Name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   u.ID.Hex(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: id, IssuedAt: iat, ExpiresAt: exp}, nil
}

// Parse verifies raw and returns its claims.  An exp in the past always
// yields ErrTokenExpired, even when the signature does not verify.
func (s *TokenSigner) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnsupportedAlgorithm
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil && tok.Valid {
		return claims, nil
	}
	return nil, s.classify(tok, claims, err)
}

func (s *TokenSigner) classify(tok *jwt.Token, claims *Claims, err error) error {
	if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrUnsupportedAlgorithm
	case tok != nil && tok.Method != nil && tok.Method.Alg() != jwt.SigningMethodHS256.Alg():
		return ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenUnverifiable) && unknownAlg(tok):
		return ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenInvalid
	}
}

// unknownAlg reports whether the header names an algorithm jwt does not
// register at all (e.g. "XS999").
func unknownAlg(tok *jwt.Token) bool {
	if tok == nil {
		return false
	}
	alg, ok := tok.Header["alg"].(string)
	return ok && alg != "" && alg != jwt.SigningMethodHS256.Alg()
}
