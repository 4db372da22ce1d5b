package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// DefaultTokenTTL matches the fixed 7-day validity window of issued tokens.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Verification failure modes. The HTTP boundary collapses all three into a
// single generic rejection; they stay distinct here for diagnostics.
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("invalid token signature")
)

// TokenService issues and verifies HS256-signed session tokens. The signing
// key is process-wide configuration and never derived from user input.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed token carrying the account's identity, handle and
// admin flag, expiring ttl from now.
func (s *TokenService) Issue(account *domain.Account) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"username": account.Username,
		"is_admin": account.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Rejections map
// to ErrTokenMalformed, ErrTokenExpired or ErrTokenSignature.
func (s *TokenService) Verify(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	switch {
	case err == nil && parsed.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenSignature
	default:
		return nil, ErrTokenMalformed
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	if sub == "" || username == "" {
		return nil, ErrTokenMalformed
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenMalformed
	}

	return &ports.TokenClaims{
		UserID:    sub,
		Username:  username,
		IsAdmin:   isAdmin,
		ExpiresAt: exp.Time,
	}, nil
}
