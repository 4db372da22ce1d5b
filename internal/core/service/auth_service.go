package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fotf/subscription-system/internal/api/metrics"
	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// bcryptCost is the work factor applied to new password hashes.
const bcryptCost = 10

// AuthService implements registration and login against the account store.
type AuthService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
	logger zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates an account with a bcrypt-hashed secret. The reserved
// bootstrap handle always receives the admin flag; everyone else does not.
// The storage layer's unique index is the authoritative duplicate guard — the
// lookup here only short-circuits the common case.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      username == domain.BootstrapUsername,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.SignupsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("username", created.Username).Bool("is_admin", created.IsAdmin).Msg("account registered")
	return created, nil
}

// Login verifies the credentials and issues a session token. A missing
// account and a wrong password are reported identically so callers cannot
// enumerate handles.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Account, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("username", account.Username).Msg("login")
	return token, account, nil
}

// CurrentUser resolves the account behind a verified token subject.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}
