package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// bootstrapPassword is the fixed initial secret of the bootstrap admin
// account. Operators are expected to change it after first login.
const bootstrapPassword = "FOTFAdmin1970!@!"

// EnsureBootstrapAdmin creates the reserved admin account if it does not
// exist yet. Idempotent and best-effort: failures are logged and reported but
// must not abort startup.
func EnsureBootstrapAdmin(ctx context.Context, repo ports.AccountRepository, logger zerolog.Logger) error {
	_, err := repo.FindByUsername(ctx, domain.BootstrapUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		logger.Error().Err(err).Msg("bootstrap admin lookup failed")
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrapPassword), bcryptCost)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap admin hash failed")
		return err
	}

	now := time.Now().UTC()
	_, err = repo.Create(ctx, &domain.Account{
		Username:     domain.BootstrapUsername,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent startup; the account exists.
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		logger.Error().Err(err).Msg("bootstrap admin creation failed")
		return err
	}

	logger.Info().Str("username", domain.BootstrapUsername).Msg("bootstrap admin created")
	return nil
}
