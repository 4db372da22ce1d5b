package ports

import (
	"context"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// AuthService implements the credential store operations: registration with
// one-way hashing and login with enumeration-resistant verification.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	// Login returns a signed session token and the account on success. Unknown
	// handle and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
	CurrentUser(ctx context.Context, id string) (*domain.Account, error)
}
