package ports

import (
	"context"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
//
// Create must rely on a storage-level uniqueness guarantee for the username
// (unique index); any application-side existence check is a fast path only.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// SetAdmin updates the admin flag. Role changes take effect on the
	// subject's next admin-gated request, valid tokens notwithstanding.
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}
