package ports

import (
	"time"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	UserID    string
	Username  string
	IsAdmin   bool
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, time-limited session tokens.
// Tokens are self-contained; the server keeps no session state and performs
// no revocation bookkeeping.
type TokenService interface {
	Issue(account *domain.Account) (string, error)
	Verify(token string) (*TokenClaims, error)
}
