package ports

import (
	"context"
	"time"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error)
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	// ListByUser returns the user's subscriptions with Product populated.
	ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
	// ListAll returns every subscription with User and Product populated.
	// User records never include the password hash.
	ListAll(ctx context.Context) ([]*domain.Subscription, error)
	// ListEnded returns active subscriptions whose period ended before now.
	ListEnded(ctx context.Context, now time.Time) ([]*domain.Subscription, error)
	SetCancelAtPeriodEnd(ctx context.Context, id string, cancel bool) error
	SetStatus(ctx context.Context, id string, status domain.SubscriptionStatus) error
}
