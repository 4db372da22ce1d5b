package ports

import (
	"context"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// CreateSubscriptionInput carries the data needed to start a subscription.
type CreateSubscriptionInput struct {
	UserID          string
	ProductID       string
	DiscordUsername string
}

type SubscriptionService interface {
	Create(ctx context.Context, input CreateSubscriptionInput) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
	ListAll(ctx context.Context) ([]*domain.Subscription, error)
	// Cancel marks the subscription to lapse at the end of the current period.
	// Only the owning user may cancel.
	Cancel(ctx context.Context, userID, subscriptionID string) (*domain.Subscription, error)
	// ExpireEnded retires subscriptions whose period has passed, returning the
	// number of records updated.
	ExpireEnded(ctx context.Context) (int, error)
}
