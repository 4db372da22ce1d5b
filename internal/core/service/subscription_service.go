package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotf/subscription-system/internal/api/metrics"
	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

type subscriptionService struct {
	repo     ports.SubscriptionRepository
	products ports.ProductRepository
	log      zerolog.Logger
}

// NewSubscriptionService returns a SubscriptionService implementation.
func NewSubscriptionService(repo ports.SubscriptionRepository, products ports.ProductRepository, log zerolog.Logger) ports.SubscriptionService {
	return &subscriptionService{repo: repo, products: products, log: log}
}

// Create starts an active subscription for one billing period.
func (s *subscriptionService) Create(ctx context.Context, input ports.CreateSubscriptionInput) (*domain.Subscription, error) {
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		UserID:             input.UserID,
		ProductID:          product.ID,
		DiscordUsername:    input.DiscordUsername,
		Status:             domain.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(domain.BillingPeriod),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("subscription creation failed")
		return nil, err
	}
	created.Product = product

	metrics.SubscriptionsCreatedTotal.WithLabelValues(product.Name).Inc()
	s.log.Info().
		Str("subscription_id", created.ID).
		Str("user_id", created.UserID).
		Str("product_id", created.ProductID).
		Msg("subscription created")
	return created, nil
}

func (s *subscriptionService) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *subscriptionService) ListAll(ctx context.Context) ([]*domain.Subscription, error) {
	return s.repo.ListAll(ctx)
}

// Cancel flags the subscription to lapse at period end. Only the owner may
// cancel; anyone else gets the same not-found answer as a missing record.
func (s *subscriptionService) Cancel(ctx context.Context, userID, subscriptionID string) (*domain.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrSubscriptionNotFound
	}

	if err := s.repo.SetCancelAtPeriodEnd(ctx, sub.ID, true); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	sub.CancelAtPeriodEnd = true

	s.log.Info().Str("subscription_id", sub.ID).Str("user_id", userID).Msg("subscription set to cancel at period end")
	return sub, nil
}

// ExpireEnded retires active subscriptions whose period has passed. Ones
// flagged cancel-at-period-end become canceled, the rest expired.
func (s *subscriptionService) ExpireEnded(ctx context.Context) (int, error) {
	ended, err := s.repo.ListEnded(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, sub := range ended {
		status := domain.SubscriptionExpired
		if sub.CancelAtPeriodEnd {
			status = domain.SubscriptionCanceled
		}
		if err := s.repo.SetStatus(ctx, sub.ID, status); err != nil {
			s.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("subscription retirement failed")
			continue
		}
		metrics.SubscriptionsRetiredTotal.WithLabelValues(string(status)).Inc()
		updated++
	}
	return updated, nil
}
