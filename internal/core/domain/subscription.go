package domain

import (
	"errors"
	"time"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// BillingPeriod is the length of one subscription period.
const BillingPeriod = 30 * 24 * time.Hour

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrForbidden            = errors.New("access forbidden")
)

// Subscription links an account to a product for a billing period.
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	ProductID          string             `json:"product_id"`
	Product            *Product           `json:"product,omitempty"`
	User               *Account           `json:"user,omitempty"`
	DiscordUsername    string             `json:"discord_username"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Ended reports whether the current period has passed at instant now.
func (s *Subscription) Ended(now time.Time) bool {
	return s.Status == SubscriptionActive && now.After(s.CurrentPeriodEnd)
}
