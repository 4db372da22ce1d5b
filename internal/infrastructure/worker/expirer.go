package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotf/subscription-system/internal/core/ports"
)

const defaultInterval = time.Hour

// Expirer periodically retires subscriptions whose billing period has ended.
// It runs as a single goroutine stopped by context cancellation.
type Expirer struct {
	service  ports.SubscriptionService
	interval time.Duration
	log      zerolog.Logger
}

// NewExpirer creates an Expirer sweeping every interval.
// If interval <= 0, defaultInterval is used.
func NewExpirer(service ports.SubscriptionService, interval time.Duration, log zerolog.Logger) *Expirer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Expirer{service: service, interval: interval, log: log}
}

// Start launches the sweep loop. It returns immediately; the loop stops when
// ctx is cancelled. One sweep runs right away so restarts do not delay
// retirement by a full interval.
func (e *Expirer) Start(ctx context.Context) {
	go func() {
		e.sweep(ctx)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.sweep(ctx)
			}
		}
	}()
}

func (e *Expirer) sweep(ctx context.Context) {
	n, err := e.service.ExpireEnded(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("subscription expiry sweep failed")
		return
	}
	if n > 0 {
		e.log.Info().Int("retired", n).Msg("subscription expiry sweep")
	}
}
