// Package metrics defines all custom Prometheus metrics for the subscription
// API. It is the single source of truth for metric names, labels, and help
// strings; metrics register with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "subscriptions"

// SignupsTotal counts registration attempts.
// Label:
//   - result: "ok" or "duplicate"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "rejected" (wrong password and unknown handle share a
//     single label value on purpose)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts tokens refused by the authentication gate.
// Label:
//   - reason: "missing", "malformed", "expired", "bad_signature"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"reason"},
)

// SubscriptionsCreatedTotal counts new subscriptions, by product name.
var SubscriptionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_created_total",
		Help:      "Total number of subscriptions created, by product.",
	},
	[]string{"product"},
)

// SubscriptionsRetiredTotal counts subscriptions retired by the expirer.
// Label:
//   - status: terminal status applied ("expired" or "canceled")
var SubscriptionsRetiredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_retired_total",
		Help:      "Total number of subscriptions retired at period end, by terminal status.",
	},
	[]string{"status"},
)
