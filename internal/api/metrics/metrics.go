// Package metrics defines and registers all custom Prometheus metrics for the
// catalog service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: the registered route pattern (e.g. "/products/:id"), never the raw path
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from first byte to response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "route"},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductsCreatedTotal counts products inserted through the API.
var ProductsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created.",
	},
)

// VotesTotal counts vote attempts.
// Label:
//   - result: "recorded", "already_voted", "not_found" or "error"
var VotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Total number of vote attempts, labelled by result.",
	},
	[]string{"result"},
)

// ProductModerationTotal counts successful moderation updates.
// Label:
//   - action: "accept", "reject", "feature" or "report"
var ProductModerationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_moderation_total",
		Help:      "Total number of moderation updates applied, by action.",
	},
	[]string{"action"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts registration calls.
// Label:
//   - result: "created" or "exists"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registration calls, labelled by result (created/exists).",
	},
	[]string{"result"},
)
