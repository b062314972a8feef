// Package metrics counts what the interaction endpoints did, on top of the
// generic HTTP metrics in shared/middleware/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	shared_metrics "github.com/quillpress/quill/shared/middleware/metrics"
)

var (
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: shared_metrics.Namespace,
			Subsystem: "feed",
			Name:      "requests_total",
			Help:      "Infinite scroll requests by outcome",
		},
		[]string{"outcome"},
	)

	ToggleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: shared_metrics.Namespace,
			Subsystem: "toggle",
			Name:      "clicks_total",
			Help:      "Like and follow clicks by relation and result",
		},
		[]string{"relation", "result"},
	)

	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: shared_metrics.Namespace,
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Relayed form submissions by result",
		},
		[]string{"result"},
	)

	FlashShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: shared_metrics.Namespace,
			Subsystem: "flash",
			Name:      "messages_total",
			Help:      "Flash messages shown by kind",
		},
		[]string{"kind"},
	)
)

// Form submission results
const (
	FormConfirm  = "confirm"
	FormRedirect = "redirect"
	FormSuccess  = "success"
	FormRejected = "rejected"
	FormNetwork  = "network_error"
)

// Toggle results
const (
	ToggleOK       = "ok"
	ToggleFailed   = "failed"
	ToggleInFlight = "in_flight"
)
