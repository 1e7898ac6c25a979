// Package metrics defines Prometheus metrics for the dispatch core,
// covering delivery outcomes, skips, and render failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MailDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailroom_deliveries_total",
		Help: "Total number of messages handed to a transport successfully",
	}, []string{"transport"})
	MailFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailroom_delivery_failures_total",
		Help: "Total number of delivery attempts that failed",
	}, []string{"transport"})
	DispatchSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailroom_dispatches_skipped_total",
		Help: "Total number of dispatches skipped because the recipient has no contact address",
	})
	RenderFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailroom_render_failures_total",
		Help: "Total number of template render failures",
	})
)

func init() {
	prometheus.MustRegister(MailDelivered, MailFailed, DispatchSkipped, RenderFailures)
}

// Handler returns the HTTP handler that serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
