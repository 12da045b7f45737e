package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	IntentRequests  *prometheus.CounterVec
	IntentDuration  *prometheus.HistogramVec
	AnalyticsEvents *prometheus.CounterVec
	DraftOrders     *prometheus.CounterVec
	WANotifications *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			IntentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_intent_requests_total",
				Help:      "Total order intent requests by click context and outcome.",
			}, []string{"context", "status"}),
			IntentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "order_intent_duration_seconds",
				Help:      "Latency distribution for order intent processing.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"status"}),
			AnalyticsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analytics_events_total",
				Help:      "Total analytics events recorded by type.",
			}, []string{"type"}),
			DraftOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "draft_orders_total",
				Help:      "Total draft orders created by outcome.",
			}, []string{"status"}),
			WANotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_notifications_total",
				Help:      "Total operator WhatsApp notifications by outcome.",
			}, []string{"status"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.IntentRequests,
			metricsInstance.IntentDuration,
			metricsInstance.AnalyticsEvents,
			metricsInstance.DraftOrders,
			metricsInstance.WANotifications,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
