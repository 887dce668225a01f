// Package metrics collects Prometheus metrics for downloads, deliveries and the access gate.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records bot activity.
type Collector struct {
	requests         *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadDuration prometheus.Histogram
	deliveries       *prometheus.CounterVec
	gateDenials      prometheus.Counter
	rateLimited      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xvidbot_requests_total",
			Help: "Link requests by kind (single, thread, invalid).",
		}, []string{"kind"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xvidbot_downloads_total",
			Help: "Downloads by quality and result.",
		}, []string{"quality", "result"}),
		downloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xvidbot_download_duration_seconds",
			Help:    "Time spent in the extractor per item.",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xvidbot_deliveries_total",
			Help: "Video uploads to the chat by result.",
		}, []string{"result"}),
		gateDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xvidbot_gate_denials_total",
			Help: "Requests refused by the channel membership gate.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xvidbot_rate_limited_total",
			Help: "Requests refused by the per-user rate limit.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.downloads,
		c.downloadDuration,
		c.deliveries,
		c.gateDenials,
		c.rateLimited,
	)
	return c
}

// RecordRequest counts an incoming link request.
func (c *Collector) RecordRequest(kind string) {
	c.requests.WithLabelValues(kind).Inc()
}

// RecordDownload counts one extractor run and observes its duration.
func (c *Collector) RecordDownload(quality string, d time.Duration, err error) {
	c.downloads.WithLabelValues(quality, result(err)).Inc()
	c.downloadDuration.Observe(d.Seconds())
}

// RecordDelivery counts one upload attempt.
func (c *Collector) RecordDelivery(err error) {
	c.deliveries.WithLabelValues(result(err)).Inc()
}

// RecordGateDenial counts a refused gated request.
func (c *Collector) RecordGateDenial() {
	c.gateDenials.Inc()
}

// RecordRateLimited counts a throttled request.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
