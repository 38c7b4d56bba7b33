// Package metrics defines Prometheus metrics for the site: HTTP traffic,
// lead submissions and relays, and catalog reloads.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// route labels carry the chi pattern, never the raw path
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_http_requests_total",
		Help: "Total number of HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nexttrip_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	NotFound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_not_found_total",
		Help: "Total number of requests answered with the 404 page, by section",
	}, []string{"section"})
	Redirects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_redirects_total",
		Help: "Retired paths redirected from the redirect table, by status code",
	}, []string{"code"})

	LeadsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_leads_submitted_total",
		Help: "Lead form submissions by form (quick, booking) and outcome",
	}, []string{"form", "outcome"})
	LeadRelayFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_lead_relay_failures_total",
		Help: "Lead notifications that failed, by relay",
	}, []string{"relay"})
	BookingRedirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexttrip_booking_redirects_total",
		Help: "Completed booking forms redirected to the hosted form",
	})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_rate_limited_total",
		Help: "Requests rejected by the per-IP limiter, by route",
	}, []string{"route"})

	CatalogReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexttrip_catalog_reloads_total",
		Help: "Catalog reload attempts by result (ok, error)",
	}, []string{"result"})
	CatalogItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nexttrip_catalog_items",
		Help: "Number of catalog records currently served, by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(NotFound)
	prometheus.MustRegister(Redirects)
	prometheus.MustRegister(LeadsSubmitted)
	prometheus.MustRegister(LeadRelayFailures)
	prometheus.MustRegister(BookingRedirects)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(CatalogReloads)
	prometheus.MustRegister(CatalogItems)
}

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
