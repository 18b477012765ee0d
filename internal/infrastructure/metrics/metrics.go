package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks API requests by route pattern and status code
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnskitchen_http_requests_total",
		Help: "Total number of API requests processed",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks API request processing time
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dnskitchen_http_request_duration_seconds",
		Help:    "Histogram of API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RecordConflicts counts record writes rejected by the CNAME exclusivity rule
	RecordConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnskitchen_record_conflicts_total",
		Help: "Total number of record writes rejected for conflicting types",
	}, []string{"type"})

	// ReconcileRuns counts reconciliation passes by outcome
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnskitchen_reconcile_runs_total",
		Help: "Total number of domain activation passes",
	}, []string{"result"})

	// DomainsActivated counts PENDING to ACTIVE transitions
	DomainsActivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnskitchen_domains_activated_total",
		Help: "Total number of domains promoted to ACTIVE",
	})

	// PendingDomains is the number of PENDING domains seen by the last pass
	PendingDomains = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dnskitchen_pending_domains",
		Help: "Number of domains awaiting delegation",
	})

	// LookupFailures counts failed NS lookups
	LookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnskitchen_ns_lookup_failures_total",
		Help: "Total number of failed nameserver lookups",
	})

	// LookupDuration tracks NS lookup latency
	LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dnskitchen_ns_lookup_duration_seconds",
		Help:    "Histogram of nameserver lookup duration",
		Buckets: prometheus.DefBuckets,
	})

	// ACMEOperations counts webhook calls by action and result
	ACMEOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnskitchen_acme_operations_total",
		Help: "Total number of ACME webhook operations",
	}, []string{"action", "result"})

	// APIKeyCache tracks API key cache hits and misses
	APIKeyCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnskitchen_api_key_cache_total",
		Help: "Total number of API key cache hits and misses",
	}, []string{"result"})
)
