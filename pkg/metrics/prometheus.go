// Package metrics provides Prometheus metrics for the vouch reputation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger intake.
	checkinsApplied    prometheus.Counter
	checkinsSkipped    prometheus.Counter
	checkinsDuplicate  prometheus.Counter
	snapGrants         prometheus.Counter
	batchSize          prometheus.Histogram
	auditActions       *prometheus.CounterVec
	recomputeDuration  prometheus.Histogram
	trustCalcDuration  prometheus.Histogram
	ledgerEntries      prometheus.Gauge
	trackedProfiles    *prometheus.GaugeVec
	leaderboardUpdates prometheus.Counter

	// Intake queue and apply workers.
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	queueDequeues      prometheus.Counter
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter
	applyDuration      prometheus.Histogram

	// HTTP surface.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance backed by a custom registry, so the
// default Go collectors never mix into the service's scrape surface.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics are initialized once per process
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all instruments.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vouch",
		subsystem:        "reputation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	auto := promauto.With(m.registry)

	m.checkinsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "checkins_applied_total",
		Help: "Checkins applied to the ledger (inserts and idempotent updates)",
	})
	m.checkinsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "checkins_skipped_total",
		Help: "Checkins rejected by authorization or link preconditions",
	})
	m.checkinsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "checkins_duplicate_total",
		Help: "Intake submissions dropped by the submission-id dedupe cache",
	})
	m.snapGrants = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snap_grants_total",
		Help: "One-shot SNAP badge grants applied",
	})
	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "checkin_batch_size",
		Help:    "Item count per batch submission",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})
	m.auditActions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "audit_actions_total",
		Help: "Audit status changes applied to ledger entries",
	}, []string{"status"})
	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "progress_recompute_duration_milliseconds",
		Help:    "Full progress rebuild duration in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.trustCalcDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "trust_calc_duration_milliseconds",
		Help:    "Trust rating computation duration in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.ledgerEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ledger_entries",
		Help: "Current number of ledger entries",
	})
	m.trackedProfiles = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tracked_profiles",
		Help: "Profiles present on the trust leaderboard",
	}, []string{"role"})
	m.leaderboardUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leaderboard_updates_total",
		Help: "Trust leaderboard refreshes",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Current intake queue depth",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured intake queue capacity",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Intake queue depth as a fraction of capacity",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Submissions accepted by the intake queue",
	})
	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Submissions the intake queue refused",
	}, []string{"reason"})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Submissions handed to apply workers",
	})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Running apply workers",
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Apply worker failures",
	})
	m.applyDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "apply_duration_milliseconds",
		Help:    "Worker submission apply duration in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Allocated heap bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutine_count",
		Help: "Number of goroutines",
	})
}

// RecordCheckinApplied increments the applied checkins counter.
func RecordCheckinApplied() { globalManager.checkinsApplied.Inc() }

// RecordCheckinSkipped increments the skipped checkins counter.
func RecordCheckinSkipped() { globalManager.checkinsSkipped.Inc() }

// RecordCheckinDuplicate increments the intake duplicate counter.
func RecordCheckinDuplicate() { globalManager.checkinsDuplicate.Inc() }

// RecordSnapGrant increments the SNAP grant counter.
func RecordSnapGrant() { globalManager.snapGrants.Inc() }

// RecordBatchSize observes the item count of a batch submission.
func RecordBatchSize(n int) { globalManager.batchSize.Observe(float64(n)) }

// RecordAuditAction counts an audit status change.
func RecordAuditAction(status string) { globalManager.auditActions.WithLabelValues(status).Inc() }

// RecordRecomputeDuration observes a full progress rebuild duration.
func RecordRecomputeDuration(ms float64) { globalManager.recomputeDuration.Observe(ms) }

// RecordTrustCalcDuration observes a trust rating computation duration.
func RecordTrustCalcDuration(ms float64) { globalManager.trustCalcDuration.Observe(ms) }

// UpdateLedgerEntries sets the current ledger size gauge.
func UpdateLedgerEntries(n int) { globalManager.ledgerEntries.Set(float64(n)) }

// UpdateTrackedProfiles sets the leaderboard population gauge for a role.
func UpdateTrackedProfiles(role string, n int) {
	globalManager.trackedProfiles.WithLabelValues(role).Set(float64(n))
}

// RecordLeaderboardUpdate counts a trust leaderboard refresh.
func RecordLeaderboardUpdate() { globalManager.leaderboardUpdates.Inc() }

// UpdateQueueSize sets the intake queue depth gauge.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the intake queue capacity gauge.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the intake queue utilization gauge.
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }

// RecordQueueEnqueue counts an accepted submission.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueEnqueueError counts a refused submission by reason.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordQueueDequeue counts a submission handed to a worker.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// UpdateWorkerCount sets the running worker gauge.
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }

// RecordWorkerError counts an apply worker failure.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordApplyDuration observes a worker apply duration.
func RecordApplyDuration(ms float64) { globalManager.applyDuration.Observe(ms) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutineCount.Set(float64(n)) }

// GetRegistry returns the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
