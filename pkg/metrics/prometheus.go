// Package metrics exposes Prometheus instrumentation for the routing
// engine. Metrics are registered once on a package registry and updated
// through the record helpers below so call sites stay one-liners.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	issuesSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_issues_submitted_total",
		Help: "Issues accepted by SubmitIssue, labeled by predicted category.",
	}, []string{"category"})

	issueTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_issue_transitions_total",
		Help: "Successful lifecycle transitions, labeled by target state.",
	}, []string{"to"})

	transitionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_transitions_rejected_total",
		Help: "Transitions rejected by a guard, labeled by reason.",
	}, []string{"reason"})

	signalIncrements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_signal_increments_total",
		Help: "Signal counter increments, labeled by kind.",
	}, []string{"kind"})

	activityDuplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_activity_duplicates_total",
		Help: "Activity events dropped as duplicates.",
	})

	activityEnqueueErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_activity_enqueue_errors_total",
		Help: "Activity events rejected by queue backpressure or closure.",
	})

	rankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_ranking_duration_seconds",
		Help:    "Time spent snapshotting and ranking a category roster.",
		Buckets: prometheus.DefBuckets,
	})

	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "triage_activity_queue_depth",
		Help: "Events currently waiting in the activity queue.",
	})

	workerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "triage_worker_count",
		Help: "Workers consuming the activity queue.",
	})

	trackedDevelopers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "triage_tracked_developers",
		Help: "Developers known to the roster.",
	})

	trackedIssues = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "triage_tracked_issues",
		Help: "Issues held by the registry across all states.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_http_requests_total",
		Help: "HTTP requests served, labeled by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "triage_http_request_duration_seconds",
		Help:    "HTTP request latency, labeled by endpoint and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
)

func init() { //nolint:gochecknoinits // one-time registration of package metrics
	registry.MustRegister(
		issuesSubmitted,
		issueTransitions,
		transitionsRejected,
		signalIncrements,
		activityDuplicates,
		activityEnqueueErrors,
		rankingDuration,
		queueDepth,
		workerCount,
		trackedDevelopers,
		trackedIssues,
		httpRequests,
		httpDuration,
	)
}

// Registry returns the package registry for handler wiring and tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordIssueSubmitted counts an accepted submission.
func RecordIssueSubmitted(category string) {
	issuesSubmitted.WithLabelValues(category).Inc()
}

// RecordTransition counts a successful lifecycle transition.
func RecordTransition(to string) {
	issueTransitions.WithLabelValues(to).Inc()
}

// RecordTransitionRejected counts a guard rejection.
func RecordTransitionRejected(reason string) {
	transitionsRejected.WithLabelValues(reason).Inc()
}

// RecordSignalIncrement counts a signal counter increment.
func RecordSignalIncrement(kind string) {
	signalIncrements.WithLabelValues(kind).Inc()
}

// RecordActivityDuplicate counts a deduplicated activity event.
func RecordActivityDuplicate() {
	activityDuplicates.Inc()
}

// RecordActivityEnqueueError counts a rejected activity enqueue.
func RecordActivityEnqueueError() {
	activityEnqueueErrors.Inc()
}

// ObserveRankingDuration records one ranking pass.
func ObserveRankingDuration(seconds float64) {
	rankingDuration.Observe(seconds)
}

// UpdateQueueDepth sets the current activity queue depth.
func UpdateQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(n int) {
	workerCount.Set(float64(n))
}

// UpdateTrackedDevelopers sets the roster size.
func UpdateTrackedDevelopers(n int) {
	trackedDevelopers.Set(float64(n))
}

// UpdateTrackedIssues sets the registry size.
func UpdateTrackedIssues(n int) {
	trackedIssues.Set(float64(n))
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPDuration records one request's latency.
func ObserveHTTPDuration(endpoint, method string, seconds float64) {
	httpDuration.WithLabelValues(endpoint, method).Observe(seconds)
}
