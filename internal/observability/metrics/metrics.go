package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	boardsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_boards_created_total",
			Help: "Total number of boards created",
		},
	)

	cardsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_cards_created_total",
			Help: "Total number of cards created",
		},
	)

	cardsMovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_cards_moved_total",
			Help: "Total number of cards moved between lists",
		},
	)

	attachmentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_attachment_uploads_total",
			Help: "Attachment upload attempts by result",
		},
		[]string{"result"},
	)

	projectCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_project_cache_total",
			Help: "Project cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveBoardCreated increments the board creation counter.
func ObserveBoardCreated() {
	boardsCreatedTotal.Inc()
}

// ObserveCardCreated increments the card creation counter.
func ObserveCardCreated() {
	cardsCreatedTotal.Inc()
}

// ObserveCardMoved increments the card move counter.
func ObserveCardMoved() {
	cardsMovedTotal.Inc()
}

// ObserveAttachmentUpload records an upload attempt; result is
// "accepted" or "rejected".
func ObserveAttachmentUpload(result string) {
	attachmentUploadsTotal.WithLabelValues(result).Inc()
}

// ObserveProjectCache records a project cache lookup; result is "hit"
// or "miss".
func ObserveProjectCache(result string) {
	projectCacheTotal.WithLabelValues(result).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments every request with count and
// latency metrics. Uses the route pattern when available to keep
// label cardinality bounded.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		ObserveHTTPRequest(r.Method, path, sw.status, time.Since(start))
	})
}
