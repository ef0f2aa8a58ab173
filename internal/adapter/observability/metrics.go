package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of intake attempts by outcome",
		},
		[]string{"outcome"},
	)
	SubmissionPagesHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submission_pages",
			Help:    "Distribution of page counts per recorded submission",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
		},
	)
	PagesSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eco_pages_saved_total",
			Help: "Cumulative pages saved across all recorded submissions",
		},
	)
	PageCountFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "page_count_fallbacks_total",
			Help: "Submissions whose page count fell back to the default",
		},
	)
)

// InitMetrics registers all collectors; call once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(SubmissionPagesHistogram)
	prometheus.MustRegister(PagesSavedTotal)
	prometheus.MustRegister(PageCountFallbacksTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// RecordSubmission tracks one successful intake.
func RecordSubmission(pages int, parsed bool) {
	SubmissionsTotal.WithLabelValues("recorded").Inc()
	SubmissionPagesHistogram.Observe(float64(pages))
	PagesSavedTotal.Add(float64(pages))
	if !parsed {
		PageCountFallbacksTotal.Inc()
	}
}

// RecordSubmissionFailure tracks one failed intake by stage.
func RecordSubmissionFailure(stage string) {
	SubmissionsTotal.WithLabelValues("failed_" + stage).Inc()
}
