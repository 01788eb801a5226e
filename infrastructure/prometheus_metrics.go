// infrastructure/prometheus_metrics.go
package infrastructure

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vitovidale/video-recognition-service/domain"
)

// PrometheusMetrics records pipeline and HTTP metrics.
type PrometheusMetrics struct {
	uploadAttempts      *prometheus.CounterVec
	uploads             *prometheus.CounterVec
	shortReferences     prometheus.Counter
	recognitions        *prometheus.CounterVec
	resolutions         *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		uploadAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_attempts_total",
			Help:      "Upload strategy attempts by strategy and result",
		}, []string{"strategy", "result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Completed uploads by strategy and error kind",
		}, []string{"strategy", "error_kind"}),
		shortReferences: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "short_references_total",
			Help:      "Successful uploads whose reference is short",
		}),
		recognitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognitions_total",
			Help:      "Recognition calls by result",
		}, []string{"result", "error_kind"}),
		resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_resolutions_total",
			Help:      "Capability lookups by capability and status",
		}, []string{"capability", "status"}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *PrometheusMetrics) ObserveUploadAttempt(strategy domain.StrategyKind, success bool) {
	m.uploadAttempts.WithLabelValues(string(strategy), resultLabel(success)).Inc()
}

func (m *PrometheusMetrics) ObserveUpload(outcome domain.UploadOutcome) {
	m.uploads.WithLabelValues(string(outcome.StrategyUsed), string(outcome.ErrorKind)).Inc()
	if outcome.Success && outcome.IsShortReference {
		m.shortReferences.Inc()
	}
}

func (m *PrometheusMetrics) ObserveRecognition(outcome domain.RecognitionOutcome) {
	m.recognitions.WithLabelValues(resultLabel(outcome.Success), string(outcome.ErrorKind)).Inc()
}

func (m *PrometheusMetrics) ObserveResolution(res domain.Resolution) {
	m.resolutions.WithLabelValues(string(res.Name), string(res.Status)).Inc()
}

// GinMiddleware records request counts and latencies by route.
func (m *PrometheusMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
