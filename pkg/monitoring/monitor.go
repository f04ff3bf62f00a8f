package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// QuizGenerations 按题目来源 (ai / fallback) 统计生成次数
	QuizGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generation_total",
			Help: "Quiz generations by question source",
		},
		[]string{"source"},
	)

	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_provider_failures_total",
			Help: "Provider failures that triggered fallback content, by reason",
		},
		[]string{"reason"},
	)

	ProviderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_provider_request_duration_seconds",
			Help:    "Duration of completion requests to the provider",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	SkippedQuestions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_questions_skipped_total",
			Help: "Provider question items dropped during validation",
		},
	)

	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_evaluations_total",
			Help: "Answer evaluations by kind (stored / adhoc)",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizGenerations,
			ProviderFailures,
			ProviderLatency,
			SkippedQuestions,
			Evaluations,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
