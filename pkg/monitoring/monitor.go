package monitoring

import (
	"strconv"
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

	// EvaluationAttempts 按结果分类的 AI 评分尝试次数
	// outcome: ok / schema_violation / backend_error
	EvaluationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_attempts_total",
			Help: "AI scoring attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EvaluationFailures 重试耗尽后的终态失败次数
	EvaluationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_failures_total",
			Help: "AI scoring requests that exhausted all retries",
		},
	)

	// SubmissionCounter 按最终状态统计的提交数
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Submissions by final status",
		},
		[]string{"status"},
	)

	// RankUpCounter 升段事件数
	RankUpCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_ups_total",
			Help: "Rank promotions triggered by passing submissions",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EvaluationAttempts)
	prometheus.MustRegister(EvaluationFailures)
	prometheus.MustRegister(SubmissionCounter)
	prometheus.MustRegister(RankUpCounter)
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
