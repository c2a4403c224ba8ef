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

	// 积分发放相关指标
	PointsAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points granted, by source",
		},
		[]string{"source"},
	)

	AwardOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_award_outcomes_total",
			Help: "Award requests by outcome",
		},
		[]string{"source", "outcome"},
	)

	LevelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Number of awards that crossed a level threshold",
		},
	)
)

const (
	OutcomeGranted          = "granted"
	OutcomeAlreadyAttempted = "already_attempted"
	OutcomeRejected         = "rejected"
	OutcomeFailed           = "failed"
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PointsAwardedTotal)
	prometheus.MustRegister(AwardOutcomes)
	prometheus.MustRegister(LevelUpsTotal)
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
