package middleware

import (
	"errors"
	"strconv"
	"time"

	"community/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	contentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_operations_total",
			Help: "Total number of post and comment operations processed",
		},
		[]string{"operation", "status", "service"},
	)

	contentOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_operation_duration_seconds",
			Help:    "Duration of post and comment operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "service"},
	)

	contentErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_errors_total",
			Help: "Total number of content operation errors",
		},
		[]string{"operation", "error_type", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

func RecordContentOperation(operation, status, serviceName string, duration time.Duration, err error) {
	contentOperationsTotal.WithLabelValues(operation, status, serviceName).Inc()
	contentOperationDuration.WithLabelValues(operation, serviceName).Observe(duration.Seconds())

	if err != nil {
		errorType := "unknown"
		switch {
		case errors.Is(err, store.ErrValidation):
			errorType = "validation"
		case errors.Is(err, store.ErrAuth):
			errorType = "auth"
		case errors.Is(err, store.ErrNotFound):
			errorType = "not_found"
		case errors.Is(err, store.ErrStore):
			errorType = "store"
		}
		contentErrors.WithLabelValues(operation, errorType, serviceName).Inc()
	}
}
