package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisory_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advisory_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ViewsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisory_views_resolved_total",
		Help: "Views that reached the result phase, by page.",
	}, []string{"page"})

	SoilHealthScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisory_soil_health_score",
		Help:    "Overall soil health scores produced by the evaluator.",
		Buckets: []float64{20, 40, 50, 60, 70, 80, 90, 100},
	})

	ChatIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisory_chat_intents_total",
		Help: "Classified chat intents.",
	}, []string{"intent"})

	FallbacksUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisory_fallbacks_total",
		Help: "Times an optional integration failed and static content was served instead.",
	}, []string{"integration"})
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
