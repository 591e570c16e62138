package obs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	appInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "audiosync",
			Subsystem: "app",
			Name:      "info",
			Help:      "Static app info for deployment verification.",
		},
		[]string{"service", "version"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audiosync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "audiosync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	jobEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audiosync",
			Subsystem: "jobs",
			Name:      "events_total",
			Help:      "Job lifecycle events by kind and result.",
		},
		[]string{"event", "result"},
	)
	uploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "audiosync",
			Subsystem: "jobs",
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(appInfo, httpRequestsTotal, httpRequestDuration, jobEventsTotal, uploadBytes)
}

func SetAppInfo(service string) {
	ver := strings.TrimSpace(os.Getenv("APP_VERSION"))
	if ver == "" {
		ver = "dev"
	}
	appInfo.WithLabelValues(service, ver).Set(1)
}

// GinMetrics records request count and latency. The route label is gin's
// matched pattern, so job ids never reach the label set.
func GinMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordJobEvent counts one lifecycle event such as "created", "ready",
// "failed", "paid" or "download".
func RecordJobEvent(event string, err error) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	jobEventsTotal.WithLabelValues(event, res).Inc()
}

func RecordUpload(size int64) {
	uploadBytes.Observe(float64(size))
}
