package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faktura_scheduler_job_runs_total",
		Help: "Number of scheduler job executions.",
	}, []string{"job"})

	jobErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faktura_scheduler_job_errors_total",
		Help: "Number of scheduler job executions that returned an error.",
	}, []string{"job"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faktura_scheduler_job_duration_seconds",
		Help:    "Scheduler job execution duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	remindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faktura_reminders_sent_total",
		Help: "Number of payment reminders sent.",
	}, []string{"org"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faktura_http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faktura_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

func IncJobRun(job string)      { jobRuns.WithLabelValues(job).Inc() }
func IncJobError(job string)    { jobErrors.WithLabelValues(job).Inc() }
func IncRemindersSent(org string, n int) {
	remindersSent.WithLabelValues(org).Add(float64(n))
}

func ObserveJobDuration(job string, d time.Duration) {
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
