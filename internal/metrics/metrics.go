// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staffdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	uploadsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_uploads_processed_total",
		Help: "Uploaded files by kind and result",
	}, []string{"kind", "result"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staffdesk_rate_limited_requests_total",
		Help: "Requests rejected by the per-IP rate limiter",
	})

	reaperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_reaper_runs_total",
		Help: "Orphan upload reaper runs by result",
	}, []string{"result"})

	reaperDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staffdesk_reaper_deleted_uploads_total",
		Help: "Orphan uploads removed by the reaper",
	})
)

// ObserveHTTPRequest записывает метрики одного HTTP-запроса.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveUpload учитывает обработанный файл. kind: image или document; result: success или error.
func ObserveUpload(kind, result string) {
	uploadsProcessed.WithLabelValues(kind, result).Inc()
}

// ObserveRateLimited учитывает отклонённый лимитером запрос.
func ObserveRateLimited() {
	rateLimited.Inc()
}

// ObserveReaper учитывает запуск очистки и число удалённых записей.
func ObserveReaper(result string, deleted int) {
	reaperRuns.WithLabelValues(result).Inc()
	if deleted > 0 {
		reaperDeleted.Add(float64(deleted))
	}
}
