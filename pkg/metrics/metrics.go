package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 管理 API 调用延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayconsole_api_request_duration_seconds",
			Help:    "Admin API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path", "status"},
	)

	// 开发代理转发延迟（秒）
	ProxyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayconsole_proxy_request_duration_seconds",
			Help:    "Dev proxy forwarded request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "status"},
	)

	// 开发代理上游失败计数
	ProxyUpstreamErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relayconsole_proxy_upstream_errors_total",
			Help: "Total number of dev proxy requests that failed to reach the backend",
		},
	)
)

// RecordAPIRequestDuration 记录管理 API 调用延迟
func RecordAPIRequestDuration(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordProxyRequestDuration 记录代理转发延迟
func RecordProxyRequestDuration(method, status string, duration time.Duration) {
	ProxyRequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// IncrementProxyUpstreamErrors 增加上游失败计数
func IncrementProxyUpstreamErrors() {
	ProxyUpstreamErrors.Inc()
}
