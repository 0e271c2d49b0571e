package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics 店面服务指标集合
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPLatencyMS *prometheus.HistogramVec
	BackendCalls  *prometheus.CounterVec
	BackendMS     *prometheus.HistogramVec
	CartMutations *prometheus.CounterVec
	OrdersSubmit  *prometheus.CounterVec
	Sessions      prometheus.Gauge
}

// New 创建独立注册表的指标集合
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		HTTPLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Calls to the backend API by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BackendMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_ms",
			Help:      "Backend API call latency in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 12000},
		}, []string{"operation"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"operation"}),
		OrdersSubmit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Checkout submissions by result.",
		}, []string{"result"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held in memory.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPLatencyMS,
		m.BackendCalls,
		m.BackendMS,
		m.CartMutations,
		m.OrdersSubmit,
		m.Sessions,
	)
	return m
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(handler string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.HTTPLatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

// ObserveBackend 记录一次后端调用
func (m *Metrics) ObserveBackend(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(operation, outcome).Inc()
	m.BackendMS.WithLabelValues(operation).Observe(float64(elapsed.Milliseconds()))
}

// IncCartMutation 记录购物车变更
func (m *Metrics) IncCartMutation(operation string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(operation).Inc()
}

// IncOrderSubmit 记录结算提交结果
func (m *Metrics) IncOrderSubmit(result string) {
	if m == nil {
		return
	}
	m.OrdersSubmit.WithLabelValues(result).Inc()
}

// SetSessions 更新内存会话数
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}
