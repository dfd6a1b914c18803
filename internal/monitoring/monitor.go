package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"supplychain/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supplychain"

// Monitor collects and exposes metrics for the server
type Monitor struct {
	registry  *prometheus.Registry
	startTime time.Time

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	published       *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
	stockItems      *prometheus.GaugeVec
	stockValue      prometheus.Gauge
}

// NewMonitor creates a new monitoring instance with its own registry
func NewMonitor() *Monitor {
	m := &Monitor{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_messages_published_total",
			Help:      "Messages published per push topic.",
		}, []string{"topic"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_messages_dropped_total",
			Help:      "Messages dropped because a subscriber's buffer was full.",
		}, []string{"topic"}),
		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "push_subscribers",
			Help:      "Open websocket subscriptions per topic.",
		}, []string{"topic"}),
		stockItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_items",
			Help:      "Items per derived stock status, as of the last overview.",
		}, []string{"status"}),
		stockValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_stock_value",
			Help:      "Total stock value, as of the last overview.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.published,
		m.dropped,
		m.subscribers,
		m.stockItems,
		m.stockValue,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started.",
		}, func() float64 { return m.Uptime().Seconds() }),
	)
	return m
}

// Registry returns the registry every collector is registered on
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Uptime returns how long the monitor has been running
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Published counts a message published on topic
func (m *Monitor) Published(topic string) {
	m.published.WithLabelValues(topic).Inc()
}

// Dropped counts a message dropped for one subscriber of topic
func (m *Monitor) Dropped(topic string) {
	m.dropped.WithLabelValues(topic).Inc()
}

// Subscribers sets the number of open subscriptions on topic
func (m *Monitor) Subscribers(topic string, n int) {
	m.subscribers.WithLabelValues(topic).Set(float64(n))
}

// ObserveInventory records the stock counts of an overview
func (m *Monitor) ObserveInventory(s inventory.Summary) {
	m.stockItems.WithLabelValues(string(inventory.StatusInStock)).Set(float64(s.InStockCount))
	m.stockItems.WithLabelValues(string(inventory.StatusLowStock)).Set(float64(s.LowStockCount))
	m.stockItems.WithLabelValues(string(inventory.StatusOutOfStock)).Set(float64(s.OutOfStockCount))
	value, _ := s.TotalStockValue.Float64()
	m.stockValue.Set(value)
}
