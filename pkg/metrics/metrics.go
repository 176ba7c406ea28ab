// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	DonationsTotal     prometheus.Counter
	DonationsCompleted prometheus.Counter
	DonationsFailed    prometheus.Counter
	DonationsRefunded  prometheus.Counter
	PaymentGatewayErrs prometheus.Counter
	GatewayCallSeconds prometheus.Histogram
	ProjectsActive     prometheus.Gauge
	HighRiskDonations  prometheus.Counter
	NotificationsSent  prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		// HTTP 指标
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// 数据库指标
		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// 业务指标
		DonationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "donations_total",
			Help:      "Total donation intents created",
		}),
		DonationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "donations_completed_total",
			Help:      "Total donations completed",
		}),
		DonationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "donations_failed_total",
			Help:      "Total donations failed payment verification",
		}),
		DonationsRefunded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "donations_refunded_total",
			Help:      "Total donations refunded",
		}),
		PaymentGatewayErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "payment_gateway_errors_total",
			Help:      "Total payment gateway call failures",
		}),
		GatewayCallSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "payment_gateway_call_seconds",
			Help:      "Payment gateway call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ProjectsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "projects_active",
			Help:      "Number of active approved projects",
		}),
		HighRiskDonations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "donations_high_risk_total",
			Help:      "Total donations flagged high risk",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "donatetrack",
			Subsystem: serviceName,
			Name:      "notifications_sent_total",
			Help:      "Total notifications written to mailboxes",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	metrics := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.DonationsTotal,
		m.DonationsCompleted,
		m.DonationsFailed,
		m.DonationsRefunded,
		m.PaymentGatewayErrs,
		m.GatewayCallSeconds,
		m.ProjectsActive,
		m.HighRiskDonations,
		m.NotificationsSent,
	}

	for _, metric := range metrics {
		if err := prometheus.DefaultRegisterer.Register(metric); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
