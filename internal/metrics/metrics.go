// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderexport"

// Metrics owns a private registry so tests can create as many as they like
type Metrics struct {
	registry *prometheus.Registry

	exportsTotal      *prometheus.CounterVec
	exportRowsTotal   prometheus.Counter
	skippedOrders     prometheus.Counter
	tagFailuresTotal  prometheus.Counter
	webhooksTotal     *prometheus.CounterVec
	syncRunsTotal     *prometheus.CounterVec
	ordersSyncedTotal prometheus.Counter
}

// New creates the collectors and registers them together with the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export runs by outcome.",
		}, []string{"outcome"}),
		exportRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rows_total",
			Help:      "CSV rows written by successful exports.",
		}),
		skippedOrders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_skipped_orders_total",
			Help:      "Orders left out of an export because they had no line items.",
		}),
		tagFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_tag_failures_total",
			Help:      "Exported orders that could not be tagged in Shopify.",
		}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Shopify webhooks received by topic and result.",
		}, []string{"topic", "result"}),
		syncRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_sync_runs_total",
			Help:      "Scheduled order sync runs by result.",
		}, []string{"result"}),
		ordersSyncedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_synced_total",
			Help:      "Orders upserted by the order sync.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.exportsTotal,
		m.exportRowsTotal,
		m.skippedOrders,
		m.tagFailuresTotal,
		m.webhooksTotal,
		m.syncRunsTotal,
		m.ordersSyncedTotal,
	)
	return m
}

// ExportFinished records one export run. Rows only count for successful runs.
func (m *Metrics) ExportFinished(outcome string, rows, skippedOrders int) {
	m.exportsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.exportRowsTotal.Add(float64(rows))
	}
	m.skippedOrders.Add(float64(skippedOrders))
}

func (m *Metrics) OrderTagFailed() {
	m.tagFailuresTotal.Inc()
}

func (m *Metrics) WebhookReceived(topic, result string) {
	m.webhooksTotal.WithLabelValues(topic, result).Inc()
}

// SyncFinished records one order sync run
func (m *Metrics) SyncFinished(orders int, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.syncRunsTotal.WithLabelValues(result).Inc()
	m.ordersSyncedTotal.Add(float64(orders))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
