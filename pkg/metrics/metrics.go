// Package metrics provides Prometheus metrics for the ERP managers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics of the managers
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// FulfillmentDocumentsUpdated counts purchase orders and externals
	// rewritten by delivery order creation.
	FulfillmentDocumentsUpdated *prometheus.CounterVec
}

// New registers the metrics with the default Prometheus registerer
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "millerp_manager_operations_total",
				Help: "Total number of manager operations",
			},
			[]string{"entity", "operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "millerp_manager_operation_duration_seconds",
				Help:    "Duration of manager operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		FulfillmentDocumentsUpdated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "millerp_fulfillment_documents_updated_total",
				Help: "Total number of documents rewritten by fulfillment propagation",
			},
			[]string{"kind"},
		),
	}
}

// Observe records one finished operation. A nil receiver is a no-op.
func (m *Metrics) Observe(entity, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(entity, operation, status).Inc()
	m.OperationDuration.WithLabelValues(entity, operation).Observe(time.Since(started).Seconds())
}

// AddFulfillmentUpdates records documents rewritten by fulfillment propagation.
func (m *Metrics) AddFulfillmentUpdates(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FulfillmentDocumentsUpdated.WithLabelValues(kind).Add(float64(n))
}
