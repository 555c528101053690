package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for the order ingestion pipeline.
type OrderMetrics struct {
	ordersCreated  *prometheus.CounterVec
	allocRetries   prometheus.Counter
	alertsRaised   *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
}

// NewOrderMetrics registers the order pipeline metrics on the provided
// registerer. A nil registerer yields a no-op instance for tests.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted by the ingestion pipeline.",
	}, []string{"status"})
	allocRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_number_retries_total",
		Help: "Order number allocations retried after a uniqueness conflict.",
	})
	alertsRaised := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alerts_raised_total",
		Help: "Stock alerts raised by the alert engine.",
	}, []string{"alert_type"})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements written to the ledger.",
	}, []string{"movement_type"})
	reg.MustRegister(ordersCreated, allocRetries, alertsRaised, stockMovements)
	return &OrderMetrics{
		ordersCreated:  ordersCreated,
		allocRetries:   allocRetries,
		alertsRaised:   alertsRaised,
		stockMovements: stockMovements,
	}
}

// IncOrderCreated increments the created counter for the given status.
func (m *OrderMetrics) IncOrderCreated(status string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncAllocationRetry counts one retried order number allocation.
func (m *OrderMetrics) IncAllocationRetry() {
	if m == nil || m.allocRetries == nil {
		return
	}
	m.allocRetries.Inc()
}

// IncAlertRaised counts one raised stock alert by type.
func (m *OrderMetrics) IncAlertRaised(alertType string) {
	if m == nil || m.alertsRaised == nil {
		return
	}
	m.alertsRaised.WithLabelValues(normalizeLabel(alertType)).Inc()
}

// IncStockMovement counts one ledger entry by movement type.
func (m *OrderMetrics) IncStockMovement(movementType string) {
	if m == nil || m.stockMovements == nil {
		return
	}
	m.stockMovements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
