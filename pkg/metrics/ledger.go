package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records ledger appends and recorded orders.
type LedgerMetrics struct {
	appends    *prometheus.CounterVec
	orderTotal prometheus.Histogram
	orderItems prometheus.Histogram
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	appends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_appends_total",
		Help: "Ledger entries appended, labeled by source.",
	}, []string{"source"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Total amount of recorded orders.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	orderItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_items",
		Help:    "Line item count of recorded orders.",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})
	reg.MustRegister(appends, orderTotal, orderItems)
	return &LedgerMetrics{
		appends:    appends,
		orderTotal: orderTotal,
		orderItems: orderItems,
	}
}

// ObserveAppend increments the append counter for the named source.
func (m *LedgerMetrics) ObserveAppend(source string) {
	if m == nil || m.appends == nil {
		return
	}
	m.appends.WithLabelValues(normalizeLabel(source)).Inc()
}

// ObserveOrder records the size of one recorded order.
func (m *LedgerMetrics) ObserveOrder(totalAmount float64, items int) {
	if m == nil || m.orderTotal == nil {
		return
	}
	m.orderTotal.Observe(totalAmount)
	m.orderItems.Observe(float64(items))
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
