package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)
	metrics.ObserveAppend("order")
	metrics.ObserveAppend("adjustment")
	metrics.ObserveAppend("adjustment")
	metrics.ObserveOrder(26.00, 2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ledger_appends_total", "source", "adjustment"); err != nil {
		t.Fatalf("fetch appends: %v", err)
	} else if got != 2 {
		t.Fatalf("expected appends=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "ledger_appends_total", "source", "order"); err != nil {
		t.Fatalf("fetch appends: %v", err)
	} else if got != 1 {
		t.Fatalf("expected appends=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_total_amount"); err != nil {
		t.Fatalf("fetch order total: %v", err)
	} else if got != 26.00 {
		t.Fatalf("expected order total sum 26, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_items"); err != nil {
		t.Fatalf("fetch order items: %v", err)
	} else if got != 2 {
		t.Fatalf("expected order items sum 2, got %f", got)
	}
}

func TestLedgerMetricsNilRegisterer(t *testing.T) {
	metrics := NewLedgerMetrics(nil)
	metrics.ObserveAppend("order")
	metrics.ObserveOrder(1, 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetHistogram().GetSampleSum(), nil
	}
	return 0, fmt.Errorf("histogram %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
