package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.IncMutation("add", "added")
	m.IncMutation("add", "added")
	m.IncMutation("remove", "noop")
	m.IncCheckout("express")
	m.IncWriteFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(mfs, "storefront_cart_mutations_total", map[string]string{"kind": "add", "outcome": "added"}); got != 2 {
		t.Fatalf("expected add/added=2, got %f", got)
	}
	if got := counterValue(mfs, "storefront_cart_mutations_total", map[string]string{"kind": "remove", "outcome": "noop"}); got != 1 {
		t.Fatalf("expected remove/noop=1, got %f", got)
	}
	if got := counterValue(mfs, "storefront_checkouts_total", map[string]string{"shipping": "express"}); got != 1 {
		t.Fatalf("expected express checkouts=1, got %f", got)
	}
	if got := counterValue(mfs, "storefront_blob_write_failures_total", nil); got != 1 {
		t.Fatalf("expected write failures=1, got %f", got)
	}
}

func TestNilRegistererIsNoOp(t *testing.T) {
	m := NewCartMetrics(nil)
	m.IncMutation("add", "added")
	m.IncCheckout("")
	m.IncWriteFailure()

	var nilMetrics *CartMetrics
	nilMetrics.IncMutation("add", "added")
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matches(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func matches(pairs []*dto.LabelPair, want map[string]string) bool {
	got := map[string]string{}
	for _, p := range pairs {
		got[p.GetName()] = p.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}
