package planning_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
)

func classify(avgSales float64, available int, cover float64) models.BundleRiskLevel {
	avg := decimal.NewFromFloat(avgSales)
	coverDec := decimal.NewFromFloat(cover)
	return planning.ClassifyBundleRiskLevel(avg, available, coverDec, avg.IsPositive(), 7, 14)
}

func TestClassifyBundleRiskLevel_Ladder(t *testing.T) {
	cases := []struct {
		name      string
		avgSales  float64
		available int
		cover     float64
		want      models.BundleRiskLevel
	}{
		{"no sales no stock", 0, 0, 0, models.BundleRiskNoData},
		{"no sales with stock", 0, 20, 0, models.BundleRiskOverstock},
		{"deep inside critical", 1, 3, 3, models.BundleRiskCritical},
		{"inside warning", 1, 10, 10, models.BundleRiskWarning},
		{"inside ok", 1, 20, 20, models.BundleRiskOk},
		{"far overstock", 1, 100, 100, models.BundleRiskOverstock},
	}
	for _, tc := range cases {
		got := classify(tc.avgSales, tc.available, tc.cover)
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyBundleRiskLevel_BoundaryInclusivity(t *testing.T) {
	// Cover exactly at the safety threshold is still CRITICAL.
	if got := classify(1, 7, 7); got != models.BundleRiskCritical {
		t.Fatalf("cover == safety: got %s, want critical", got)
	}
	// Cover exactly at the alert threshold is still WARNING.
	if got := classify(1, 14, 14); got != models.BundleRiskWarning {
		t.Fatalf("cover == alert: got %s, want warning", got)
	}
	// Cover exactly at three times the alert threshold is already OVERSTOCK.
	if got := classify(1, 42, 42); got != models.BundleRiskOverstock {
		t.Fatalf("cover == overstock threshold: got %s, want overstock", got)
	}
	// Just under the overstock threshold is still OK.
	if got := classify(1, 41, 41.9); got != models.BundleRiskOk {
		t.Fatalf("cover just under overstock threshold: got %s, want ok", got)
	}
}
