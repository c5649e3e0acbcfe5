package planning_test

import (
	"strings"
	"testing"
	"time"

	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
)

func demandInput(totalSales, daysWithSales, stock, horizon int) planning.DemandInput {
	return planning.DemandInput{
		ArticleId:     1,
		AsOf:          time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		WindowDays:    planning.DemandWindowDays,
		TotalSales:    totalSales,
		DaysWithSales: daysWithSales,
		CurrentStock:  stock,
		HasMappings:   true,
		Policy:        models.CoveragePolicy{TargetCoverageDays: horizon, FromArticle: true},
	}
}

func TestComputeDemand_SteadySalesProduceDeficit(t *testing.T) {
	// 2 per day over a full window, 10-day horizon, empty stock.
	result := planning.ComputeDemand(demandInput(60, 30, 0, 10))

	if !result.AvgDailySales.Equal(decimalFromInt(2)) {
		t.Fatalf("avg daily sales = %s, want 2", result.AvgDailySales)
	}
	if !result.ForecastDemand.Equal(decimalFromInt(20)) {
		t.Fatalf("forecast demand = %s, want 20", result.ForecastDemand)
	}
	if result.DeficitUnits != 20 {
		t.Fatalf("deficit = %d, want 20", result.DeficitUnits)
	}
	if !result.CoverageDefined {
		t.Fatal("coverage should be defined with positive sales")
	}
	if !result.CoverageDays.IsZero() {
		t.Fatalf("coverage = %s, want 0 with empty stock", result.CoverageDays)
	}
}

func TestComputeDemand_ShortHistoryAveragesObservedDaysOnly(t *testing.T) {
	// 10 units over 5 observed days: 2/day, not 10/30.
	result := planning.ComputeDemand(demandInput(10, 5, 0, 30))

	if result.ObservedDays != 5 {
		t.Fatalf("observed days = %d, want 5", result.ObservedDays)
	}
	if !result.AvgDailySales.Equal(decimalFromInt(2)) {
		t.Fatalf("avg daily sales = %s, want 2", result.AvgDailySales)
	}
	if !hasExplanationContaining(result.Explanation, "averaging over 5 days") {
		t.Fatalf("short-history averaging not surfaced in explanation: %v", result.Explanation)
	}
}

func TestComputeDemand_ZeroSalesGivesSentinelCoverage(t *testing.T) {
	result := planning.ComputeDemand(demandInput(0, 0, 15, 60))

	if result.CoverageDefined {
		t.Fatal("coverage must be undefined with zero sales")
	}
	if !result.CoverageForOutput().Equal(decimalFromInt(planning.CoverageSentinelDays)) {
		t.Fatalf("serialized coverage = %s, want sentinel %d", result.CoverageForOutput(), planning.CoverageSentinelDays)
	}
	if result.DeficitUnits != 0 {
		t.Fatalf("deficit = %d, want 0 with zero sales", result.DeficitUnits)
	}
}

func TestComputeDemand_DeficitNeverNegative(t *testing.T) {
	// Stock far above forecast.
	result := planning.ComputeDemand(demandInput(30, 30, 500, 10))
	if result.DeficitUnits != 0 {
		t.Fatalf("deficit = %d, want 0 when stock exceeds forecast", result.DeficitUnits)
	}
}

func TestComputeDemand_MissingMappingIsExplained(t *testing.T) {
	input := demandInput(0, 0, 0, 60)
	input.HasMappings = false
	result := planning.ComputeDemand(input)

	if !hasExplanationContaining(result.Explanation, "no marketplace SKU mappings") {
		t.Fatalf("missing mapping not surfaced in explanation: %v", result.Explanation)
	}
}

func TestComputeDemand_FallbackHorizonIsExplained(t *testing.T) {
	input := demandInput(30, 30, 0, 60)
	input.Policy.FromArticle = false
	result := planning.ComputeDemand(input)

	if !hasExplanationContaining(result.Explanation, "default horizon of 60 days") {
		t.Fatalf("fallback horizon not surfaced in explanation: %v", result.Explanation)
	}
}

func hasExplanationContaining(explanation []string, substr string) bool {
	for _, line := range explanation {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
