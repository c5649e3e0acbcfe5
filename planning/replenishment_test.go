package planning_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
)

func baseParams() planning.ReplenishmentParams {
	return planning.ReplenishmentParams{
		TargetDate:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		ArrivalDate:          time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		Strategy:             models.StrategyNormal,
		ZeroSalesPolicy:      models.ZeroSalesKeep,
		TargetCoverageDays:   30,
		MinCoverageDays:      7,
		MaxCoverageDaysAfter: 60,
	}
}

func skuInput(articleId int, sku string, avgPerDay float64, mpStock, internal int) planning.ReplenishmentSkuInput {
	return planning.ReplenishmentSkuInput{
		ArticleId:        articleId,
		ColorId:          1,
		SizeId:           1,
		ExternalSku:      sku,
		AvgDailySales:    decimal.NewFromFloat(avgPerDay),
		MarketplaceStock: mpStock,
		InternalStock:    internal,
	}
}

func TestComputeReplenishment_BaseRequirement(t *testing.T) {
	// 2/day, stock consumed before arrival, normal factor 0.8:
	// base = 2 * 30 * 0.8 - 0 = 48.
	plan := planning.ComputeReplenishment(baseParams(), []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 2, 10, 100),
	})
	item := plan.Items[0]

	if item.ProjectedStockAtArrival != 0 {
		t.Fatalf("projected stock = %d, want 0", item.ProjectedStockAtArrival)
	}
	if item.RecommendedQty != 48 {
		t.Fatalf("recommended = %d, want 48", item.RecommendedQty)
	}
	if len(item.LimitReasons) != 0 {
		t.Fatalf("unexpected limit reasons %v", item.LimitReasons)
	}
	if !item.BelowMinCoverage {
		t.Fatal("current coverage 5 days should be below the 7-day minimum")
	}
	if item.OosRiskBefore != models.OosRiskYellow {
		t.Fatalf("oos before = %s, want yellow at 5 days cover", item.OosRiskBefore)
	}
	if item.OosRiskAfter != models.OosRiskGreen {
		t.Fatalf("oos after = %s, want green at 24 days cover", item.OosRiskAfter)
	}
}

func TestComputeReplenishment_InternalStockCap(t *testing.T) {
	plan := planning.ComputeReplenishment(baseParams(), []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 2, 0, 5),
	})
	item := plan.Items[0]

	if item.RecommendedQty != 5 {
		t.Fatalf("recommended = %d, want internal stock 5", item.RecommendedQty)
	}
	if !item.LimitedBy(models.LimitInternalStock) {
		t.Fatal("internal stock cap not flagged")
	}
	if item.OosRiskBefore != models.OosRiskRed {
		t.Fatalf("oos before = %s, want red at zero stock with sales", item.OosRiskBefore)
	}
}

func TestComputeReplenishment_EmptyInternalStockMeansZeroWithoutFlag(t *testing.T) {
	plan := planning.ComputeReplenishment(baseParams(), []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 2, 0, 0),
	})
	item := plan.Items[0]

	if item.RecommendedQty != 0 {
		t.Fatalf("recommended = %d, want 0 with nothing to ship", item.RecommendedQty)
	}
	if item.LimitedBy(models.LimitInternalStock) {
		t.Fatal("empty internal stock must not set the cap flag")
	}
}

func TestComputeReplenishment_MaxCoverageCap(t *testing.T) {
	params := baseParams()
	params.Strategy = models.StrategyAggressive
	params.TargetCoverageDays = 200
	params.MaxCoverageDaysAfter = 100

	// 1/day, 100 on the marketplace, 10 days to arrival: projected 90.
	// Base would be 110, but only 10 units keep coverage at or below 100 days.
	plan := planning.ComputeReplenishment(params, []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 1, 100, 500),
	})
	item := plan.Items[0]

	if item.RecommendedQty != 10 {
		t.Fatalf("recommended = %d, want 10", item.RecommendedQty)
	}
	if !item.LimitedBy(models.LimitMaxCoverage) {
		t.Fatal("max coverage cap not flagged")
	}
	maxCover := decimalFromInt(params.MaxCoverageDaysAfter)
	if item.CoverageAfter.GreaterThan(maxCover) {
		t.Fatalf("coverage after = %s exceeds maximum %s", item.CoverageAfter, maxCover)
	}
}

func TestComputeReplenishment_ZeroSalesPolicy(t *testing.T) {
	params := baseParams()
	params.ZeroSalesPolicy = models.ZeroSalesIgnore
	plan := planning.ComputeReplenishment(params, []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 0, 20, 50),
	})
	if !plan.Items[0].IgnoredDueToZeroSales {
		t.Fatal("ignore policy should flag zero-sales SKUs")
	}

	params.ZeroSalesPolicy = models.ZeroSalesKeep
	plan = planning.ComputeReplenishment(params, []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 0, 20, 50),
	})
	if plan.Items[0].IgnoredDueToZeroSales {
		t.Fatal("keep policy must not flag zero-sales SKUs")
	}
}

func TestComputeReplenishment_ArticleCapBindsExactly(t *testing.T) {
	params := baseParams()
	articleCap := 20
	params.MaxReplenishmentPerArticle = &articleCap

	// Uncapped recommendations would be 48 and 24.
	plan := planning.ComputeReplenishment(params, []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 2, 0, 100),
		skuInput(1, "sku-b", 1, 0, 100),
	})

	sum := 0
	for _, item := range plan.Items {
		sum += item.RecommendedQty
		if item.RecommendedQty > 0 && !item.LimitedBy(models.LimitMaxCoverage) {
			t.Fatalf("capped item %s missing the max-coverage reason", item.ExternalSku)
		}
	}
	if sum != articleCap {
		t.Fatalf("post-cap sum = %d, want exactly the cap %d", sum, articleCap)
	}
	if plan.Articles[0].TotalRecommended != articleCap {
		t.Fatalf("article rollup = %d, want %d", plan.Articles[0].TotalRecommended, articleCap)
	}
	if plan.Articles[0].TotalDeficit <= articleCap {
		t.Fatalf("pre-cap deficit %d should exceed the cap", plan.Articles[0].TotalDeficit)
	}
}

func TestComputeReplenishment_RecommendedNeverExceedsInternalStock(t *testing.T) {
	inputs := []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 5, 0, 3),
		skuInput(1, "sku-b", 1, 2, 0),
		skuInput(2, "sku-c", 2, 10, 7),
	}
	plan := planning.ComputeReplenishment(baseParams(), inputs)
	for i, item := range plan.Items {
		if item.RecommendedQty > inputs[i].InternalStock {
			t.Fatalf("%s: recommended %d exceeds internal stock %d", item.ExternalSku, item.RecommendedQty, inputs[i].InternalStock)
		}
	}
}

func TestComputeReplenishment_ArticleRollupsConsistentAcrossSkus(t *testing.T) {
	plan := planning.ComputeReplenishment(baseParams(), []planning.ReplenishmentSkuInput{
		skuInput(1, "sku-a", 2, 0, 100),
		skuInput(1, "sku-b", 1, 0, 100),
		skuInput(2, "sku-c", 1, 0, 100),
	})
	totals := map[int]int{}
	for _, item := range plan.Items {
		totals[item.ArticleId] += item.RecommendedQty
	}
	for _, item := range plan.Items {
		if item.ArticleTotalRecommended != totals[item.ArticleId] {
			t.Fatalf("%s: rollup %d, want %d", item.ExternalSku, item.ArticleTotalRecommended, totals[item.ArticleId])
		}
	}
}
