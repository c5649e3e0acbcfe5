package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
)

const (
	// DemandWindowDays is the fixed sales observation window.
	DemandWindowDays = 30

	// CoverageSentinelDays is reported in place of coverage when the average
	// daily sales rate is zero. It means "effectively infinite cover" and is
	// applied only when a result is serialized, never inside calculations.
	CoverageSentinelDays = 9999
)

// DemandInput is the aggregated sales/stock snapshot one demand estimate is
// computed from.
type DemandInput struct {
	ArticleId     int
	AsOf          time.Time
	WindowDays    int
	TotalSales    int
	DaysWithSales int
	CurrentStock  int
	HasMappings   bool
	Policy        models.CoveragePolicy
}

type DemandResult struct {
	ArticleId       int             `json:"article_id"`
	AsOf            time.Time       `json:"as_of"`
	WindowDays      int             `json:"window_days"`
	ObservedDays    int             `json:"observed_days"`
	TotalSales      int             `json:"total_sales"`
	AvgDailySales   decimal.Decimal `json:"avg_daily_sales"`
	HorizonDays     int             `json:"forecast_horizon_days"`
	ForecastDemand  decimal.Decimal `json:"forecast_demand"`
	CurrentStock    int             `json:"current_stock"`
	CoverageDays    decimal.Decimal `json:"coverage_days"`
	CoverageDefined bool            `json:"-"`
	DeficitUnits    int             `json:"deficit"`
	Explanation     []string        `json:"explanation"`
}

// CoverageForOutput substitutes the sentinel for undefined coverage so that
// serialized results stay compatible with downstream consumers.
func (r DemandResult) CoverageForOutput() decimal.Decimal {
	if !r.CoverageDefined {
		return decimal.NewFromInt(CoverageSentinelDays)
	}
	return r.CoverageDays
}

// EstimateDemand loads the article's sales/stock facts and computes its
// demand estimate as of the given date.
func EstimateDemand(ctx context.Context, articleId int, asOf time.Time) (*DemandResult, error) {
	if _, err := models.GetArticle(ctx, articleId); err != nil {
		return nil, err
	}
	policy, err := models.ResolveCoveragePolicy(ctx, config.GetDB(), articleId)
	if err != nil {
		return nil, err
	}
	input, err := loadDemandInput(ctx, articleId, asOf, policy)
	if err != nil {
		return nil, err
	}
	result := ComputeDemand(*input)
	return &result, nil
}

func loadDemandInput(ctx context.Context, articleId int, asOf time.Time, policy models.CoveragePolicy) (*DemandInput, error) {
	db := config.GetDB()
	input := DemandInput{
		ArticleId:  articleId,
		AsOf:       asOf,
		WindowDays: DemandWindowDays,
		Policy:     policy,
	}

	var mappings []models.ArticleMarketplaceMapping
	err := db.WithContext(ctx).Where("article_id = ?", articleId).Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	externalSkus := make([]string, 0, len(mappings))
	seen := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if !seen[m.ExternalSku] {
			seen[m.ExternalSku] = true
			externalSkus = append(externalSkus, m.ExternalSku)
		}
	}
	if len(externalSkus) == 0 {
		return &input, nil
	}
	input.HasMappings = true

	windowStart := asOf.AddDate(0, 0, -(DemandWindowDays - 1))
	var salesAgg struct {
		Total int
		Days  int
	}
	err = db.WithContext(ctx).Model(&models.MarketplaceSalesDaily{}).
		Select("COALESCE(SUM(sales_qty), 0) AS total, COUNT(DISTINCT date) AS days").
		Where("external_sku IN ? AND date BETWEEN ? AND ?", externalSkus, windowStart, asOf).
		Scan(&salesAgg).Error
	if err != nil {
		return nil, err
	}
	input.TotalSales = salesAgg.Total
	input.DaysWithSales = salesAgg.Days

	var stockTotal int
	err = db.WithContext(ctx).Model(&models.MarketplaceStock{}).
		Select("COALESCE(SUM(stock_qty), 0)").
		Where("external_sku IN ?", externalSkus).
		Scan(&stockTotal).Error
	if err != nil {
		return nil, err
	}
	input.CurrentStock = stockTotal
	return &input, nil
}

// ComputeDemand turns an aggregated snapshot into a demand estimate. It is
// pure: same input, same output.
func ComputeDemand(in DemandInput) DemandResult {
	window := in.WindowDays
	if window <= 0 {
		window = DemandWindowDays
	}
	result := DemandResult{
		ArticleId:   in.ArticleId,
		AsOf:        in.AsOf,
		WindowDays:  window,
		TotalSales:  in.TotalSales,
		HorizonDays: in.Policy.TargetCoverageDays,
	}

	if !in.HasMappings {
		result.Explanation = append(result.Explanation,
			"article has no marketplace SKU mappings; sales and stock treated as zero")
	}

	observedDays := window
	if in.DaysWithSales > 0 && in.DaysWithSales < window {
		observedDays = in.DaysWithSales
		result.Explanation = append(result.Explanation,
			fmt.Sprintf("only %d of %d days have sales data; averaging over %d days", in.DaysWithSales, window, observedDays))
	}
	result.ObservedDays = observedDays

	if in.TotalSales > 0 {
		result.AvgDailySales = decimal.NewFromInt(int64(in.TotalSales)).
			Div(decimal.NewFromInt(int64(observedDays)))
	}
	if !in.Policy.FromArticle {
		result.Explanation = append(result.Explanation,
			fmt.Sprintf("no article-level coverage override; using default horizon of %d days", in.Policy.TargetCoverageDays))
	}

	result.ForecastDemand = result.AvgDailySales.Mul(decimal.NewFromInt(int64(in.Policy.TargetCoverageDays)))
	result.CurrentStock = in.CurrentStock

	if result.AvgDailySales.IsPositive() {
		result.CoverageDefined = true
		result.CoverageDays = decimal.NewFromInt(int64(in.CurrentStock)).Div(result.AvgDailySales)
	} else {
		result.Explanation = append(result.Explanation,
			fmt.Sprintf("average daily sales is zero; coverage reported as %d (effectively infinite)", CoverageSentinelDays))
	}

	deficit := result.ForecastDemand.Sub(decimal.NewFromInt(int64(in.CurrentStock))).IntPart()
	if deficit > 0 {
		result.DeficitUnits = int(deficit)
	}

	result.Explanation = append(result.Explanation,
		fmt.Sprintf("avg daily sales %s over %d days, forecast %s units for %d days, stock %d, deficit %d",
			result.AvgDailySales.StringFixed(2), observedDays, result.ForecastDemand.StringFixed(2),
			in.Policy.TargetCoverageDays, in.CurrentStock, result.DeficitUnits))
	return result
}
