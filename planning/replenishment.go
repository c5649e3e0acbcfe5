package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/utils"
)

// ReplenishmentParams are the knobs of one planning run, resolved by the
// caller; the allocator itself never reads configuration.
type ReplenishmentParams struct {
	TargetDate                 time.Time                    `json:"target_date"`
	ArrivalDate                time.Time                    `json:"arrival_date"`
	Strategy                   models.ReplenishmentStrategy `json:"strategy"`
	ZeroSalesPolicy            models.ZeroSalesPolicy       `json:"zero_sales_policy"`
	TargetCoverageDays         int                          `json:"target_coverage_days"`
	MinCoverageDays            int                          `json:"min_coverage_days"`
	MaxCoverageDaysAfter       int                          `json:"max_coverage_days_after"`
	MaxReplenishmentPerArticle *int                         `json:"max_replenishment_per_article"`
	ArticleIds                 []int                        `json:"article_ids"`
}

// ReplenishmentSkuInput is the per-SKU snapshot the allocator works on.
type ReplenishmentSkuInput struct {
	ArticleId        int
	ColorId          int
	SizeId           int
	ExternalSku      string
	AvgDailySales    decimal.Decimal
	MarketplaceStock int
	InternalStock    int
}

type ReplenishmentItem struct {
	ArticleId               int                  `json:"article_id"`
	ColorId                 int                  `json:"color_id"`
	SizeId                  int                  `json:"size_id"`
	ExternalSku             string               `json:"external_sku"`
	AvgDailySales           decimal.Decimal      `json:"avg_daily_sales"`
	MarketplaceStock        int                  `json:"marketplace_stock"`
	InternalStock           int                  `json:"internal_stock"`
	ProjectedStockAtArrival int                  `json:"projected_stock_at_arrival"`
	BaseRequired            int                  `json:"base_required"`
	RecommendedQty          int                  `json:"recommended_qty"`
	CoverageCurrent         decimal.Decimal      `json:"coverage_current"`
	CoverageAfter           decimal.Decimal      `json:"coverage_after"`
	InternalStockAfter      int                  `json:"internal_stock_after"`
	OosRiskBefore           models.OosRiskLevel  `json:"oos_risk_before"`
	OosRiskAfter            models.OosRiskLevel  `json:"oos_risk_after"`
	LimitReasons            []models.LimitReason `json:"limit_reasons"`
	IgnoredDueToZeroSales   bool                 `json:"ignored_due_to_zero_sales"`
	BelowMinCoverage        bool                 `json:"below_min_coverage_threshold"`
	ArticleTotalDeficit     int                  `json:"article_total_deficit"`
	ArticleTotalRecommended int                  `json:"article_total_recommended"`
	Explanation             string               `json:"explanation"`
}

// LimitedBy reports whether the given cap reason was applied to this item.
func (i ReplenishmentItem) LimitedBy(reason models.LimitReason) bool {
	for _, r := range i.LimitReasons {
		if r == reason {
			return true
		}
	}
	return false
}

func (i *ReplenishmentItem) addLimit(reason models.LimitReason) {
	if !i.LimitedBy(reason) {
		i.LimitReasons = append(i.LimitReasons, reason)
	}
}

type ReplenishmentArticleSummary struct {
	ArticleId        int  `json:"article_id"`
	TotalDeficit     int  `json:"total_deficit"`
	TotalRecommended int  `json:"total_recommended"`
	CapApplied       bool `json:"cap_applied"`
}

type ReplenishmentPlan struct {
	Params           ReplenishmentParams           `json:"params"`
	Items            []ReplenishmentItem           `json:"items"`
	Articles         []ReplenishmentArticleSummary `json:"articles"`
	TotalRecommended int                           `json:"total_recommended"`
}

func strategyCoverageFactor(strategy models.ReplenishmentStrategy) decimal.Decimal {
	switch strategy {
	case models.StrategyAggressive:
		return decimal.NewFromInt(1)
	case models.StrategyConservative:
		return decimal.NewFromFloat(0.6)
	default:
		return decimal.NewFromFloat(0.8)
	}
}

func validateReplenishmentParams(params ReplenishmentParams) error {
	if params.ArrivalDate.Before(params.TargetDate) {
		return utils.InvalidInputError("arrival_date must not be before target_date")
	}
	if !params.Strategy.IsValid() {
		return utils.InvalidInputError(fmt.Sprintf("unknown strategy %q", params.Strategy))
	}
	if !params.ZeroSalesPolicy.IsValid() {
		return utils.InvalidInputError(fmt.Sprintf("unknown zero sales policy %q", params.ZeroSalesPolicy))
	}
	if params.TargetCoverageDays <= 0 {
		return utils.InvalidInputError("target_coverage_days must be positive")
	}
	if params.MaxCoverageDaysAfter <= 0 {
		return utils.InvalidInputError("max_coverage_days_after must be positive")
	}
	if params.MaxReplenishmentPerArticle != nil && *params.MaxReplenishmentPerArticle <= 0 {
		return utils.InvalidInputError("max_replenishment_per_article must be positive when set")
	}
	return nil
}

// PlanReplenishment loads the SKU snapshots for the requested articles and
// runs the allocator. The plan is a pure preview; nothing is persisted here.
func PlanReplenishment(ctx context.Context, params ReplenishmentParams) (*ReplenishmentPlan, error) {
	if err := validateReplenishmentParams(params); err != nil {
		return nil, err
	}
	inputs, err := loadReplenishmentInputs(ctx, params.ArticleIds, params.TargetDate)
	if err != nil {
		return nil, err
	}
	return ComputeReplenishment(params, inputs), nil
}

func loadReplenishmentInputs(ctx context.Context, articleIds []int, asOf time.Time) ([]ReplenishmentSkuInput, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).
		Where("color_id IS NOT NULL AND size_id IS NOT NULL AND bundle_type_id IS NULL")
	if len(articleIds) > 0 {
		query = query.Where("article_id IN ?", articleIds)
	}
	var mappings []models.ArticleMarketplaceMapping
	err := query.Order("article_id, external_sku").Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return nil, nil
	}

	externalSkus := make([]string, 0, len(mappings))
	involvedArticles := map[int]bool{}
	for _, m := range mappings {
		externalSkus = append(externalSkus, m.ExternalSku)
		involvedArticles[m.ArticleId] = true
	}
	articleIdList := make([]int, 0, len(involvedArticles))
	for id := range involvedArticles {
		articleIdList = append(articleIdList, id)
	}

	windowStart := asOf.AddDate(0, 0, -(DemandWindowDays - 1))
	type skuAgg struct {
		ExternalSku string
		Total       int
	}
	var salesRows []skuAgg
	err = db.WithContext(ctx).Model(&models.MarketplaceSalesDaily{}).
		Select("external_sku, COALESCE(SUM(sales_qty), 0) AS total").
		Where("external_sku IN ? AND date >= ?", externalSkus, windowStart).
		Group("external_sku").
		Scan(&salesRows).Error
	if err != nil {
		return nil, err
	}
	salesBySku := make(map[string]int, len(salesRows))
	for _, row := range salesRows {
		salesBySku[row.ExternalSku] = row.Total
	}

	var stockRows []skuAgg
	err = db.WithContext(ctx).Model(&models.MarketplaceStock{}).
		Select("external_sku, COALESCE(SUM(stock_qty), 0) AS total").
		Where("external_sku IN ?", externalSkus).
		Group("external_sku").
		Scan(&stockRows).Error
	if err != nil {
		return nil, err
	}
	stockBySku := make(map[string]int, len(stockRows))
	for _, row := range stockRows {
		stockBySku[row.ExternalSku] = row.Total
	}

	var skuUnits []models.SkuUnit
	err = db.WithContext(ctx).Where("article_id IN ?", articleIdList).Find(&skuUnits).Error
	if err != nil {
		return nil, err
	}
	skuUnitIds := make([]int, 0, len(skuUnits))
	unitByKey := map[[3]int]int{}
	for _, su := range skuUnits {
		skuUnitIds = append(skuUnitIds, su.ID)
		unitByKey[[3]int{su.ArticleId, su.ColorId, su.SizeId}] = su.ID
	}

	internalByUnit := map[int]int{}
	if len(skuUnitIds) > 0 {
		type unitAgg struct {
			SkuUnitId int
			Total     int
		}
		var internalRows []unitAgg
		err = db.WithContext(ctx).Model(&models.StockBalance{}).
			Select("stock_balances.sku_unit_id, COALESCE(SUM(stock_balances.quantity), 0) AS total").
			Joins("JOIN warehouses ON warehouses.id = stock_balances.warehouse_id").
			Where("stock_balances.sku_unit_id IN ? AND warehouses.type = ?", skuUnitIds, models.WarehouseTypeInternal).
			Group("stock_balances.sku_unit_id").
			Scan(&internalRows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range internalRows {
			internalByUnit[row.SkuUnitId] = row.Total
		}
	}

	inputs := make([]ReplenishmentSkuInput, 0, len(mappings))
	for _, m := range mappings {
		input := ReplenishmentSkuInput{
			ArticleId:        m.ArticleId,
			ColorId:          *m.ColorId,
			SizeId:           *m.SizeId,
			ExternalSku:      m.ExternalSku,
			MarketplaceStock: stockBySku[m.ExternalSku],
		}
		if total := salesBySku[m.ExternalSku]; total > 0 {
			input.AvgDailySales = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(DemandWindowDays))
		}
		if unitId, ok := unitByKey[[3]int{m.ArticleId, *m.ColorId, *m.SizeId}]; ok {
			input.InternalStock = internalByUnit[unitId]
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// effectiveCoverage is the comparable coverage value: stock over sales rate
// when the rate is positive, the infinite-cover sentinel when there is stock
// but no sales, and zero when there is neither.
func effectiveCoverage(stockQty int, avgDailySales decimal.Decimal) decimal.Decimal {
	if avgDailySales.IsPositive() {
		return decimal.NewFromInt(int64(stockQty)).Div(avgDailySales)
	}
	if stockQty > 0 {
		return decimal.NewFromInt(CoverageSentinelDays)
	}
	return decimal.Zero
}

// ComputeReplenishment runs the three-pass allocation: per-SKU requirement
// with internal-stock and max-coverage caps, per-article cap rescaling, then
// coverage/risk reporting. It is pure and deterministic.
func ComputeReplenishment(params ReplenishmentParams, inputs []ReplenishmentSkuInput) *ReplenishmentPlan {
	plan := ReplenishmentPlan{Params: params}
	factor := strategyCoverageFactor(params.Strategy)
	daysUntilArrival := utils.DaysBetween(params.TargetDate, params.ArrivalDate)

	// Pass 1: per-SKU base requirement and individual caps.
	items := make([]ReplenishmentItem, 0, len(inputs))
	articleDeficit := map[int]int{}
	for _, in := range inputs {
		item := ReplenishmentItem{
			ArticleId:        in.ArticleId,
			ColorId:          in.ColorId,
			SizeId:           in.SizeId,
			ExternalSku:      in.ExternalSku,
			AvgDailySales:    in.AvgDailySales,
			MarketplaceStock: in.MarketplaceStock,
			InternalStock:    in.InternalStock,
		}
		avg := in.AvgDailySales

		projected := in.MarketplaceStock - int(avg.Mul(decimal.NewFromInt(int64(daysUntilArrival))).IntPart())
		if projected < 0 {
			projected = 0
		}
		item.ProjectedStockAtArrival = projected

		baseRequired := int(avg.
			Mul(decimal.NewFromInt(int64(params.TargetCoverageDays))).
			Mul(factor).
			Sub(decimal.NewFromInt(int64(projected))).
			IntPart())
		if baseRequired < 0 {
			baseRequired = 0
		}
		item.BaseRequired = baseRequired
		articleDeficit[in.ArticleId] += baseRequired

		recommended := baseRequired
		if !avg.IsPositive() && params.ZeroSalesPolicy == models.ZeroSalesIgnore {
			recommended = 0
			item.IgnoredDueToZeroSales = true
		}
		if in.InternalStock <= 0 {
			recommended = 0
		} else if recommended > in.InternalStock {
			recommended = in.InternalStock
			item.addLimit(models.LimitInternalStock)
		}
		if avg.IsPositive() {
			maxUnitsAfter := avg.Mul(decimal.NewFromInt(int64(params.MaxCoverageDaysAfter)))
			if decimal.NewFromInt(int64(projected + recommended)).GreaterThan(maxUnitsAfter) {
				allowed := int(maxUnitsAfter.Sub(decimal.NewFromInt(int64(projected))).IntPart())
				if allowed < 0 {
					allowed = 0
				}
				recommended = allowed
				item.addLimit(models.LimitMaxCoverage)
			}
		}
		item.RecommendedQty = recommended
		items = append(items, item)
	}

	// Pass 2: per-article cap. Reductions reuse the max-coverage reason; the
	// cap is not reported as a distinct constraint.
	if params.MaxReplenishmentPerArticle != nil {
		articleCap := *params.MaxReplenishmentPerArticle
		byArticle := map[int][]int{}
		for i := range items {
			byArticle[items[i].ArticleId] = append(byArticle[items[i].ArticleId], i)
		}
		for _, indexes := range byArticle {
			sum := 0
			for _, i := range indexes {
				sum += items[i].RecommendedQty
			}
			if sum <= articleCap {
				continue
			}
			weights := make([]int, len(indexes))
			for j, i := range indexes {
				weights[j] = items[i].RecommendedQty
			}
			scaled := DistributeProportionally(articleCap, weights)
			for j, i := range indexes {
				if scaled[j] < items[i].RecommendedQty {
					items[i].addLimit(models.LimitMaxCoverage)
				}
				items[i].RecommendedQty = scaled[j]
			}
		}
	}

	// Pass 3: coverage/risk reporting and article rollups.
	articleRecommended := map[int]int{}
	for i := range items {
		articleRecommended[items[i].ArticleId] += items[i].RecommendedQty
	}
	for i := range items {
		item := &items[i]
		avg := item.AvgDailySales
		item.CoverageCurrent = effectiveCoverage(item.MarketplaceStock, avg)
		if avg.IsPositive() {
			item.CoverageAfter = decimal.NewFromInt(int64(item.ProjectedStockAtArrival + item.RecommendedQty)).Div(avg)
		} else {
			item.CoverageAfter = item.CoverageCurrent
		}
		item.InternalStockAfter = item.InternalStock - item.RecommendedQty
		if item.InternalStockAfter < 0 {
			item.InternalStockAfter = 0
		}
		item.OosRiskBefore = ClassifyOosRisk(item.MarketplaceStock, avg, item.CoverageCurrent)
		item.OosRiskAfter = ClassifyOosRisk(item.ProjectedStockAtArrival+item.RecommendedQty, avg, item.CoverageAfter)
		item.BelowMinCoverage = item.CoverageCurrent.LessThan(decimal.NewFromInt(int64(params.MinCoverageDays)))
		item.ArticleTotalDeficit = articleDeficit[item.ArticleId]
		item.ArticleTotalRecommended = articleRecommended[item.ArticleId]
		item.Explanation = buildReplenishmentExplanation(*item)
		plan.TotalRecommended += item.RecommendedQty
	}
	plan.Items = items

	articleIds := make([]int, 0, len(articleDeficit))
	for id := range articleDeficit {
		articleIds = append(articleIds, id)
	}
	sort.Ints(articleIds)
	for _, id := range articleIds {
		capApplied := params.MaxReplenishmentPerArticle != nil &&
			articleRecommended[id] == *params.MaxReplenishmentPerArticle &&
			articleDeficit[id] > articleRecommended[id]
		plan.Articles = append(plan.Articles, ReplenishmentArticleSummary{
			ArticleId:        id,
			TotalDeficit:     articleDeficit[id],
			TotalRecommended: articleRecommended[id],
			CapApplied:       capApplied,
		})
	}
	return &plan
}

func buildReplenishmentExplanation(item ReplenishmentItem) string {
	parts := []string{
		fmt.Sprintf("avg %s/day, marketplace stock %d, projected %d at arrival",
			item.AvgDailySales.StringFixed(2), item.MarketplaceStock, item.ProjectedStockAtArrival),
		fmt.Sprintf("base requirement %d, recommended %d", item.BaseRequired, item.RecommendedQty),
	}
	if item.IgnoredDueToZeroSales {
		parts = append(parts, "skipped: no sales history and zero-sales policy is ignore")
	}
	if item.LimitedBy(models.LimitInternalStock) {
		parts = append(parts, fmt.Sprintf("capped by internal stock %d", item.InternalStock))
	}
	if item.LimitedBy(models.LimitMaxCoverage) {
		parts = append(parts, "capped to keep coverage within the configured maximum")
	}
	if item.BelowMinCoverage {
		parts = append(parts, "current coverage below the configured minimum")
	}
	return strings.Join(parts, "; ")
}
