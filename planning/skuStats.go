package planning

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
)

// ArticleStats rolls up marketplace sales and stock for one article over the
// observation window.
type ArticleStats struct {
	ArticleId        int                 `json:"article_id"`
	ArticleCode      string              `json:"article_code"`
	ArticleName      string              `json:"article_name"`
	Sales1d          int                 `json:"sales_1d"`
	Sales7d          int                 `json:"sales_7d"`
	Sales30d         int                 `json:"sales_30d"`
	StockTotal       int                 `json:"stock_total"`
	StockByWarehouse map[string]int      `json:"stock_by_warehouse"`
	AvgDailySales    decimal.Decimal     `json:"avg_daily_sales"`
	CoverageDays     decimal.Decimal     `json:"coverage_days"`
	OosRisk          models.OosRiskLevel `json:"oos_risk"`
}

// ClassifyOosRisk collapses coverage into the three-state out-of-stock
// ladder. Zero stock with positive sales is red regardless of the coverage
// thresholds; zero sales means no urgency at all.
func ClassifyOosRisk(stockQty int, avgDailySales, coverageDays decimal.Decimal) models.OosRiskLevel {
	if !avgDailySales.IsPositive() {
		return models.OosRiskGreen
	}
	if stockQty == 0 {
		return models.OosRiskRed
	}
	switch {
	case coverageDays.LessThan(decimal.NewFromInt(3)):
		return models.OosRiskRed
	case coverageDays.LessThanOrEqual(decimal.NewFromInt(7)):
		return models.OosRiskYellow
	default:
		return models.OosRiskGreen
	}
}

// GetArticleStats aggregates sales and stock for one article as of a date.
func GetArticleStats(ctx context.Context, articleId int, asOf time.Time) (*ArticleStats, error) {
	article, err := models.GetArticle(ctx, articleId)
	if err != nil {
		return nil, err
	}
	stats := ArticleStats{
		ArticleId:        articleId,
		ArticleCode:      article.Code,
		ArticleName:      article.Name,
		StockByWarehouse: map[string]int{},
	}

	db := config.GetDB()
	var mappings []models.ArticleMarketplaceMapping
	err = db.WithContext(ctx).Where("article_id = ?", articleId).Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	externalSkus := make([]string, 0, len(mappings))
	seen := map[string]bool{}
	for _, m := range mappings {
		if !seen[m.ExternalSku] {
			seen[m.ExternalSku] = true
			externalSkus = append(externalSkus, m.ExternalSku)
		}
	}
	if len(externalSkus) == 0 {
		stats.OosRisk = models.OosRiskGreen
		return &stats, nil
	}

	for _, window := range []struct {
		days   int
		target *int
	}{
		{1, &stats.Sales1d},
		{7, &stats.Sales7d},
		{30, &stats.Sales30d},
	} {
		from := asOf.AddDate(0, 0, -(window.days - 1))
		err = db.WithContext(ctx).Model(&models.MarketplaceSalesDaily{}).
			Select("COALESCE(SUM(sales_qty), 0)").
			Where("external_sku IN ? AND date BETWEEN ? AND ?", externalSkus, from, asOf).
			Scan(window.target).Error
		if err != nil {
			return nil, err
		}
	}

	var stocks []models.MarketplaceStock
	err = db.WithContext(ctx).Where("external_sku IN ?", externalSkus).Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	for _, s := range stocks {
		stats.StockTotal += s.StockQty
		if s.WarehouseName != "" {
			stats.StockByWarehouse[s.WarehouseName] += s.StockQty
		}
	}

	if stats.Sales30d > 0 {
		stats.AvgDailySales = decimal.NewFromInt(int64(stats.Sales30d)).Div(decimal.NewFromInt(30))
		stats.CoverageDays = decimal.NewFromInt(int64(stats.StockTotal)).Div(stats.AvgDailySales)
	} else if stats.StockTotal > 0 {
		stats.CoverageDays = decimal.NewFromInt(CoverageSentinelDays)
	}
	stats.OosRisk = ClassifyOosRisk(stats.StockTotal, stats.AvgDailySales, stats.CoverageDays)
	return &stats, nil
}

// ListArticleStats aggregates stats for every article that has at least one
// marketplace mapping, ordered by article id.
func ListArticleStats(ctx context.Context, asOf time.Time) ([]ArticleStats, error) {
	db := config.GetDB()
	var articleIds []int
	err := db.WithContext(ctx).Model(&models.ArticleMarketplaceMapping{}).
		Distinct("article_id").
		Pluck("article_id", &articleIds).Error
	if err != nil {
		return nil, err
	}
	sort.Ints(articleIds)

	stats := make([]ArticleStats, 0, len(articleIds))
	for _, articleId := range articleIds {
		s, err := GetArticleStats(ctx, articleId, asOf)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *s)
	}
	return stats, nil
}
