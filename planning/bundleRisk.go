package planning

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
)

const (
	DefaultSafetyStockDays    = 7
	DefaultAlertThresholdDays = 14

	// The overstock threshold is always derived, never configured directly.
	overstockMultiplier = 3
)

type BundleRiskEntry struct {
	ArticleId          int                    `json:"article_id"`
	ArticleCode        string                 `json:"article_code"`
	BundleTypeId       int                    `json:"bundle_type_id"`
	RiskLevel          models.BundleRiskLevel `json:"risk_level"`
	TotalAvailable     int                    `json:"total_available"`
	AvgDailySales      decimal.Decimal        `json:"avg_daily_sales"`
	DaysOfCover        decimal.Decimal        `json:"days_of_cover"`
	SafetyStockDays    int                    `json:"safety_stock_days"`
	AlertThresholdDays int                    `json:"alert_threshold_days"`
}

// ClassifyBundleRiskLevel maps coverage against the threshold ladder. The
// boundary inclusivity is deliberate: cover equal to the safety threshold is
// still CRITICAL, equal to the alert threshold is still WARNING, and equal
// to three times the alert threshold is already OVERSTOCK.
func ClassifyBundleRiskLevel(avgDailySales decimal.Decimal, totalAvailable int, daysOfCover decimal.Decimal, coverDefined bool, safetyStockDays, alertThresholdDays int) models.BundleRiskLevel {
	overstockThreshold := alertThresholdDays * overstockMultiplier
	if !avgDailySales.IsPositive() {
		if totalAvailable > 0 {
			return models.BundleRiskOverstock
		}
		return models.BundleRiskNoData
	}
	if !coverDefined {
		return models.BundleRiskNoData
	}
	switch {
	case daysOfCover.LessThanOrEqual(decimal.NewFromInt(int64(safetyStockDays))):
		return models.BundleRiskCritical
	case daysOfCover.LessThanOrEqual(decimal.NewFromInt(int64(alertThresholdDays))):
		return models.BundleRiskWarning
	case daysOfCover.LessThan(decimal.NewFromInt(int64(overstockThreshold))):
		return models.BundleRiskOk
	case daysOfCover.GreaterThanOrEqual(decimal.NewFromInt(int64(overstockThreshold))):
		return models.BundleRiskOverstock
	}
	return models.BundleRiskNoData
}

// ClassifyBundleRisks builds risk entries for every (article, bundle type)
// pair of the requested articles, or of all active-policy articles when no
// ids are given. Unknown article ids are skipped, not failed.
func ClassifyBundleRisks(ctx context.Context, articleIds []int, asOf time.Time) ([]BundleRiskEntry, error) {
	db := config.GetDB()

	if len(articleIds) == 0 {
		var settings []models.PlanningSettings
		err := db.WithContext(ctx).Order("article_id").Find(&settings).Error
		if err != nil {
			return nil, err
		}
		for _, ps := range settings {
			if ps.IsActive == nil || *ps.IsActive {
				articleIds = append(articleIds, ps.ArticleId)
			}
		}
	}

	var entries []BundleRiskEntry
	for _, articleId := range articleIds {
		article, err := models.GetArticle(ctx, articleId)
		if err != nil {
			continue
		}
		safetyDays := DefaultSafetyStockDays
		alertDays := DefaultAlertThresholdDays
		settings, err := models.GetPlanningSettingsByArticle(ctx, articleId)
		if err != nil {
			return nil, err
		}
		if settings != nil {
			if settings.SafetyStockDays > 0 {
				safetyDays = settings.SafetyStockDays
			}
			if settings.AlertThresholdDays > 0 {
				alertDays = settings.AlertThresholdDays
			}
		}

		var bundleTypeIds []int
		err = db.WithContext(ctx).Model(&models.BundleRecipe{}).
			Distinct("bundle_type_id").
			Where("article_id = ?", articleId).
			Order("bundle_type_id").
			Pluck("bundle_type_id", &bundleTypeIds).Error
		if err != nil {
			return nil, err
		}

		for _, bundleTypeId := range bundleTypeIds {
			snapshot, err := BuildBundleSnapshot(ctx, articleId, bundleTypeId, asOf)
			if err != nil {
				return nil, err
			}
			entries = append(entries, BundleRiskEntry{
				ArticleId:          articleId,
				ArticleCode:        article.Code,
				BundleTypeId:       bundleTypeId,
				RiskLevel:          ClassifyBundleRiskLevel(snapshot.AvgDailySales, snapshot.TotalAvailable, snapshot.DaysOfCover, snapshot.CoverDefined, safetyDays, alertDays),
				TotalAvailable:     snapshot.TotalAvailable,
				AvgDailySales:      snapshot.AvgDailySales,
				DaysOfCover:        snapshot.DaysOfCover,
				SafetyStockDays:    safetyDays,
				AlertThresholdDays: alertDays,
			})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].ArticleId != entries[b].ArticleId {
			return entries[a].ArticleId < entries[b].ArticleId
		}
		return entries[a].BundleTypeId < entries[b].BundleTypeId
	})
	return entries, nil
}
