package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"gorm.io/gorm"
)

// PlanningSettings is the per-article ordering policy: batch minima,
// coverage thresholds and the strictness multiplier applied to raw deficit.
type PlanningSettings struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ArticleId          int             `gorm:"not null;uniqueIndex" json:"article_id"`
	IsActive           *bool           `gorm:"not null;default:true" json:"is_active"`
	MinFabricBatch     int             `gorm:"not null;default:0" json:"min_fabric_batch"`
	MinElasticBatch    int             `gorm:"not null;default:0" json:"min_elastic_batch"`
	AlertThresholdDays int             `gorm:"not null;default:14" json:"alert_threshold_days"`
	SafetyStockDays    int             `gorm:"not null;default:7" json:"safety_stock_days"`
	Strictness         decimal.Decimal `gorm:"type:decimal(6,3);not null;default:1" json:"strictness"`
	Notes              string          `gorm:"size:500" json:"notes"`
}

// ColorPlanningSettings carries an optional fabric batch minimum for one
// color of an article.
type ColorPlanningSettings struct {
	ID                int  `gorm:"primary_key" json:"id"`
	ArticleId         int  `gorm:"not null;uniqueIndex:uq_color_planning_article_color" json:"article_id"`
	ColorId           int  `gorm:"not null;uniqueIndex:uq_color_planning_article_color" json:"color_id"`
	FabricMinBatchQty *int `json:"fabric_min_batch_qty"`
}

// ElasticPlanningSettings carries an optional elastic batch minimum per
// (article, elastic type); an article may have several, and the effective
// minimum is the largest configured value.
type ElasticPlanningSettings struct {
	ID                 int  `gorm:"primary_key" json:"id"`
	ArticleId          int  `gorm:"not null;uniqueIndex:uq_elastic_planning_article_type" json:"article_id"`
	ElasticTypeId      int  `gorm:"not null;uniqueIndex:uq_elastic_planning_article_type" json:"elastic_type_id"`
	ElasticMinBatchQty *int `json:"elastic_min_batch_qty"`
}

// ArticlePlanningSettings holds per-article forecast overrides; absent values
// fall back to GlobalPlanningSettings defaults.
type ArticlePlanningSettings struct {
	ID                  int   `gorm:"primary_key" json:"id"`
	ArticleId           int   `gorm:"not null;uniqueIndex" json:"article_id"`
	IncludeInPlanning   *bool `gorm:"not null;default:true" json:"include_in_planning"`
	Priority            int   `gorm:"not null;default:0" json:"priority"`
	TargetCoverageDays  *int  `json:"target_coverage_days"`
	LeadTimeDays        *int  `json:"lead_time_days"`
	ServiceLevelPercent *int  `json:"service_level_percent"`
}

// GlobalPlanningSettings is a single row of portfolio-wide defaults.
type GlobalPlanningSettings struct {
	ID                        int `gorm:"primary_key" json:"id"`
	DefaultTargetCoverageDays int `gorm:"not null;default:60" json:"default_target_coverage_days"`
	DefaultLeadTimeDays       int `gorm:"not null;default:70" json:"default_lead_time_days"`
	DefaultServiceLevel       int `gorm:"not null;default:90" json:"default_service_level_percent"`
	DefaultFabricMinBatchQty  int `gorm:"not null;default:7000" json:"default_fabric_min_batch_qty"`
	DefaultElasticMinBatchQty int `gorm:"not null;default:3000" json:"default_elastic_min_batch_qty"`
}

const FallbackTargetCoverageDays = 60

// CoveragePolicy is the resolved forecast-horizon policy handed to the
// demand estimator, so the engine never reaches into storage mid-calculation.
type CoveragePolicy struct {
	TargetCoverageDays int
	FromArticle        bool
}

// ResolveCoveragePolicy resolves the effective target coverage for one
// article: article override first, then the global default row, then the
// compiled-in fallback.
func ResolveCoveragePolicy(ctx context.Context, db *gorm.DB, articleId int) (CoveragePolicy, error) {
	var aps ArticlePlanningSettings
	err := db.WithContext(ctx).Where("article_id = ?", articleId).First(&aps).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return CoveragePolicy{}, err
	}
	if err == nil && aps.TargetCoverageDays != nil {
		return CoveragePolicy{TargetCoverageDays: *aps.TargetCoverageDays, FromArticle: true}, nil
	}

	var gps GlobalPlanningSettings
	err = db.WithContext(ctx).First(&gps).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return CoveragePolicy{}, err
	}
	if err == nil {
		return CoveragePolicy{TargetCoverageDays: gps.DefaultTargetCoverageDays}, nil
	}
	return CoveragePolicy{TargetCoverageDays: FallbackTargetCoverageDays}, nil
}

// GetPlanningSettingsByArticle returns nil when the article has no policy row.
func GetPlanningSettingsByArticle(ctx context.Context, articleId int) (*PlanningSettings, error) {
	var ps PlanningSettings
	err := config.GetDB().WithContext(ctx).Where("article_id = ?", articleId).First(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}
