package planning

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/utils"
)

// BundleSnapshot is a point-in-time view of one (article, bundle type):
// ready bundles on the marketplace, bundles buildable from internal
// single-unit stock, and the sales rate over the observation window.
type BundleSnapshot struct {
	ArticleId        int             `json:"article_id"`
	BundleTypeId     int             `json:"bundle_type_id"`
	AsOf             time.Time       `json:"as_of"`
	MarketplaceReady int             `json:"marketplace_ready"`
	InternalReady    int             `json:"internal_ready"`
	Potential        int             `json:"potential"`
	TotalAvailable   int             `json:"total_available"`
	AvgDailySales    decimal.Decimal `json:"avg_daily_sales"`
	DaysOfCover      decimal.Decimal `json:"days_of_cover"`
	CoverDefined     bool            `json:"-"`
}

// BuildBundleSnapshot assembles the snapshot. When asOf is zero it anchors
// the observation window at the most recent sales date on record, so stale
// data is judged against its own timeline rather than the wall clock.
func BuildBundleSnapshot(ctx context.Context, articleId, bundleTypeId int, asOf time.Time) (*BundleSnapshot, error) {
	db := config.GetDB()

	var mappings []models.ArticleMarketplaceMapping
	err := db.WithContext(ctx).
		Where("article_id = ? AND bundle_type_id = ?", articleId, bundleTypeId).
		Find(&mappings).Error
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

	snapshot := BundleSnapshot{ArticleId: articleId, BundleTypeId: bundleTypeId, AsOf: asOf}

	if len(externalSkus) > 0 {
		var wbReady int
		err = db.WithContext(ctx).Model(&models.MarketplaceStock{}).
			Select("COALESCE(SUM(stock_qty), 0)").
			Where("external_sku IN ?", externalSkus).
			Scan(&wbReady).Error
		if err != nil {
			return nil, err
		}
		snapshot.MarketplaceReady = wbReady

		if snapshot.AsOf.IsZero() {
			var latest sql.NullTime
			err = db.WithContext(ctx).Model(&models.MarketplaceSalesDaily{}).
				Select("MAX(date)").
				Where("external_sku IN ?", externalSkus).
				Scan(&latest).Error
			if err != nil {
				return nil, err
			}
			if latest.Valid {
				snapshot.AsOf = latest.Time
			}
		}
	}
	if snapshot.AsOf.IsZero() {
		snapshot.AsOf = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if len(externalSkus) > 0 {
		windowStart := snapshot.AsOf.AddDate(0, 0, -(DemandWindowDays - 1))
		var salesAgg struct {
			Total   int
			MinDate sql.NullTime
			MaxDate sql.NullTime
		}
		err = db.WithContext(ctx).Model(&models.MarketplaceSalesDaily{}).
			Select("COALESCE(SUM(sales_qty), 0) AS total, MIN(date) AS min_date, MAX(date) AS max_date").
			Where("external_sku IN ? AND date BETWEEN ? AND ?", externalSkus, windowStart, snapshot.AsOf).
			Scan(&salesAgg).Error
		if err != nil {
			return nil, err
		}
		if salesAgg.Total > 0 && salesAgg.MinDate.Valid && salesAgg.MaxDate.Valid {
			// Inclusive span of the days actually observed.
			span := utils.DaysBetween(salesAgg.MinDate.Time, salesAgg.MaxDate.Time) + 1
			snapshot.AvgDailySales = decimal.NewFromInt(int64(salesAgg.Total)).
				Div(decimal.NewFromInt(int64(span)))
		}
	}

	warehouse, err := models.GetFirstInternalWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	if warehouse != nil {
		availability, err := BundleAvailability(ctx, articleId, bundleTypeId, warehouse.ID)
		if err != nil && !utils.IsNotFound(err) {
			return nil, err
		}
		if err == nil {
			snapshot.Potential = availability.Total
		}
	}

	snapshot.TotalAvailable = snapshot.MarketplaceReady + snapshot.InternalReady + snapshot.Potential
	if snapshot.AvgDailySales.IsPositive() {
		snapshot.CoverDefined = true
		snapshot.DaysOfCover = decimal.NewFromInt(int64(snapshot.TotalAvailable)).
			Div(snapshot.AvgDailySales)
	}
	return &snapshot, nil
}
