package models

import (
	"time"
)

// Shipment is a draft marketplace transfer created from a replenishment plan.
// It freezes both the plan parameters and the per-SKU recommendations;
// FinalQty starts equal to RecommendedQty and may be edited while in draft.
type Shipment struct {
	ID                         int                   `gorm:"primary_key" json:"id"`
	Status                     ShipmentStatus        `gorm:"size:50;not null" json:"status"`
	TargetDate                 time.Time             `gorm:"type:date;not null" json:"target_date"`
	ArrivalDate                time.Time             `gorm:"type:date;not null" json:"arrival_date"`
	Comment                    string                `gorm:"size:1000" json:"comment"`
	Strategy                   ReplenishmentStrategy `gorm:"size:50;not null" json:"strategy"`
	ZeroSalesPolicy            ZeroSalesPolicy       `gorm:"size:50;not null" json:"zero_sales_policy"`
	TargetCoverageDays         int                   `gorm:"not null" json:"target_coverage_days"`
	MinCoverageDays            int                   `gorm:"not null" json:"min_coverage_days"`
	MaxCoverageDaysAfter       int                   `gorm:"not null" json:"max_coverage_days_after"`
	MaxReplenishmentPerArticle *int                  `json:"max_replenishment_per_article"`
	CreatedAt                  time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                  time.Time             `gorm:"autoUpdateTime" json:"updated_at"`

	Items []ShipmentItem `gorm:"foreignKey:ShipmentId" json:"items"`
}

type ShipmentItem struct {
	ID                        int          `gorm:"primary_key" json:"id"`
	ShipmentId                int          `gorm:"not null;index" json:"shipment_id"`
	ArticleId                 int          `gorm:"not null" json:"article_id"`
	ColorId                   int          `gorm:"not null" json:"color_id"`
	SizeId                    int          `gorm:"not null" json:"size_id"`
	ExternalSku               string       `gorm:"size:191" json:"external_sku"`
	RecommendedQty            int          `gorm:"not null" json:"recommended_qty"`
	FinalQty                  int          `gorm:"not null" json:"final_qty"`
	InternalStockAvailable    int          `gorm:"not null" json:"internal_stock_available"`
	OosRiskBefore             OosRiskLevel `gorm:"size:50;not null" json:"oos_risk_before"`
	OosRiskAfter              OosRiskLevel `gorm:"size:50;not null" json:"oos_risk_after"`
	LimitedByInternalStock    bool         `gorm:"not null" json:"limited_by_internal_stock"`
	LimitedByMaxCoverage      bool         `gorm:"not null" json:"limited_by_max_coverage"`
	IgnoredDueToZeroSales     bool         `gorm:"not null" json:"ignored_due_to_zero_sales"`
	BelowMinCoverageThreshold bool         `gorm:"not null" json:"below_min_coverage_threshold"`
	ArticleTotalDeficit       int          `gorm:"not null" json:"article_total_deficit"`
	ArticleTotalRecommended   int          `gorm:"not null" json:"article_total_recommended"`
	Explanation               string       `gorm:"type:text" json:"explanation"`
}
