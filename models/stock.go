package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance is the single-unit stock of a SKU at one of our warehouses.
type StockBalance struct {
	ID          int       `gorm:"primary_key" json:"id"`
	SkuUnitId   int       `gorm:"not null;uniqueIndex:uq_stock_balance_sku_warehouse" json:"sku_unit_id"`
	WarehouseId int       `gorm:"not null;uniqueIndex:uq_stock_balance_sku_warehouse" json:"warehouse_id"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MarketplaceStock mirrors the marketplace's own per-warehouse stock report,
// keyed by the marketplace's external SKU.
type MarketplaceStock struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ExternalSku   string    `gorm:"size:191;not null;uniqueIndex:uq_mp_stock_sku_warehouse" json:"external_sku"`
	WarehouseId   int       `gorm:"uniqueIndex:uq_mp_stock_sku_warehouse" json:"warehouse_id"`
	WarehouseName string    `gorm:"size:255" json:"warehouse_name"`
	StockQty      int       `gorm:"not null;default:0" json:"stock_qty"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MarketplaceSalesDaily is one day of marketplace sales for one external SKU.
type MarketplaceSalesDaily struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ExternalSku string          `gorm:"size:191;not null;uniqueIndex:uq_mp_sales_sku_date" json:"external_sku"`
	Date        time.Time       `gorm:"type:date;not null;uniqueIndex:uq_mp_sales_sku_date" json:"date"`
	SalesQty    int             `gorm:"not null;default:0" json:"sales_qty"`
	Revenue     decimal.Decimal `gorm:"type:decimal(12,2)" json:"revenue"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// ArticleMarketplaceMapping links an article to the external SKUs the
// marketplace sells it under (many external SKUs per article). Bundle
// listings additionally carry the bundle type and size they represent.
type ArticleMarketplaceMapping struct {
	ID           int    `gorm:"primary_key" json:"id"`
	ArticleId    int    `gorm:"not null;uniqueIndex:uq_article_mp_mapping" json:"article_id"`
	ExternalSku  string `gorm:"size:191;not null;uniqueIndex:uq_article_mp_mapping" json:"external_sku"`
	BundleTypeId *int   `json:"bundle_type_id"`
	ColorId      *int   `json:"color_id"`
	SizeId       *int   `json:"size_id"`
}
