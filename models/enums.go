package models

// WarehouseType separates our own stock locations from marketplace ones.
// Internal warehouses are aggregated for bundle capacity; marketplace stock is
// tracked per external SKU in MarketplaceStock instead.
type WarehouseType string

const (
	WarehouseTypeInternal    WarehouseType = "internal"
	WarehouseTypeMarketplace WarehouseType = "marketplace"
)

// BundleRiskLevel is the five-state coverage classification used by the
// bundle risk endpoint and dashboards.
type BundleRiskLevel string

const (
	BundleRiskCritical  BundleRiskLevel = "critical"
	BundleRiskWarning   BundleRiskLevel = "warning"
	BundleRiskOk        BundleRiskLevel = "ok"
	BundleRiskOverstock BundleRiskLevel = "overstock"
	BundleRiskNoData    BundleRiskLevel = "no_data"
)

// OosRiskLevel is the collapsed three-state out-of-stock classification used
// per SKU by the replenishment planner (red <3 days, yellow 3-7, green otherwise).
type OosRiskLevel string

const (
	OosRiskRed    OosRiskLevel = "red"
	OosRiskYellow OosRiskLevel = "yellow"
	OosRiskGreen  OosRiskLevel = "green"
)

type ReplenishmentStrategy string

const (
	StrategyAggressive   ReplenishmentStrategy = "aggressive"
	StrategyNormal       ReplenishmentStrategy = "normal"
	StrategyConservative ReplenishmentStrategy = "conservative"
)

func (s ReplenishmentStrategy) IsValid() bool {
	switch s {
	case StrategyAggressive, StrategyNormal, StrategyConservative:
		return true
	}
	return false
}

// ZeroSalesPolicy governs SKUs without sales history: "keep" leaves them in
// the plan (with a zero baseline), "ignore" excludes them entirely.
type ZeroSalesPolicy string

const (
	ZeroSalesKeep   ZeroSalesPolicy = "keep"
	ZeroSalesIgnore ZeroSalesPolicy = "ignore"
)

func (p ZeroSalesPolicy) IsValid() bool {
	return p == ZeroSalesKeep || p == ZeroSalesIgnore
}

// LimitReason is the closed set of caps that can reduce a recommended
// transfer quantity.
type LimitReason string

const (
	LimitNone          LimitReason = ""
	LimitInternalStock LimitReason = "internal_stock"
	LimitMaxCoverage   LimitReason = "max_coverage"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft PurchaseOrderStatus = "draft"
)

type ShipmentStatus string

const (
	ShipmentStatusDraft ShipmentStatus = "draft"
)
