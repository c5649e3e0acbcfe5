package models

import (
	"log"

	"github.com/whitestitch/planner_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Article{}, &Color{}, &Size{}, &SkuUnit{},
		&BundleType{}, &BundleRecipe{}, &ElasticType{},
		&Warehouse{}, &StockBalance{},
		&MarketplaceStock{}, &MarketplaceSalesDaily{}, &ArticleMarketplaceMapping{},
		&PlanningSettings{}, &ColorPlanningSettings{}, &ElasticPlanningSettings{},
		&ArticlePlanningSettings{}, &GlobalPlanningSettings{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&Shipment{}, &ShipmentItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
