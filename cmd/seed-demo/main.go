// seed-demo loads a small demo catalog: one article in two colors and three
// sizes, a bundle recipe, warehouses, planning policies, marketplace mappings
// and a month of synthetic sales. Safe to rerun: it upserts by natural keys.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(tx)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("demo catalog seeded")
}

func seed(tx *gorm.DB) error {
	article := models.Article{Code: "TEE-001", Name: "Demo tee"}
	if err := tx.Where(models.Article{Code: article.Code}).FirstOrCreate(&article).Error; err != nil {
		return err
	}

	colors := []models.Color{
		{InnerCode: "BLK", PantoneCode: "19-4005", Description: "Black"},
		{InnerCode: "WHT", PantoneCode: "11-0601", Description: "White"},
	}
	for i := range colors {
		if err := tx.Where(models.Color{InnerCode: colors[i].InnerCode}).FirstOrCreate(&colors[i]).Error; err != nil {
			return err
		}
	}

	sizes := []models.Size{
		{Label: "S", SortOrder: 1},
		{Label: "M", SortOrder: 2},
		{Label: "L", SortOrder: 3},
	}
	for i := range sizes {
		if err := tx.Where(models.Size{Label: sizes[i].Label}).FirstOrCreate(&sizes[i]).Error; err != nil {
			return err
		}
	}

	var skuUnits []models.SkuUnit
	for _, color := range colors {
		for _, size := range sizes {
			sku := models.SkuUnit{ArticleId: article.ID, ColorId: color.ID, SizeId: size.ID}
			if err := tx.Where(sku).FirstOrCreate(&sku).Error; err != nil {
				return err
			}
			skuUnits = append(skuUnits, sku)
		}
	}

	internal := models.Warehouse{Code: "MAIN", Name: "Main warehouse", Type: models.WarehouseTypeInternal}
	if err := tx.Where(models.Warehouse{Code: internal.Code}).FirstOrCreate(&internal).Error; err != nil {
		return err
	}
	marketplace := models.Warehouse{Code: "MP-CENTRAL", Name: "Marketplace central", Type: models.WarehouseTypeMarketplace}
	if err := tx.Where(models.Warehouse{Code: marketplace.Code}).FirstOrCreate(&marketplace).Error; err != nil {
		return err
	}

	bundleType := models.BundleType{Code: "PAIR-2", Name: "Two-color pair"}
	if err := tx.Where(models.BundleType{Code: bundleType.Code}).FirstOrCreate(&bundleType).Error; err != nil {
		return err
	}
	for position, color := range colors {
		recipe := models.BundleRecipe{
			ArticleId:    article.ID,
			BundleTypeId: bundleType.ID,
			ColorId:      color.ID,
			Position:     position + 1,
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&recipe).Error
		if err != nil {
			return err
		}
	}

	for i, sku := range skuUnits {
		balance := models.StockBalance{SkuUnitId: sku.ID, WarehouseId: internal.ID}
		if err := tx.Where(balance).FirstOrCreate(&balance).Error; err != nil {
			return err
		}
		err := tx.Model(&balance).Update("quantity", 40+10*i).Error
		if err != nil {
			return err
		}
	}

	settings := models.PlanningSettings{ArticleId: article.ID}
	if err := tx.Where(models.PlanningSettings{ArticleId: article.ID}).FirstOrCreate(&settings).Error; err != nil {
		return err
	}
	err := tx.Model(&settings).Updates(map[string]interface{}{
		"is_active":            true,
		"min_fabric_batch":     50,
		"min_elastic_batch":    30,
		"alert_threshold_days": 14,
		"safety_stock_days":    7,
		"strictness":           decimal.NewFromFloat(1.1),
	}).Error
	if err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, sku := range skuUnits {
		externalSku := fmt.Sprintf("MP-%d", 700000+sku.ID)
		mapping := models.ArticleMarketplaceMapping{
			ArticleId:   article.ID,
			ExternalSku: externalSku,
			ColorId:     &skuUnits[i].ColorId,
			SizeId:      &skuUnits[i].SizeId,
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mapping).Error
		if err != nil {
			return err
		}

		stock := models.MarketplaceStock{
			ExternalSku:   externalSku,
			WarehouseId:   marketplace.ID,
			WarehouseName: marketplace.Name,
		}
		if err := tx.Where(models.MarketplaceStock{ExternalSku: externalSku, WarehouseId: marketplace.ID}).
			FirstOrCreate(&stock).Error; err != nil {
			return err
		}
		if err := tx.Model(&stock).Update("stock_qty", 5+3*i).Error; err != nil {
			return err
		}

		// A month of steady demand, heavier on the first SKUs.
		for day := 0; day < 30; day++ {
			sale := models.MarketplaceSalesDaily{
				ExternalSku: externalSku,
				Date:        today.AddDate(0, 0, -day),
				SalesQty:    1 + i%3,
				Revenue:     decimal.NewFromInt(int64((1 + i%3) * 1490)),
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sale).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}
