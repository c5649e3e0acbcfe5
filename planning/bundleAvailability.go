package planning

import (
	"context"
	"sort"

	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
)

type SizeCapacity struct {
	SizeId   int `json:"size_id"`
	Capacity int `json:"capacity"`
}

type BundleAvailabilityResult struct {
	ArticleId    int            `json:"article_id"`
	BundleTypeId int            `json:"bundle_type_id"`
	WarehouseId  int            `json:"warehouse_id"`
	Sizes        []SizeCapacity `json:"sizes"`
	Total        int            `json:"total"`
}

// bundleStock is the per-size, per-color single-unit stock of the recipe's
// colors at one warehouse. Only (size, color) pairs with an existing SKU are
// present; a missing stock row counts as zero.
type bundleStock struct {
	requiredColors []int
	bySizeColor    map[int]map[int]int
}

func loadBundleStock(ctx context.Context, articleId, bundleTypeId, warehouseId int) (*bundleStock, error) {
	if _, err := models.GetArticle(ctx, articleId); err != nil {
		return nil, err
	}
	if _, err := models.GetBundleType(ctx, bundleTypeId); err != nil {
		return nil, err
	}
	if _, err := models.GetWarehouse(ctx, warehouseId); err != nil {
		return nil, err
	}
	recipe, err := models.GetBundleRecipe(ctx, articleId, bundleTypeId)
	if err != nil {
		return nil, err
	}

	colorSet := map[int]bool{}
	var requiredColors []int
	for _, row := range recipe {
		if !colorSet[row.ColorId] {
			colorSet[row.ColorId] = true
			requiredColors = append(requiredColors, row.ColorId)
		}
	}
	sort.Ints(requiredColors)

	skuUnits, err := models.GetSkuUnitsByArticle(ctx, articleId)
	if err != nil {
		return nil, err
	}
	skuIds := make([]int, 0, len(skuUnits))
	relevant := make([]*models.SkuUnit, 0, len(skuUnits))
	for _, su := range skuUnits {
		if colorSet[su.ColorId] {
			relevant = append(relevant, su)
			skuIds = append(skuIds, su.ID)
		}
	}

	quantities := map[int]int{}
	if len(skuIds) > 0 {
		var balances []models.StockBalance
		err = config.GetDB().WithContext(ctx).
			Where("sku_unit_id IN ? AND warehouse_id = ?", skuIds, warehouseId).
			Find(&balances).Error
		if err != nil {
			return nil, err
		}
		for _, b := range balances {
			quantities[b.SkuUnitId] = b.Quantity
		}
	}

	stock := bundleStock{
		requiredColors: requiredColors,
		bySizeColor:    map[int]map[int]int{},
	}
	for _, su := range relevant {
		if stock.bySizeColor[su.SizeId] == nil {
			stock.bySizeColor[su.SizeId] = map[int]int{}
		}
		qty := quantities[su.ID]
		if qty < 0 {
			qty = 0
		}
		stock.bySizeColor[su.SizeId][su.ColorId] = qty
	}
	return &stock, nil
}

// BundleAvailability computes how many complete bundles can be assembled at
// a warehouse, size by size. A bundle needs one unit of every recipe color,
// so per-size capacity is the bottleneck minimum, not a sum.
func BundleAvailability(ctx context.Context, articleId, bundleTypeId, warehouseId int) (*BundleAvailabilityResult, error) {
	stock, err := loadBundleStock(ctx, articleId, bundleTypeId, warehouseId)
	if err != nil {
		return nil, err
	}
	sizes, total := ComputeBundleAvailability(stock.requiredColors, stock.bySizeColor)
	return &BundleAvailabilityResult{
		ArticleId:    articleId,
		BundleTypeId: bundleTypeId,
		WarehouseId:  warehouseId,
		Sizes:        sizes,
		Total:        total,
	}, nil
}

// ComputeBundleAvailability is the pure bottleneck computation: for every
// size that has at least one recipe-color SKU, capacity is the minimum stock
// over the required colors, and zero when any required color has no SKU for
// that size.
func ComputeBundleAvailability(requiredColors []int, bySizeColor map[int]map[int]int) ([]SizeCapacity, int) {
	sizeIds := make([]int, 0, len(bySizeColor))
	for sizeId := range bySizeColor {
		sizeIds = append(sizeIds, sizeId)
	}
	sort.Ints(sizeIds)

	sizes := make([]SizeCapacity, 0, len(sizeIds))
	total := 0
	for _, sizeId := range sizeIds {
		capacity := 0
		complete := true
		for i, colorId := range requiredColors {
			qty, ok := bySizeColor[sizeId][colorId]
			if !ok {
				complete = false
				break
			}
			if i == 0 || qty < capacity {
				capacity = qty
			}
		}
		if !complete || len(requiredColors) == 0 {
			capacity = 0
		}
		sizes = append(sizes, SizeCapacity{SizeId: sizeId, Capacity: capacity})
		total += capacity
	}
	return sizes, total
}
