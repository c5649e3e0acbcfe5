package planning

import (
	"context"
	"sort"

	"github.com/whitestitch/planner_backend/utils"
)

type ColorSizeDeficit struct {
	ColorId int `json:"color_id"`
	SizeId  int `json:"size_id"`
	Current int `json:"current"`
	Deficit int `json:"deficit"`
}

type ColorDeficitTotal struct {
	ColorId int `json:"color_id"`
	Deficit int `json:"deficit"`
}

type BundleDeficitResult struct {
	ArticleId    int                 `json:"article_id"`
	BundleTypeId int                 `json:"bundle_type_id"`
	WarehouseId  int                 `json:"warehouse_id"`
	TargetCount  int                 `json:"target_count"`
	Lines        []ColorSizeDeficit  `json:"lines"`
	ColorTotals  []ColorDeficitTotal `json:"color_totals"`
}

// BundleDeficit computes, per recipe color and size, how many more units are
// needed at a warehouse to reach targetCount bundles. Unlike availability
// this is per-color independent, for component purchasing rather than bundle
// counting.
func BundleDeficit(ctx context.Context, articleId, bundleTypeId, warehouseId, targetCount int) (*BundleDeficitResult, error) {
	if targetCount <= 0 {
		return nil, utils.InvalidInputError("target_count must be positive")
	}
	stock, err := loadBundleStock(ctx, articleId, bundleTypeId, warehouseId)
	if err != nil {
		return nil, err
	}
	lines, colorTotals := ComputeBundleDeficit(stock.requiredColors, stock.bySizeColor, targetCount)
	return &BundleDeficitResult{
		ArticleId:    articleId,
		BundleTypeId: bundleTypeId,
		WarehouseId:  warehouseId,
		TargetCount:  targetCount,
		Lines:        lines,
		ColorTotals:  colorTotals,
	}, nil
}

// ComputeBundleDeficit is the pure per-color shortfall computation over the
// (size, color) pairs that exist as SKUs.
func ComputeBundleDeficit(requiredColors []int, bySizeColor map[int]map[int]int, targetCount int) ([]ColorSizeDeficit, []ColorDeficitTotal) {
	sizeIds := make([]int, 0, len(bySizeColor))
	for sizeId := range bySizeColor {
		sizeIds = append(sizeIds, sizeId)
	}
	sort.Ints(sizeIds)

	var lines []ColorSizeDeficit
	totals := map[int]int{}
	for _, colorId := range requiredColors {
		for _, sizeId := range sizeIds {
			qty, ok := bySizeColor[sizeId][colorId]
			if !ok {
				continue
			}
			deficit := targetCount - qty
			if deficit < 0 {
				deficit = 0
			}
			lines = append(lines, ColorSizeDeficit{
				ColorId: colorId,
				SizeId:  sizeId,
				Current: qty,
				Deficit: deficit,
			})
			totals[colorId] += deficit
		}
	}

	colorTotals := make([]ColorDeficitTotal, 0, len(totals))
	for _, colorId := range requiredColors {
		if _, ok := totals[colorId]; !ok {
			continue
		}
		colorTotals = append(colorTotals, ColorDeficitTotal{ColorId: colorId, Deficit: totals[colorId]})
	}
	return lines, colorTotals
}
