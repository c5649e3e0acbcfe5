package planning

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
)

// AllocationSku is one allocation slot of an article: a color/size unit with
// the sort key used for remainder tie-breaking.
type AllocationSku struct {
	SkuUnitId     int
	ColorId       int
	SizeId        int
	SizeSortOrder int
}

// AllocationInput is everything the allocation algorithm needs for one
// article; policies are resolved by the caller up front.
type AllocationInput struct {
	ArticleId       int
	DeficitUnits    int
	Strictness      decimal.Decimal
	MinFabricBatch  int
	MinElasticBatch int
	Skus            []AllocationSku
	ColorMinima     map[int]int
	ElasticMinimum  int
}

type ProposalLine struct {
	ArticleId int `json:"article_id"`
	ColorId   int `json:"color_id"`
	SizeId    int `json:"size_id"`
	Quantity  int `json:"quantity"`
}

type ArticleProposal struct {
	ArticleId    int            `json:"article_id"`
	ArticleCode  string         `json:"article_code"`
	DeficitUnits int            `json:"deficit_units"`
	TotalUnits   int            `json:"total_units"`
	Lines        []ProposalLine `json:"lines"`
	Explanation  []string       `json:"explanation"`
}

type SkippedArticle struct {
	ArticleId int    `json:"article_id"`
	Reason    string `json:"reason"`
}

type OrderProposal struct {
	AsOf       time.Time         `json:"as_of"`
	Articles   []ArticleProposal `json:"articles"`
	Skipped    []SkippedArticle  `json:"skipped"`
	TotalUnits int               `json:"total_units"`
}

// ProposeOrders runs the allocation over every article that has a planning
// policy. Articles that cannot be processed are skipped with a recorded
// reason; one bad article never aborts the batch.
func ProposeOrders(ctx context.Context, asOf time.Time) (*OrderProposal, error) {
	db := config.GetDB()
	proposal := OrderProposal{AsOf: asOf}

	var settings []models.PlanningSettings
	err := db.WithContext(ctx).Order("article_id").Find(&settings).Error
	if err != nil {
		return nil, err
	}

	for _, ps := range settings {
		if ps.IsActive != nil && !*ps.IsActive {
			proposal.Skipped = append(proposal.Skipped, SkippedArticle{
				ArticleId: ps.ArticleId, Reason: "planning disabled"})
			continue
		}
		article, err := models.GetArticle(ctx, ps.ArticleId)
		if err != nil {
			proposal.Skipped = append(proposal.Skipped, SkippedArticle{
				ArticleId: ps.ArticleId, Reason: "article not found"})
			continue
		}
		demand, err := EstimateDemand(ctx, ps.ArticleId, asOf)
		if err != nil {
			return nil, err
		}
		if demand.DeficitUnits <= 0 {
			proposal.Skipped = append(proposal.Skipped, SkippedArticle{
				ArticleId: ps.ArticleId, Reason: "no deficit"})
			continue
		}
		input, err := loadAllocationInput(ctx, ps, demand.DeficitUnits)
		if err != nil {
			return nil, err
		}
		if len(input.Skus) == 0 {
			proposal.Skipped = append(proposal.Skipped, SkippedArticle{
				ArticleId: ps.ArticleId, Reason: "article has no SKUs"})
			continue
		}

		lines, explanation := BuildArticleAllocation(*input)
		total := 0
		for _, l := range lines {
			total += l.Quantity
		}
		proposal.Articles = append(proposal.Articles, ArticleProposal{
			ArticleId:    ps.ArticleId,
			ArticleCode:  article.Code,
			DeficitUnits: demand.DeficitUnits,
			TotalUnits:   total,
			Lines:        lines,
			Explanation:  append(demand.Explanation, explanation...),
		})
		proposal.TotalUnits += total
	}
	return &proposal, nil
}

func loadAllocationInput(ctx context.Context, ps models.PlanningSettings, deficit int) (*AllocationInput, error) {
	db := config.GetDB()
	input := AllocationInput{
		ArticleId:       ps.ArticleId,
		DeficitUnits:    deficit,
		Strictness:      ps.Strictness,
		MinFabricBatch:  ps.MinFabricBatch,
		MinElasticBatch: ps.MinElasticBatch,
		ColorMinima:     map[int]int{},
	}

	skuUnits, err := models.GetSkuUnitsByArticle(ctx, ps.ArticleId)
	if err != nil {
		return nil, err
	}
	sizeIds := make([]int, 0, len(skuUnits))
	for _, su := range skuUnits {
		sizeIds = append(sizeIds, su.SizeId)
	}
	sizes, err := models.GetSizesByIds(ctx, sizeIds)
	if err != nil {
		return nil, err
	}
	sortOrders := make(map[int]int, len(sizes))
	for _, s := range sizes {
		sortOrders[s.ID] = s.SortOrder
	}
	for _, su := range skuUnits {
		input.Skus = append(input.Skus, AllocationSku{
			SkuUnitId:     su.ID,
			ColorId:       su.ColorId,
			SizeId:        su.SizeId,
			SizeSortOrder: sortOrders[su.SizeId],
		})
	}

	var colorSettings []models.ColorPlanningSettings
	err = db.WithContext(ctx).Where("article_id = ?", ps.ArticleId).Find(&colorSettings).Error
	if err != nil {
		return nil, err
	}
	for _, cs := range colorSettings {
		if cs.FabricMinBatchQty != nil && *cs.FabricMinBatchQty > 0 {
			input.ColorMinima[cs.ColorId] = *cs.FabricMinBatchQty
		}
	}

	var elasticSettings []models.ElasticPlanningSettings
	err = db.WithContext(ctx).Where("article_id = ?", ps.ArticleId).Find(&elasticSettings).Error
	if err != nil {
		return nil, err
	}
	for _, es := range elasticSettings {
		if es.ElasticMinBatchQty != nil && *es.ElasticMinBatchQty > input.ElasticMinimum {
			input.ElasticMinimum = *es.ElasticMinBatchQty
		}
	}
	return &input, nil
}

// BuildArticleAllocation turns one article's deficit into per-color/per-size
// order lines, honoring batch minima at article, color, and elastic levels.
// It is deterministic: stable sort keys, no randomness.
func BuildArticleAllocation(in AllocationInput) ([]ProposalLine, []string) {
	var explanation []string

	strictness := in.Strictness
	if !strictness.IsPositive() {
		strictness = decimal.NewFromInt(1)
		explanation = append(explanation, "strictness not configured or non-positive; using 1.0")
	}
	planned := int(decimal.NewFromInt(int64(in.DeficitUnits)).Mul(strictness).IntPart())
	if planned < in.DeficitUnits {
		planned = in.DeficitUnits
	}
	if planned > in.DeficitUnits {
		explanation = append(explanation,
			fmt.Sprintf("deficit %d scaled by strictness %s to %d units", in.DeficitUnits, strictness.String(), planned))
	}
	if in.MinFabricBatch > planned {
		explanation = append(explanation,
			fmt.Sprintf("raised from %d to fabric batch minimum %d", planned, in.MinFabricBatch))
		planned = in.MinFabricBatch
	}
	if in.MinElasticBatch > planned {
		explanation = append(explanation,
			fmt.Sprintf("raised from %d to elastic batch minimum %d", planned, in.MinElasticBatch))
		planned = in.MinElasticBatch
	}

	// Smaller sizes come first so they win the remainder units.
	skus := make([]AllocationSku, len(in.Skus))
	copy(skus, in.Skus)
	sort.SliceStable(skus, func(a, b int) bool {
		if skus[a].SizeSortOrder != skus[b].SizeSortOrder {
			return skus[a].SizeSortOrder < skus[b].SizeSortOrder
		}
		return skus[a].SkuUnitId < skus[b].SkuUnitId
	})

	split := SplitEvenly(planned, len(skus))
	colorTotals := map[int]int{}
	colorSkus := map[int][]AllocationSku{}
	for i, sku := range skus {
		colorTotals[sku.ColorId] += split[i]
		colorSkus[sku.ColorId] = append(colorSkus[sku.ColorId], sku)
	}
	colorIds := make([]int, 0, len(colorTotals))
	for colorId := range colorTotals {
		colorIds = append(colorIds, colorId)
	}
	sort.Ints(colorIds)

	// Color fabric minima only ever raise totals.
	for _, colorId := range colorIds {
		min, ok := in.ColorMinima[colorId]
		if ok && colorTotals[colorId] < min {
			explanation = append(explanation,
				fmt.Sprintf("color %d raised from %d to its fabric minimum %d", colorId, colorTotals[colorId], min))
			colorTotals[colorId] = min
		}
	}

	grandTotal := 0
	for _, colorId := range colorIds {
		grandTotal += colorTotals[colorId]
	}
	if in.ElasticMinimum > grandTotal {
		shortfall := in.ElasticMinimum - grandTotal
		weights := make([]int, len(colorIds))
		for i, colorId := range colorIds {
			weights[i] = colorTotals[colorId]
		}
		extra := DistributeProportionally(shortfall, weights)
		for i, colorId := range colorIds {
			colorTotals[colorId] += extra[i]
		}
		explanation = append(explanation,
			fmt.Sprintf("total %d below elastic minimum %d; distributed %d extra units across colors", grandTotal, in.ElasticMinimum, shortfall))
		grandTotal = in.ElasticMinimum
	}

	var lines []ProposalLine
	for _, colorId := range colorIds {
		sizesOfColor := colorSkus[colorId]
		perSize := SplitEvenly(colorTotals[colorId], len(sizesOfColor))
		for i, sku := range sizesOfColor {
			if perSize[i] == 0 {
				continue
			}
			lines = append(lines, ProposalLine{
				ArticleId: in.ArticleId,
				ColorId:   colorId,
				SizeId:    sku.SizeId,
				Quantity:  perSize[i],
			})
		}
	}
	explanation = append(explanation,
		fmt.Sprintf("allocated %d units across %d colors and %d SKUs", grandTotal, len(colorIds), len(skus)))
	return lines, explanation
}
