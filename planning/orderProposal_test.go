package planning_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/whitestitch/planner_backend/planning"
)

// twoColorInput builds an article with two colors over three sizes each,
// smaller sort order first within each color.
func twoColorInput(deficit int) planning.AllocationInput {
	return planning.AllocationInput{
		ArticleId:    1,
		DeficitUnits: deficit,
		Strictness:   decimal.NewFromInt(1),
		ColorMinima:  map[int]int{},
		Skus: []planning.AllocationSku{
			{SkuUnitId: 1, ColorId: 10, SizeId: 100, SizeSortOrder: 1},
			{SkuUnitId: 2, ColorId: 10, SizeId: 101, SizeSortOrder: 2},
			{SkuUnitId: 3, ColorId: 10, SizeId: 102, SizeSortOrder: 3},
			{SkuUnitId: 4, ColorId: 20, SizeId: 100, SizeSortOrder: 1},
			{SkuUnitId: 5, ColorId: 20, SizeId: 101, SizeSortOrder: 2},
			{SkuUnitId: 6, ColorId: 20, SizeId: 102, SizeSortOrder: 3},
		},
	}
}

func lineTotals(lines []planning.ProposalLine) (total int, byColor map[int]int) {
	byColor = map[int]int{}
	for _, l := range lines {
		total += l.Quantity
		byColor[l.ColorId] += l.Quantity
	}
	return total, byColor
}

func TestBuildArticleAllocation_SingleSkuMatchesDeficit(t *testing.T) {
	input := planning.AllocationInput{
		ArticleId:    1,
		DeficitUnits: 20,
		Strictness:   decimal.NewFromInt(1),
		ColorMinima:  map[int]int{},
		Skus: []planning.AllocationSku{
			{SkuUnitId: 1, ColorId: 10, SizeId: 100, SizeSortOrder: 1},
		},
	}
	lines, _ := planning.BuildArticleAllocation(input)
	if len(lines) != 1 || lines[0].Quantity != 20 {
		t.Fatalf("single-SKU allocation = %v, want one line of 20", lines)
	}
}

func TestBuildArticleAllocation_StrictnessScalesButNeverShrinks(t *testing.T) {
	input := twoColorInput(10)
	input.Strictness = decimal.NewFromFloat(1.5)
	lines, _ := planning.BuildArticleAllocation(input)
	total, _ := lineTotals(lines)
	if total != 15 {
		t.Fatalf("total = %d, want 15 with strictness 1.5", total)
	}

	input.Strictness = decimal.NewFromFloat(0.5)
	lines, _ = planning.BuildArticleAllocation(input)
	total, _ = lineTotals(lines)
	if total != 10 {
		t.Fatalf("total = %d, want raw deficit 10 when strictness would shrink it", total)
	}
}

func TestBuildArticleAllocation_ArticleMinimaRaiseTotal(t *testing.T) {
	input := twoColorInput(10)
	input.MinFabricBatch = 30
	lines, _ := planning.BuildArticleAllocation(input)
	total, _ := lineTotals(lines)
	if total != 30 {
		t.Fatalf("total = %d, want fabric minimum 30", total)
	}

	input.MinElasticBatch = 42
	lines, _ = planning.BuildArticleAllocation(input)
	total, _ = lineTotals(lines)
	if total != 42 {
		t.Fatalf("total = %d, want elastic minimum 42", total)
	}
}

func TestBuildArticleAllocation_SmallerSizesWinRemainder(t *testing.T) {
	input := twoColorInput(8)
	lines, _ := planning.BuildArticleAllocation(input)

	// 8 units over 6 SKUs: the two extra units land on the size-1 SKUs.
	perSku := map[[2]int]int{}
	for _, l := range lines {
		perSku[[2]int{l.ColorId, l.SizeId}] = l.Quantity
	}
	for _, colorId := range []int{10, 20} {
		if perSku[[2]int{colorId, 100}] < perSku[[2]int{colorId, 102}] {
			t.Fatalf("color %d: smaller size got less than larger size: %v", colorId, perSku)
		}
		if perSku[[2]int{colorId, 100}]-perSku[[2]int{colorId, 102}] > 1 {
			t.Fatalf("color %d: sizes differ by more than 1: %v", colorId, perSku)
		}
	}
}

func TestBuildArticleAllocation_ColorMinimumOnlyRaises(t *testing.T) {
	input := twoColorInput(10)
	input.ColorMinima[10] = 12
	lines, _ := planning.BuildArticleAllocation(input)
	_, byColor := lineTotals(lines)

	if byColor[10] != 12 {
		t.Fatalf("color 10 total = %d, want its minimum 12", byColor[10])
	}
	if byColor[20] != 5 {
		t.Fatalf("color 20 total = %d, want its even share 5", byColor[20])
	}
}

func TestBuildArticleAllocation_ElasticMinimumReconcilesExactly(t *testing.T) {
	input := twoColorInput(10)
	input.ElasticMinimum = 37
	lines, _ := planning.BuildArticleAllocation(input)
	total, byColor := lineTotals(lines)

	if total != 37 {
		t.Fatalf("total = %d, want elastic minimum 37 exactly", total)
	}
	for colorId, colorTotal := range byColor {
		if colorTotal <= 0 {
			t.Fatalf("color %d ended with non-positive total %d", colorId, colorTotal)
		}
	}
}

func TestBuildArticleAllocation_Idempotent(t *testing.T) {
	input := twoColorInput(23)
	input.Strictness = decimal.NewFromFloat(1.2)
	input.ColorMinima[20] = 18
	input.ElasticMinimum = 50

	first, _ := planning.BuildArticleAllocation(input)
	second, _ := planning.BuildArticleAllocation(input)
	if len(first) != len(second) {
		t.Fatalf("line counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("line %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
