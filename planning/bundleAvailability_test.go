package planning_test

import (
	"testing"

	"github.com/whitestitch/planner_backend/planning"
)

func TestComputeBundleAvailability_BottleneckPerSize(t *testing.T) {
	// Colors A=1 and B=2; at the size in question A has 10 and B has 3.
	stock := map[int]map[int]int{
		100: {1: 10, 2: 3},
	}
	sizes, total := planning.ComputeBundleAvailability([]int{1, 2}, stock)
	if total != 3 {
		t.Fatalf("total = %d, want bottleneck 3", total)
	}
	if len(sizes) != 1 || sizes[0].Capacity != 3 {
		t.Fatalf("sizes = %v, want one size with capacity 3", sizes)
	}
}

func TestComputeBundleAvailability_MissingColorSkuZeroesSize(t *testing.T) {
	stock := map[int]map[int]int{
		100: {1: 10, 2: 4},
		101: {1: 6}, // color 2 has no SKU at size 101
	}
	sizes, total := planning.ComputeBundleAvailability([]int{1, 2}, stock)
	if total != 4 {
		t.Fatalf("total = %d, want 4 (size 101 cannot assemble)", total)
	}
	for _, s := range sizes {
		if s.SizeId == 101 && s.Capacity != 0 {
			t.Fatalf("size 101 capacity = %d, want 0", s.Capacity)
		}
	}
}

func TestComputeBundleAvailability_MonotonicInRequiredColors(t *testing.T) {
	stock := map[int]map[int]int{
		100: {1: 5, 2: 8, 3: 2},
		101: {1: 7, 2: 1, 3: 9},
	}
	_, twoColors := planning.ComputeBundleAvailability([]int{1, 2}, stock)
	_, threeColors := planning.ComputeBundleAvailability([]int{1, 2, 3}, stock)
	if threeColors > twoColors {
		t.Fatalf("adding a required color increased capacity: %d > %d", threeColors, twoColors)
	}
}

func TestComputeBundleDeficit_PerColorIndependent(t *testing.T) {
	// Target 5 bundles; A has 10, B has 3.
	stock := map[int]map[int]int{
		100: {1: 10, 2: 3},
	}
	lines, colorTotals := planning.ComputeBundleDeficit([]int{1, 2}, stock, 5)

	deficits := map[int]int{}
	for _, l := range lines {
		deficits[l.ColorId] = l.Deficit
	}
	if deficits[1] != 0 {
		t.Fatalf("color A deficit = %d, want 0", deficits[1])
	}
	if deficits[2] != 2 {
		t.Fatalf("color B deficit = %d, want 2", deficits[2])
	}
	for _, ct := range colorTotals {
		if ct.ColorId == 2 && ct.Deficit != 2 {
			t.Fatalf("color B total deficit = %d, want 2", ct.Deficit)
		}
	}
}

func TestComputeBundleDeficit_NeverNegative(t *testing.T) {
	stock := map[int]map[int]int{
		100: {1: 50},
	}
	lines, _ := planning.ComputeBundleDeficit([]int{1}, stock, 5)
	for _, l := range lines {
		if l.Deficit < 0 {
			t.Fatalf("negative deficit %d for color %d size %d", l.Deficit, l.ColorId, l.SizeId)
		}
	}
}
