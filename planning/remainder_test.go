package planning_test

import (
	"testing"

	"github.com/whitestitch/planner_backend/planning"
)

func TestSplitEvenly_RemainderGoesToFirstSlots(t *testing.T) {
	got := planning.SplitEvenly(10, 4)
	want := []int{3, 3, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("SplitEvenly(10, 4) returned %d slots, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitEvenly(10, 4) = %v, want %v", got, want)
		}
	}
}

func TestSplitEvenly_AlwaysReconciles(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for n := 1; n <= 7; n++ {
			got := planning.SplitEvenly(total, n)
			sum := 0
			for i, q := range got {
				sum += q
				if i > 0 && got[i-1] < q {
					t.Fatalf("SplitEvenly(%d, %d) = %v: slot %d exceeds an earlier slot", total, n, got, i)
				}
				if got[0]-q > 1 {
					t.Fatalf("SplitEvenly(%d, %d) = %v: slots differ by more than 1", total, n, got)
				}
			}
			if sum != total {
				t.Fatalf("SplitEvenly(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
}

func TestDistributeProportionally_ExactReconciliation(t *testing.T) {
	cases := [][]int{
		{1, 1, 1},
		{10, 3, 0},
		{7, 7, 7, 7},
		{1, 2, 3, 4, 5},
		{0, 0, 0},
		{100, 1},
	}
	for _, weights := range cases {
		for total := 0; total <= 60; total++ {
			got := planning.DistributeProportionally(total, weights)
			sum := 0
			for _, q := range got {
				sum += q
			}
			if sum != total {
				t.Fatalf("DistributeProportionally(%d, %v) = %v sums to %d", total, weights, got, sum)
			}
		}
	}
}

func TestDistributeProportionally_ZeroWeightsFallBackToEvenSplit(t *testing.T) {
	got := planning.DistributeProportionally(5, []int{0, 0, 0})
	want := []int{2, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistributeProportionally(5, zeros) = %v, want %v", got, want)
		}
	}
}

func TestDistributeProportionally_LargestRemainderWins(t *testing.T) {
	// Exact shares are 3.5, 2.1, 1.4; the single leftover unit goes to the
	// slot with remainder .5.
	got := planning.DistributeProportionally(7, []int{5, 3, 2})
	want := []int{4, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistributeProportionally(7, [5 3 2]) = %v, want %v", got, want)
		}
	}
}
