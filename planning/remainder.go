package planning

import "sort"

// SplitEvenly divides total units across n slots. Every slot gets the floor
// share and the leftover units go one each to the earliest slots, so no two
// slots differ by more than one unit and earlier slots never get less.
func SplitEvenly(total, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	if total <= 0 {
		return out
	}
	base := total / n
	rem := total % n
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// DistributeProportionally splits total units across slots in proportion to
// their weights using the largest-remainder method: each slot gets the floor
// of its exact share, then the leftover units go one each to the slots with
// the largest fractional remainders, earliest slot winning ties. The result
// always sums to total. Zero total weight falls back to an even split.
func DistributeProportionally(total int, weights []int) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if total <= 0 {
		return make([]int, n)
	}
	weightSum := 0
	for _, w := range weights {
		if w > 0 {
			weightSum += w
		}
	}
	if weightSum == 0 {
		return SplitEvenly(total, n)
	}

	out := make([]int, n)
	remainders := make([]int, n)
	order := make([]int, n)
	assigned := 0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		out[i] = total * w / weightSum
		remainders[i] = total * w % weightSum
		order[i] = i
		assigned += out[i]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; i < total-assigned; i++ {
		out[order[i]]++
	}
	return out
}
