package solver

import "github.com/holdem-tree/postflop-solver/pkg/ranges"

// remapReach carries a reach vector from a chance node's hand list down to
// one child's hand list. A child's hand list is always an order-preserving
// subset of the parent's (both are the same range filtered by board, and
// the child's board has exactly one more card removed), so a single
// two-pointer scan suffices.
func remapReach(parent, child []ranges.Combo, reach []float32) []float32 {
	out := make([]float32, len(child))
	j := 0
	for i, c := range parent {
		if j >= len(child) {
			break
		}
		if child[j] == c {
			out[j] = reach[i]
			j++
		}
	}
	return out
}

// accumulateBack folds one chance child's cfv vector back into the parent's
// hand-index space, summing into sum and counting into cnt. A parent hand
// not present in the child's hand list conflicts with the card dealt on
// this branch and is simply skipped for that branch, not given a zero
// sample, so the eventual average is taken only over cards the hand could
// actually see.
func accumulateBack(parent, child []ranges.Combo, vals []float32, sum []float64, cnt []int) {
	j := 0
	for i, c := range parent {
		if j >= len(child) {
			break
		}
		if child[j] == c {
			sum[i] += float64(vals[j])
			cnt[i]++
			j++
		}
	}
}

func averageBack(sum []float64, cnt []int) []float32 {
	out := make([]float32, len(sum))
	for i := range sum {
		if cnt[i] > 0 {
			out[i] = float32(sum[i] / float64(cnt[i]))
		}
	}
	return out
}
