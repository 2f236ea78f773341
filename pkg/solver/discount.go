// Package solver implements vectorized Discounted CFR+ over a
// game.PostFlopGame arena: regret-matching on per-hand float32 rows,
// card-removal-aware terminal payoffs, and exploitability via best
// response. There is no teacher counterpart operating on an arena (the
// teacher's pkg/solver ran scalar CFR/MCCFR over a per-combo pointer
// tree); the regret-matching shape (positive-regret normalize, uniform
// fallback) and the discounted accumulation pattern are carried over from
// that package's Strategy.GetStrategy, generalized from a scalar regret
// per info set to a per-hand vector per arena node.
package solver

import "math"

// discountParams holds the per-iteration Discounted CFR+ coefficients,
// ported verbatim from original_source's DiscountParams::new: alphaT
// discounts accumulated positive regret, betaT accumulated negative
// regret, and gammaT discounts the running average-strategy sum.
type discountParams struct {
	alphaT, betaT, gammaT float32
}

func newDiscountParams(iteration uint32) discountParams {
	var nearestLowerPowerOf4 uint32
	if iteration != 0 {
		lz := leadingZeros32(iteration)
		nearestLowerPowerOf4 = 1 << ((lz ^ 31) &^ 1)
	}

	tAlpha := float64(iteration) - 1
	if tAlpha < 0 {
		tAlpha = 0
	}
	tGamma := float64(iteration - nearestLowerPowerOf4)

	powAlpha := tAlpha * math.Sqrt(tAlpha)
	powGamma := math.Pow(tGamma/(tGamma+1), 3)

	return discountParams{
		alphaT: float32(powAlpha / (powAlpha + 1)),
		betaT:  0.5,
		gammaT: float32(powGamma),
	}
}

func leadingZeros32(x uint32) uint32 {
	if x == 0 {
		return 32
	}
	n := uint32(0)
	for x&0x80000000 == 0 {
		x <<= 1
		n++
	}
	return n
}
