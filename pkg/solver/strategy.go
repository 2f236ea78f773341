package solver

// Rows below are flattened [action*numHands+hand], matching
// game.PostFlopNode.NumElements's own action-major layout for Player nodes.

// regretMatching turns accumulated regrets into a strategy: each hand's
// probability mass on action a is its positive regret share, or a uniform
// mix over actions if every regret at that hand is non-positive. Grounded
// in the teacher's pkg/solver/strategy.go's GetStrategy, generalized from
// one regret value per info set to one row per hand.
func regretMatching(regrets []float32, numActions, numHands int) []float32 {
	strategy := make([]float32, numActions*numHands)
	for h := 0; h < numHands; h++ {
		var sum float32
		for a := 0; a < numActions; a++ {
			r := regrets[a*numHands+h]
			if r > 0 {
				sum += r
			}
		}
		if sum > 0 {
			for a := 0; a < numActions; a++ {
				r := regrets[a*numHands+h]
				if r > 0 {
					strategy[a*numHands+h] = r / sum
				}
			}
		} else {
			uniform := float32(1) / float32(numActions)
			for a := 0; a < numActions; a++ {
				strategy[a*numHands+h] = uniform
			}
		}
	}
	return strategy
}

// updateRegrets applies one Discounted CFR accumulation step: the running
// regret is discounted (alphaT if positive, betaT if negative) before this
// iteration's instantaneous regret (childCFV - nodeCFV, both already
// counterfactual, i.e. weighted by the opponent's reach) is added in.
func updateRegrets(regrets []float32, childCFV [][]float32, nodeCFV []float32, d discountParams, numActions, numHands int) {
	for a := 0; a < numActions; a++ {
		for h := 0; h < numHands; h++ {
			idx := a*numHands + h
			r := regrets[idx]
			if r > 0 {
				r *= d.alphaT
			} else {
				r *= d.betaT
			}
			regrets[idx] = r + (childCFV[a][h] - nodeCFV[h])
		}
	}
}

// accumulateStrategySum folds this iteration's strategy into the running
// average-strategy sum, weighted by the acting player's reach probability
// (so hands that rarely reach this node contribute little to the average)
// and discounted by gammaT per iteration, per solver.rs's DiscountParams.
func accumulateStrategySum(sum, strategy, reach []float32, gammaT float32, numActions, numHands int) {
	for a := 0; a < numActions; a++ {
		for h := 0; h < numHands; h++ {
			idx := a*numHands + h
			sum[idx] = sum[idx]*gammaT + strategy[idx]*reach[h]
		}
	}
}

// AverageStrategy normalizes a node's accumulated strategy sum into a
// probability distribution per hand, falling back to a uniform mix for a
// hand that never reached this node with positive probability.
func AverageStrategy(sum []float32, numActions, numHands int) []float32 {
	out := make([]float32, numActions*numHands)
	for h := 0; h < numHands; h++ {
		var total float32
		for a := 0; a < numActions; a++ {
			total += sum[a*numHands+h]
		}
		if total > 0 {
			for a := 0; a < numActions; a++ {
				out[a*numHands+h] = sum[a*numHands+h] / total
			}
		} else {
			uniform := float32(1) / float32(numActions)
			for a := 0; a < numActions; a++ {
				out[a*numHands+h] = uniform
			}
		}
	}
	return out
}
