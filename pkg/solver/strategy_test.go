package solver

import "testing"

func TestRegretMatchingPositiveRegretsNormalize(t *testing.T) {
	// 2 actions, 1 hand: action 0 has regret 3, action 1 has regret 1.
	regrets := []float32{3, 1}
	strat := regretMatching(regrets, 2, 1)
	if got, want := strat[0], float32(0.75); got != want {
		t.Errorf("action 0 strategy = %v, want %v", got, want)
	}
	if got, want := strat[1], float32(0.25); got != want {
		t.Errorf("action 1 strategy = %v, want %v", got, want)
	}
}

func TestRegretMatchingFallsBackToUniform(t *testing.T) {
	regrets := []float32{-1, -2}
	strat := regretMatching(regrets, 2, 1)
	if strat[0] != 0.5 || strat[1] != 0.5 {
		t.Errorf("expected uniform fallback for all-non-positive regrets, got %v", strat)
	}
}

func TestUpdateRegretsDiscountsBeforeAdding(t *testing.T) {
	regrets := []float32{10, -10} // 1 action... actually use 2 hands, 1 action each row
	d := discountParams{alphaT: 0.5, betaT: 0.25, gammaT: 1}
	childCFV := [][]float32{{2, 2}} // one action
	nodeCFV := []float32{1, 1}
	updateRegrets(regrets, childCFV, nodeCFV, d, 1, 2)
	if got, want := regrets[0], float32(10*0.5+1); got != want {
		t.Errorf("positive regret: got %v, want %v", got, want)
	}
	if got, want := regrets[1], float32(-10*0.25+1); got != want {
		t.Errorf("negative regret: got %v, want %v", got, want)
	}
}

func TestAverageStrategyNormalizesPerHand(t *testing.T) {
	sum := []float32{3, 0, 1, 0} // 2 actions x 2 hands: hand0 sum=(3,1), hand1 sum=(0,0)
	avg := AverageStrategy(sum, 2, 2)
	if got, want := avg[0], float32(0.75); got != want {
		t.Errorf("hand 0 action 0 = %v, want %v", got, want)
	}
	if got, want := avg[2], float32(0.25); got != want {
		t.Errorf("hand 0 action 1 = %v, want %v", got, want)
	}
	if avg[1] != 0.5 || avg[3] != 0.5 {
		t.Errorf("expected uniform fallback for hand 1 with zero sum, got %v", []float32{avg[1], avg[3]})
	}
}
