// Package handeval is the hand-evaluator oracle spec.md requires: a single
// Score function over 3, 5, 6 or 7 cards where a higher score always means a
// stronger hand. It wraps github.com/paulhankin/poker instead of the
// teacher's hand-rolled 5-of-7 evaluator, the library already used for this
// purpose in jackkayser2005-pokerBench and luca-patrignani-mental-poker.
package handeval

import (
	"fmt"

	poker "github.com/paulhankin/poker"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

// toPH converts our packed Card to the library's Card type. Our ranks are
// 0..12 (Two..Ace); the library's Rank is 1..13 with Ace=1, so Ace needs the
// wraparound the teacher's eval_ph.go handles explicitly.
func toPH(c cards.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit() {
	case 0:
		s = poker.Club
	case 1:
		s = poker.Diamond
	case 2:
		s = poker.Heart
	case 3:
		s = poker.Spade
	}
	r := c.Rank() + 2 // our 0..12 -> conventional 2..14
	var pr poker.Rank
	if r == 14 {
		pr = poker.Rank(1)
	} else {
		pr = poker.Rank(r)
	}
	pc, err := poker.MakeCard(s, pr)
	if err != nil {
		return 0, fmt.Errorf("handeval: invalid card %v: %w", c, err)
	}
	return pc, nil
}

// Score returns the strength of the best hand made from the given 3, 5, 6 or
// 7 cards. Higher is stronger, confirmed against the package author's own
// dominance/normalization usage in the cpoker reference tool (ef >= em
// comparisons and division by poker.ScoreMax are only self-consistent if a
// larger score beats a smaller one).
func Score(hand []cards.Card) (int32, error) {
	pcs := make([]poker.Card, len(hand))
	for i, c := range hand {
		pc, err := toPH(c)
		if err != nil {
			return 0, err
		}
		pcs[i] = pc
	}
	switch len(pcs) {
	case 7:
		var a [7]poker.Card
		copy(a[:], pcs)
		return int32(poker.Eval7(&a)), nil
	case 5:
		var a [5]poker.Card
		copy(a[:], pcs)
		return int32(poker.Eval5(&a)), nil
	case 3:
		var a [3]poker.Card
		copy(a[:], pcs)
		return int32(poker.Eval3(&a)), nil
	case 6:
		return bestOfFiveSubsets(pcs), nil
	default:
		return 0, fmt.Errorf("handeval: unsupported hand size %d", len(pcs))
	}
}

// bestOfFiveSubsets picks the strongest 5-card hand out of n>5 cards, used
// for the 6-card turn-showdown case. Grounded in the teacher's
// bestOfFiveSubsets (eval_ph.go), inverted here to maximize since our Score
// convention is "higher is stronger".
func bestOfFiveSubsets(pcs []poker.Card) int32 {
	n := len(pcs)
	best := int32(-1)
	choose := [5]int{}
	var five [5]poker.Card
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == 5 {
			for i := 0; i < 5; i++ {
				five[i] = pcs[choose[i]]
			}
			score := int32(poker.Eval5(&five))
			if score > best {
				best = score
			}
			return
		}
		for i := start; i <= n-(5-k); i++ {
			choose[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
	return best
}

// Describe returns a human-readable description of the best hand, e.g. for
// CLI reporting output.
func Describe(hand []cards.Card) (string, error) {
	pcs := make([]poker.Card, len(hand))
	for i, c := range hand {
		pc, err := toPH(c)
		if err != nil {
			return "", err
		}
		pcs[i] = pc
	}
	return poker.Describe(pcs)
}
