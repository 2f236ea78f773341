package game

import (
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/handeval"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
)

// EquityRow holds one hand's equity against an opponent range, the
// pre-solve readout spec.md §4.7 groups with the post-solve EV queries.
// Adapted from the teacher's pkg/equity.Calculator: generalized from a
// single hero-vs-range brute force over a fixed board to every combo of
// a Range at once, and re-grounded on handeval.Score (oracle contract:
// higher score wins) instead of the teacher's own 21-subset evaluator.
type EquityRow struct {
	Combo  ranges.Combo
	Equity float64 // win% + tie%/2 against the opponent's live range
}

// Equity computes every hand in heroRange's equity against villainRange on
// board (3, 4, or 5 cards), enumerating exact runouts for any undealt
// streets. Both ranges are filtered for board conflicts before comparison;
// combos that conflict with the hero hand under evaluation are excluded
// from that hand's opponent pool, matching the card-removal rule spec.md
// §8 requires.
func Equity(heroRange, villainRange ranges.Range, board []cards.Card) ([]EquityRow, error) {
	state, err := cards.Board(board).State()
	if err != nil {
		return nil, err
	}

	heroCombos := heroRange.RemoveDeadCards(board...).Combos()
	ranges.SortCombos(heroCombos)
	villainLive := villainRange.RemoveDeadCards(board...)

	rows := make([]EquityRow, 0, len(heroCombos))
	for _, hero := range heroCombos {
		villain := villainLive.RemoveDeadCards(hero.Hi, hero.Lo).Combos()
		eq, err := equityVsCombos(hero, villain, board, state)
		if err != nil {
			return nil, err
		}
		rows = append(rows, EquityRow{Combo: hero, Equity: eq})
	}
	return rows, nil
}

func equityVsCombos(hero ranges.Combo, villain []ranges.Combo, board []cards.Card, state cards.BoardState) (float64, error) {
	switch state {
	case cards.River:
		return showdownEquity(hero, villain, board)
	case cards.Turn:
		return enumerateRunouts(hero, villain, board, 1)
	default: // cards.Flop
		return enumerateRunouts(hero, villain, board, 2)
	}
}

// enumerateRunouts exhausts every ordered sequence of the remaining cards
// (1 for turn-only, 2 for flop), weighting each runout equally.
func enumerateRunouts(hero ranges.Combo, villain []ranges.Combo, board []cards.Card, numToCome int) (float64, error) {
	dead := append([]cards.Card{hero.Hi, hero.Lo}, board...)
	remaining := cards.RemoveCards(cards.FullDeck(), dead...)

	var totalEquity float64
	var totalRunouts int

	var recurse func(picked []cards.Card, pool []cards.Card, left int) error
	recurse = func(picked []cards.Card, pool []cards.Card, left int) error {
		if left == 0 {
			fullBoard := append(append([]cards.Card(nil), board...), picked...)
			eq, err := showdownEquity(hero, liveAgainst(villain, picked), fullBoard)
			if err != nil {
				return err
			}
			totalEquity += eq
			totalRunouts++
			return nil
		}
		for i, c := range pool {
			nextPool := append(append([]cards.Card(nil), pool[:i]...), pool[i+1:]...)
			if err := recurse(append(picked, c), nextPool, left-1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := recurse(nil, remaining, numToCome); err != nil {
		return 0, err
	}
	if totalRunouts == 0 {
		return 0.5, nil
	}
	return totalEquity / float64(totalRunouts), nil
}

func liveAgainst(villain []ranges.Combo, dealt []cards.Card) []ranges.Combo {
	out := make([]ranges.Combo, 0, len(villain))
	for _, v := range villain {
		if v.Conflicts(dealt...) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// showdownEquity assumes board is a complete 5-card runout.
func showdownEquity(hero ranges.Combo, villain []ranges.Combo, board []cards.Card) (float64, error) {
	if len(villain) == 0 {
		return 0.5, nil
	}
	heroScore, err := handeval.Score(append([]cards.Card{hero.Hi, hero.Lo}, board...))
	if err != nil {
		return 0, err
	}
	var wins, ties, total float64
	for _, v := range villain {
		villainScore, err := handeval.Score(append([]cards.Card{v.Hi, v.Lo}, board...))
		if err != nil {
			return 0, err
		}
		switch {
		case heroScore > villainScore:
			wins++
		case heroScore == villainScore:
			ties++
		}
		total++
	}
	return (wins + ties/2) / total, nil
}
