package game

import (
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// ReportRow aggregates every combo of one starting-hand class (e.g. the six
// AA combos, or the four AKs combos) at the game's root into a single
// summary row, the same collapse original_source/examples/report.rs
// performs before printing.
type ReportRow struct {
	Class    string
	Combos   int
	Equity   float64   // average equity across the class's combos
	EV       float64   // average counterfactual value across the class's combos
	Strategy []float32 // average per-action probability, empty if player is not root's acting player
}

// Report is spec.md's SUPPLEMENTED FEATURES per-starting-hand-class
// breakdown of player's root-node equity, EV, and (when player is on
// action at the root) strategy.
type Report struct {
	Player     tree.Player
	NumActions int
	Rows       []ReportRow
}

// Report builds a Report for player at g's root decision node. Strategy
// rows are populated only when player is the root's acting player, since a
// strategy is only defined for the player on action.
func (g *PostFlopGame) Report(player tree.Player) (Report, error) {
	root := g.Node(g.Root())
	if root.Kind != tree.PlayerNode {
		return Report{}, &tree.StateError{Msg: "game: report: root is not a player decision node"}
	}

	cur := NewCursor(g)
	hands := cur.PrivateCards(player)
	equities, err := cur.Equity(player)
	if err != nil {
		return Report{}, fmt.Errorf("game: report: equity: %w", err)
	}
	evs := cur.ExpectedValues(player)

	var strategy []float32
	var numActions int
	if root.ToAct == player {
		strategy = cur.Strategy()
		numActions = int(root.NumActions)
	}

	type accum struct {
		combos    int
		equitySum float64
		evSum     float64
		stratSum  []float32
	}
	classes := make(map[string]*accum)
	var order []string
	for i, combo := range hands {
		class := handClass(combo)
		a, ok := classes[class]
		if !ok {
			a = &accum{}
			if numActions > 0 {
				a.stratSum = make([]float32, numActions)
			}
			classes[class] = a
			order = append(order, class)
		}
		a.combos++
		a.equitySum += equities[i].Equity
		if i < len(evs) {
			a.evSum += float64(evs[i])
		}
		for act := 0; act < numActions; act++ {
			a.stratSum[act] += strategy[act*len(hands)+i]
		}
	}

	rows := make([]ReportRow, 0, len(order))
	for _, class := range order {
		a := classes[class]
		row := ReportRow{
			Class:  class,
			Combos: a.combos,
			Equity: a.equitySum / float64(a.combos),
			EV:     a.evSum / float64(a.combos),
		}
		if numActions > 0 {
			row.Strategy = make([]float32, numActions)
			for act := range row.Strategy {
				row.Strategy[act] = a.stratSum[act] / float32(a.combos)
			}
		}
		rows = append(rows, row)
	}

	return Report{Player: player, NumActions: numActions, Rows: rows}, nil
}

// handClass collapses a combo to its canonical starting-hand notation: a
// pair ("AA"), suited ("AKs"), or offsuit ("AKo") class.
func handClass(c ranges.Combo) string {
	r1, r2 := c.Hi.Rank(), c.Lo.Rank()
	if r1 == r2 {
		return fmt.Sprintf("%c%c", rankChar(r1), rankChar(r2))
	}
	suited := c.Hi.Suit() == c.Lo.Suit()
	suffix := byte('o')
	if suited {
		suffix = 's'
	}
	return fmt.Sprintf("%c%c%c", rankChar(r1), rankChar(r2), suffix)
}

func rankChar(r uint8) byte {
	return "23456789TJQKA"[r]
}
