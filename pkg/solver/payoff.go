package solver

import (
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/handeval"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// terminalCFV computes both players' counterfactual-value vectors at a
// terminal node, weighted by the opponent's reach probabilities. The
// fold case pays every hand the same amount (the folder's identity is
// all that decides the outcome); the showdown cases need hand-vs-hand
// comparison, card-removal excluded, reach-weighted over the opponent's
// live combos, per spec.md §8.
func (s *Solver) terminalCFV(n *game.PostFlopNode, reachOOP, reachIP []float32) (cfvOOP, cfvIP []float32, err error) {
	cfg := s.Game.ActionTree.Config
	contribOOP := cfg.EffectiveStack - n.StackOOP
	contribIP := cfg.EffectiveStack - n.StackIP
	half := cfg.StartingPot / 2

	switch n.Terminal {
	case tree.TerminalFold:
		var equityOOP float64
		if n.ToAct == tree.IP {
			equityOOP = 1 // IP folded, OOP takes the pot
		}
		utilOOP := float32(equityOOP*n.Pot - contribOOP - half)
		utilIP := float32((1-equityOOP)*n.Pot - contribIP - half)
		return fillConst(int(n.NumHandsOOP), utilOOP), fillConst(int(n.NumHandsIP), utilIP), nil

	case tree.TerminalShowdownNormal, tree.TerminalShowdownAllIn:
		rake := n.Pot * cfg.RakeRate
		if cfg.RakeCap > 0 && rake > cfg.RakeCap {
			rake = cfg.RakeCap
		}
		potAfterRake := n.Pot - rake
		return s.showdownCFV(n, reachOOP, reachIP, potAfterRake, contribOOP, contribIP, half)

	default:
		return nil, nil, &tree.ConfigError{Msg: "solver: unhandled terminal kind"}
	}
}

func fillConst(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// showdownCFV reach-weights every hero combo against the opponent's live,
// non-conflicting combos, evaluating both hands against the complete board
// with handeval.Score. Grounded in the shape of pkg/game/equity.go's
// showdownEquity, generalized from an unweighted win/tie/loss count to a
// reach-probability-weighted average (the opponent may not reach every
// combo with equal probability once their earlier-street strategy mixes).
func (s *Solver) showdownCFV(n *game.PostFlopNode, reachOOP, reachIP []float32, potAfterRake, contribOOP, contribIP, half float64) ([]float32, []float32, error) {
	board := n.Board()
	oopHands := n.Hands(tree.OOP)
	ipHands := n.Hands(tree.IP)

	oopScores, err := scoreAll(oopHands, board)
	if err != nil {
		return nil, nil, err
	}
	ipScores, err := scoreAll(ipHands, board)
	if err != nil {
		return nil, nil, err
	}

	cfvOOP := make([]float32, len(oopHands))
	for i, h := range oopHands {
		var num, den float64
		for j, h2 := range ipHands {
			if h.Conflicts(h2.Hi, h2.Lo) {
				continue
			}
			w := float64(reachIP[j])
			if w == 0 {
				continue
			}
			num += w * outcome(oopScores[i], ipScores[j])
			den += w
		}
		equity := 0.5
		if den > 0 {
			equity = num / den
		}
		cfvOOP[i] = float32(equity*potAfterRake - contribOOP - half)
	}

	cfvIP := make([]float32, len(ipHands))
	for j, h2 := range ipHands {
		var num, den float64
		for i, h := range oopHands {
			if h.Conflicts(h2.Hi, h2.Lo) {
				continue
			}
			w := float64(reachOOP[i])
			if w == 0 {
				continue
			}
			num += w * outcome(ipScores[j], oopScores[i])
			den += w
		}
		equity := 0.5
		if den > 0 {
			equity = num / den
		}
		cfvIP[j] = float32(equity*potAfterRake - contribIP - half)
	}

	return cfvOOP, cfvIP, nil
}

// terminalCFVFor computes just one player's counterfactual-value vector,
// given only the opponent's reach, for Exploitability's best-response pass
// (which never needs the responder's own reach — a cfv is counterfactual on
// the responder's hand by definition).
func (s *Solver) terminalCFVFor(n *game.PostFlopNode, player tree.Player, reachOpp []float32) ([]float32, error) {
	cfg := s.Game.ActionTree.Config
	contrib := cfg.EffectiveStack - n.StackOOP
	if player == tree.IP {
		contrib = cfg.EffectiveStack - n.StackIP
	}
	half := cfg.StartingPot / 2

	switch n.Terminal {
	case tree.TerminalFold:
		var equity float64
		if n.ToAct != player {
			equity = 1 // opponent folded, player takes the pot
		}
		util := float32(equity*n.Pot - contrib - half)
		return fillConst(n.HandCount(player), util), nil

	case tree.TerminalShowdownNormal, tree.TerminalShowdownAllIn:
		rake := n.Pot * cfg.RakeRate
		if cfg.RakeCap > 0 && rake > cfg.RakeCap {
			rake = cfg.RakeCap
		}
		potAfterRake := n.Pot - rake

		board := n.Board()
		heroHands := n.Hands(player)
		oppHands := n.Hands(player.Opponent())
		heroScores, err := scoreAll(heroHands, board)
		if err != nil {
			return nil, err
		}
		oppScores, err := scoreAll(oppHands, board)
		if err != nil {
			return nil, err
		}
		out := make([]float32, len(heroHands))
		for i, h := range heroHands {
			var num, den float64
			for j, h2 := range oppHands {
				if h.Conflicts(h2.Hi, h2.Lo) {
					continue
				}
				w := float64(reachOpp[j])
				if w == 0 {
					continue
				}
				num += w * outcome(heroScores[i], oppScores[j])
				den += w
			}
			equity := 0.5
			if den > 0 {
				equity = num / den
			}
			out[i] = float32(equity*potAfterRake - contrib - half)
		}
		return out, nil

	default:
		return nil, &tree.ConfigError{Msg: "solver: unhandled terminal kind"}
	}
}

func scoreAll(combos []ranges.Combo, board []cards.Card) ([]int32, error) {
	out := make([]int32, len(combos))
	hand := make([]cards.Card, len(board)+2)
	copy(hand, board)
	for i, c := range combos {
		hand[len(board)] = c.Hi
		hand[len(board)+1] = c.Lo
		score, err := handeval.Score(hand)
		if err != nil {
			return nil, err
		}
		out[i] = score
	}
	return out, nil
}

// outcome returns 1 if a beats b, 0.5 on a tie, 0 if a loses.
func outcome(a, b int32) float64 {
	switch {
	case a > b:
		return 1
	case a == b:
		return 0.5
	default:
		return 0
	}
}
