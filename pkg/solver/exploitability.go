package solver

import (
	"context"

	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Exploitability estimates how many chips, on average per dealt hand, a
// perfect best-responder wins over the current average strategy: the
// standard measure of distance from a Nash equilibrium. It is 0 at an exact
// equilibrium and shrinks toward 0 as Solve runs more iterations. Per
// spec.md §4.3: (ev_best_oop + ev_best_ip - 2*game_value) / 2, where
// game_value is the average of both players' actual self-play values (not
// assumed to cancel to zero, since RakeRate > 0 removes chips from the pot
// rather than just redistributing them between the two players).
func (s *Solver) Exploitability(ctx context.Context) (float64, error) {
	root := s.initialReach()

	brOOP, err := s.bestResponse(ctx, 0, tree.OOP, root.ip)
	if err != nil {
		return 0, err
	}
	brIP, err := s.bestResponse(ctx, 0, tree.IP, root.oop)
	if err != nil {
		return 0, err
	}
	evOOP := weightedMean(brOOP, root.oop)
	evIP := weightedMean(brIP, root.ip)

	selfOOP, selfIP, err := s.selfPlay(ctx, 0, root.oop, root.ip)
	if err != nil {
		return 0, err
	}
	gameValue := (weightedMean(selfOOP, root.oop) + weightedMean(selfIP, root.ip)) / 2

	return (evOOP+evIP)/2 - gameValue, nil
}

// selfPlay computes both players' counterfactual-value vectors at idx when
// both sides follow their average strategy (or locked strategy, where
// installed) rather than best-responding, the actual-play value
// Exploitability nets out of the best-response values. It never reads or
// writes regrets/strategy sums, only the already-accumulated averages, so
// calling it between CFR iterations (as Solve's periodic probe does) has no
// effect on the ongoing solve.
func (s *Solver) selfPlay(ctx context.Context, idx int, reachOOP, reachIP []float32) ([]float32, []float32, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	n := &s.Game.Nodes[idx]
	switch n.Kind {
	case tree.TerminalNodeKind:
		return s.terminalCFV(n, reachOOP, reachIP)
	case tree.ChanceNode:
		return s.selfPlayChance(ctx, idx, reachOOP, reachIP)
	default:
		return s.selfPlayPlayer(ctx, idx, reachOOP, reachIP)
	}
}

func (s *Solver) selfPlayPlayer(ctx context.Context, idx int, reachOOP, reachIP []float32) ([]float32, []float32, error) {
	n := &s.Game.Nodes[idx]
	numActions := int(n.NumActions)
	actingHands := n.HandCount(n.ToAct)
	children := s.Game.ChildIndices(idx)

	var strategy []float32
	if locked, ok := s.Game.LockedStrategy(idx); ok {
		strategy = expandLockedStrategy(locked, numActions, actingHands)
	} else {
		sum := getStrategySum(s.Game, n, numActions*actingHands)
		strategy = AverageStrategy(sum, numActions, actingHands)
	}

	actorReach, oppReach := reachOOP, reachIP
	if n.ToAct == tree.IP {
		actorReach, oppReach = reachIP, reachOOP
	}

	childActorCFV := make([][]float32, numActions)
	childOppCFV := make([][]float32, numActions)
	for a := 0; a < numActions; a++ {
		newActorReach := make([]float32, actingHands)
		for h, r := range actorReach {
			newActorReach[h] = r * strategy[a*actingHands+h]
		}
		var childOOP, childIP []float32
		if n.ToAct == tree.OOP {
			childOOP, childIP = newActorReach, oppReach
		} else {
			childOOP, childIP = oppReach, newActorReach
		}
		cOOP, cIP, err := s.selfPlay(ctx, children[a], childOOP, childIP)
		if err != nil {
			return nil, nil, err
		}
		if n.ToAct == tree.OOP {
			childActorCFV[a], childOppCFV[a] = cOOP, cIP
		} else {
			childActorCFV[a], childOppCFV[a] = cIP, cOOP
		}
	}

	nodeActorCFV := make([]float32, actingHands)
	for a := 0; a < numActions; a++ {
		for h := 0; h < actingHands; h++ {
			nodeActorCFV[h] += strategy[a*actingHands+h] * childActorCFV[a][h]
		}
	}
	oppHands := n.HandCount(n.ToAct.Opponent())
	nodeOppCFV := make([]float32, oppHands)
	for a := 0; a < numActions; a++ {
		for h := 0; h < oppHands; h++ {
			nodeOppCFV[h] += childOppCFV[a][h]
		}
	}

	if n.ToAct == tree.OOP {
		return nodeActorCFV, nodeOppCFV, nil
	}
	return nodeOppCFV, nodeActorCFV, nil
}

func (s *Solver) selfPlayChance(ctx context.Context, idx int, reachOOP, reachIP []float32) ([]float32, []float32, error) {
	n := &s.Game.Nodes[idx]
	children := s.Game.ChildIndices(idx)
	parentOOP := n.Hands(tree.OOP)
	parentIP := n.Hands(tree.IP)

	sumOOP := make([]float64, len(parentOOP))
	cntOOP := make([]int, len(parentOOP))
	sumIP := make([]float64, len(parentIP))
	cntIP := make([]int, len(parentIP))
	for _, childIdx := range children {
		child := &s.Game.Nodes[childIdx]
		childReachOOP := remapReach(parentOOP, child.Hands(tree.OOP), reachOOP)
		childReachIP := remapReach(parentIP, child.Hands(tree.IP), reachIP)
		cOOP, cIP, err := s.selfPlay(ctx, childIdx, childReachOOP, childReachIP)
		if err != nil {
			return nil, nil, err
		}
		accumulateBack(parentOOP, child.Hands(tree.OOP), cOOP, sumOOP, cntOOP)
		accumulateBack(parentIP, child.Hands(tree.IP), cIP, sumIP, cntIP)
	}
	return averageBack(sumOOP, cntOOP), averageBack(sumIP, cntIP), nil
}

func weightedMean(vals, weights []float32) float64 {
	var num, den float64
	for i, v := range vals {
		w := float64(weights[i])
		num += w * float64(v)
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// bestResponse returns, for every one of responder's hands at idx, the
// value of their best action against the opponent's current average
// strategy (or locked strategy, where installed), given the opponent's
// reach probability into idx.
func (s *Solver) bestResponse(ctx context.Context, idx int, responder tree.Player, reachOpp []float32) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n := &s.Game.Nodes[idx]

	switch n.Kind {
	case tree.TerminalNodeKind:
		return s.terminalCFVFor(n, responder, reachOpp)

	case tree.ChanceNode:
		return s.bestResponseChance(ctx, n, idx, responder, reachOpp)

	default:
		if n.ToAct == responder {
			return s.bestResponseAtOwnTurn(ctx, n, idx, responder, reachOpp)
		}
		return s.bestResponseAtOpponentTurn(ctx, n, idx, responder, reachOpp)
	}
}

func (s *Solver) bestResponseChance(ctx context.Context, n *game.PostFlopNode, idx int, responder tree.Player, reachOpp []float32) ([]float32, error) {
	children := s.Game.ChildIndices(idx)
	parentResponder := n.Hands(responder)
	parentOpp := n.Hands(responder.Opponent())

	sum := make([]float64, len(parentResponder))
	cnt := make([]int, len(parentResponder))
	for _, childIdx := range children {
		child := &s.Game.Nodes[childIdx]
		childOppHands := child.Hands(responder.Opponent())
		childReachOpp := remapReach(parentOpp, childOppHands, reachOpp)
		childBR, err := s.bestResponse(ctx, childIdx, responder, childReachOpp)
		if err != nil {
			return nil, err
		}
		accumulateBack(parentResponder, child.Hands(responder), childBR, sum, cnt)
	}
	return averageBack(sum, cnt), nil
}

func (s *Solver) bestResponseAtOwnTurn(ctx context.Context, n *game.PostFlopNode, idx int, responder tree.Player, reachOpp []float32) ([]float32, error) {
	actingHands := n.HandCount(responder)
	best := make([]float32, actingHands)
	for h := range best {
		best[h] = float32(negInf)
	}
	for _, childIdx := range s.Game.ChildIndices(idx) {
		childBR, err := s.bestResponse(ctx, childIdx, responder, reachOpp)
		if err != nil {
			return nil, err
		}
		for h := range best {
			if childBR[h] > best[h] {
				best[h] = childBR[h]
			}
		}
	}
	return best, nil
}

func (s *Solver) bestResponseAtOpponentTurn(ctx context.Context, n *game.PostFlopNode, idx int, responder tree.Player, reachOpp []float32) ([]float32, error) {
	opponent := responder.Opponent()
	numActions := int(n.NumActions)
	oppHands := n.HandCount(opponent)

	var avg []float32
	if locked, ok := s.Game.LockedStrategy(idx); ok {
		avg = expandLockedStrategy(locked, numActions, oppHands)
	} else {
		sum := getStrategySum(s.Game, n, numActions*oppHands)
		avg = AverageStrategy(sum, numActions, oppHands)
	}

	responderHands := n.HandCount(responder)
	total := make([]float32, responderHands)
	for a, childIdx := range s.Game.ChildIndices(idx) {
		newReachOpp := make([]float32, oppHands)
		for h := range newReachOpp {
			newReachOpp[h] = reachOpp[h] * avg[a*oppHands+h]
		}
		childBR, err := s.bestResponse(ctx, childIdx, responder, newReachOpp)
		if err != nil {
			return nil, err
		}
		for h := range total {
			total[h] += childBR[h]
		}
	}
	return total, nil
}

const negInf = -1e30
