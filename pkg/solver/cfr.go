package solver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Solver runs vectorized Discounted CFR+ over a built, memory-allocated
// PostFlopGame. One Solver is bound to one game; nothing here mutates
// ActionTree or CardConfig, only the game's byte pools.
type Solver struct {
	Game *game.PostFlopGame

	// maxParallelDepth bounds how many levels of the tree fan work out
	// across goroutines via errgroup before falling back to serial
	// recursion, keeping goroutine count from exploding near the leaves
	// where each node's own work is cheap relative to scheduling overhead.
	maxParallelDepth int

	// iteration and root track progress across SolveStep calls so a caller
	// driving the solver one step at a time (spec.md §4.3's solve_step)
	// gets the same discount schedule and reach vectors Solve would use.
	iteration uint32
	root      reachPair
	rootReady bool
}

// New binds a Solver to a memory-allocated game.
func New(g *game.PostFlopGame) (*Solver, error) {
	if g.State < game.MemoryAllocated {
		return nil, &tree.StateError{Msg: "solver: game has no allocated storage; call AllocateMemory first"}
	}
	return &Solver{Game: g, maxParallelDepth: 2}, nil
}

// probeEvery mirrors the original_source solve() loop's convergence check
// cadence: exploitability is only recomputed every 10 iterations (and on
// the last one), since a full best-response pass costs roughly as much as
// several CFR iterations.
const probeEvery = 10

// Solve runs up to maxIters Discounted CFR+ iterations over the full tree,
// per spec.md §4.3's `solve(max_iters, target_exploitability, print) -> f64`
// contract: it returns the achieved exploitability and stops early once
// that value reaches targetExploitability (a non-positive target disables
// early stopping and runs the full maxIters). Re-solving an already-solved
// game is permitted, per spec.md §7's "not an error" policy.
func (s *Solver) Solve(ctx context.Context, maxIters int, targetExploitability float64) (float64, error) {
	var achieved float64
	for it := 1; it <= maxIters; it++ {
		if err := s.SolveStep(ctx); err != nil {
			return achieved, err
		}
		if it%probeEvery == 0 || it == maxIters {
			expl, err := s.Exploitability(ctx)
			if err != nil {
				return achieved, err
			}
			achieved = expl
			if targetExploitability > 0 && expl <= targetExploitability {
				return achieved, nil
			}
		}
	}
	return achieved, nil
}

// SolveStep runs exactly one Discounted CFR+ iteration, per spec.md §4.3's
// `solve_step(iter_index)`; the iteration index advances implicitly each
// call so the discount schedule matches what Solve would produce for the
// same call count.
func (s *Solver) SolveStep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !s.rootReady {
		s.root = s.initialReach()
		s.rootReady = true
	}
	s.iteration++
	d := newDiscountParams(s.iteration)
	if _, _, err := s.traverse(ctx, 0, 0, s.root.oop, s.root.ip, d); err != nil {
		return fmt.Errorf("solver: iteration %d: %w", s.iteration, err)
	}
	s.markSolved()
	return nil
}

// markSolved advances the game's state to reflect how much of the tree has
// allocated storage to solve, per spec.md §3's SolvedFlop/SolvedTurn/Solved
// progression (pkg/codec's Save records it in the snapshot and Load restores
// it).
func (s *Solver) markSolved() {
	switch s.Game.StorageMode {
	case cards.Flop:
		s.Game.State = game.SolvedFlop
	case cards.Turn:
		s.Game.State = game.SolvedTurn
	default:
		s.Game.State = game.Solved
	}
}

type reachPair struct{ oop, ip []float32 }

// initialReach seeds the root's reach vectors from each combo's range
// weight, so a range that assigns AA weight 1 and AKo weight 0.5 starts AKo
// at half the reach probability mass of AA, per spec.md §3's CardConfig.
func (s *Solver) initialReach() reachPair {
	root := &s.Game.Nodes[0]
	oopHands := root.Hands(tree.OOP)
	ipHands := root.Hands(tree.IP)
	oop := make([]float32, len(oopHands))
	for i, c := range oopHands {
		oop[i] = float32(s.Game.CardConfig.RangeOOP.Weight(c))
	}
	ip := make([]float32, len(ipHands))
	for i, c := range ipHands {
		ip[i] = float32(s.Game.CardConfig.RangeIP.Weight(c))
	}
	return reachPair{oop: oop, ip: ip}
}

// traverse is the recursive Discounted CFR+ step: it returns (cfvOOP, cfvIP)
// for node idx given the reach probabilities each player brings into it,
// updating regrets and the average-strategy sum along the way. Grounded in
// the teacher's pkg/solver/cfr.go's cfr() method (reach-probability
// threading, chance-node expectation, regret/strategy accumulation),
// generalized from one combo pair to a per-hand vector per node.
func (s *Solver) traverse(ctx context.Context, idx, depth int, reachOOP, reachIP []float32, d discountParams) (cfvOOP, cfvIP []float32, err error) {
	n := &s.Game.Nodes[idx]

	switch n.Kind {
	case tree.TerminalNodeKind:
		cfvOOP, cfvIP, err = s.terminalCFV(n, reachOOP, reachIP)
		if err != nil {
			return nil, nil, err
		}
		putCFV(s.Game, n, cfvOOP, cfvIP)
		return cfvOOP, cfvIP, nil

	case tree.ChanceNode:
		return s.traverseChance(ctx, idx, depth, reachOOP, reachIP, d)

	default:
		return s.traversePlayer(ctx, idx, depth, reachOOP, reachIP, d)
	}
}

func (s *Solver) traversePlayer(ctx context.Context, idx, depth int, reachOOP, reachIP []float32, d discountParams) ([]float32, []float32, error) {
	n := &s.Game.Nodes[idx]
	numActions := int(n.NumActions)
	actingHands := n.HandCount(n.ToAct)
	children := s.Game.ChildIndices(idx)

	var strategy []float32
	locked, isLocked := s.Game.LockedStrategy(idx)
	if isLocked {
		strategy = expandLockedStrategy(locked, numActions, actingHands)
	} else {
		regrets := getRegrets(s.Game, n, numActions*actingHands)
		strategy = regretMatching(regrets, numActions, actingHands)
	}

	actorReach := reachOOP
	oppReach := reachIP
	if n.ToAct == tree.IP {
		actorReach, oppReach = reachIP, reachOOP
	}

	// Each goroutine owns a disjoint index a of these slices, so no lock is
	// needed around the writes below.
	childActorCFV := make([][]float32, numActions)
	childOppCFV := make([][]float32, numActions)

	traverseChild := func(a int) error {
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
		cOOP, cIP, err := s.traverse(ctx, children[a], depth+1, childOOP, childIP, d)
		if err != nil {
			return err
		}
		if n.ToAct == tree.OOP {
			childActorCFV[a], childOppCFV[a] = cOOP, cIP
		} else {
			childActorCFV[a], childOppCFV[a] = cIP, cOOP
		}
		return nil
	}

	if err := s.fanOut(ctx, depth, len(children), traverseChild); err != nil {
		return nil, nil, err
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

	if !isLocked {
		regrets := getRegrets(s.Game, n, numActions*actingHands)
		updateRegrets(regrets, childActorCFV, nodeActorCFV, d, numActions, actingHands)
		putRegrets(s.Game, n, regrets)
		strategySum := getStrategySum(s.Game, n, numActions*actingHands)
		accumulateStrategySum(strategySum, strategy, actorReach, d.gammaT, numActions, actingHands)
		putStrategySum(s.Game, n, strategySum)
	}

	var cfvOOP, cfvIP []float32
	if n.ToAct == tree.OOP {
		cfvOOP, cfvIP = nodeActorCFV, nodeOppCFV
	} else {
		cfvOOP, cfvIP = nodeOppCFV, nodeActorCFV
	}
	putCFV(s.Game, n, cfvOOP, cfvIP)
	return cfvOOP, cfvIP, nil
}

// chanceResult holds one dealt card's recursion result, merged serially
// after every branch has run so the shared parent-space accumulators never
// need locking.
type chanceResult struct {
	oopHands, ipHands []float32
}

func (s *Solver) traverseChance(ctx context.Context, idx, depth int, reachOOP, reachIP []float32, d discountParams) ([]float32, []float32, error) {
	n := &s.Game.Nodes[idx]
	children := s.Game.ChildIndices(idx)
	parentOOP := n.Hands(tree.OOP)
	parentIP := n.Hands(tree.IP)

	results := make([]chanceResult, len(children))

	process := func(i int) error {
		childIdx := children[i]
		child := &s.Game.Nodes[childIdx]
		childOOPHands := child.Hands(tree.OOP)
		childIPHands := child.Hands(tree.IP)
		childReachOOP := remapReach(parentOOP, childOOPHands, reachOOP)
		childReachIP := remapReach(parentIP, childIPHands, reachIP)
		cOOP, cIP, err := s.traverse(ctx, childIdx, depth+1, childReachOOP, childReachIP, d)
		if err != nil {
			return err
		}
		results[i] = chanceResult{oopHands: cOOP, ipHands: cIP}
		return nil
	}

	if err := s.fanOut(ctx, depth, len(children), process); err != nil {
		return nil, nil, err
	}

	sumOOP := make([]float64, len(parentOOP))
	cntOOP := make([]int, len(parentOOP))
	sumIP := make([]float64, len(parentIP))
	cntIP := make([]int, len(parentIP))
	for i, childIdx := range children {
		child := &s.Game.Nodes[childIdx]
		accumulateBack(parentOOP, child.Hands(tree.OOP), results[i].oopHands, sumOOP, cntOOP)
		accumulateBack(parentIP, child.Hands(tree.IP), results[i].ipHands, sumIP, cntIP)
	}

	cfvOOP := averageBack(sumOOP, cntOOP)
	cfvIP := averageBack(sumIP, cntIP)
	putCFV(s.Game, n, cfvOOP, cfvIP)
	return cfvOOP, cfvIP, nil
}

// expandLockedStrategy accepts a lock either already shaped
// [action*hand] or given as one weight per action applied uniformly to
// every hand (SetStrategyLock's validation only requires the length be a
// multiple of the action count, so both shapes are legal).
func expandLockedStrategy(locked []float32, numActions, numHands int) []float32 {
	if len(locked) == numActions*numHands {
		return locked
	}
	out := make([]float32, numActions*numHands)
	for a := 0; a < numActions; a++ {
		v := locked[a%len(locked)]
		for h := 0; h < numHands; h++ {
			out[a*numHands+h] = v
		}
	}
	return out
}

// fanOut runs work(0..n) concurrently via errgroup while depth is shallow
// enough to be worth the goroutine overhead, serially otherwise.
func (s *Solver) fanOut(ctx context.Context, depth, n int, work func(i int) error) error {
	if depth >= s.maxParallelDepth || n <= 1 {
		for i := 0; i < n; i++ {
			if err := work(i); err != nil {
				return err
			}
		}
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return work(i) })
	}
	return g.Wait()
}
