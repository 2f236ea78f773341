package game

import "github.com/holdem-tree/postflop-solver/pkg/tree"

// StrategyAt decodes node idx's running strategy-sum vector (actions-major,
// hands-minor, matching pkg/solver's accumulation order), valid only for
// Kind == tree.PlayerNode. Callers average it with pkg/solver.AverageStrategy
// to get the reportable mixed strategy; the raw sum is kept in the pool
// rather than an average so further CFR iterations can keep accumulating
// into it.
func (g *PostFlopGame) StrategyAt(idx int) []float32 {
	n := &g.Nodes[idx]
	count := int(n.NumActions) * n.handCount(n.ToAct)
	return g.readPool(g.StrategyPool, n.StrategyOff, count, n.Scale1, n.IsCompressed)
}

// CFVAt decodes node idx's counterfactual-value vector for player p, valid
// for every node kind (every node carries both players' CFVs, per the
// storage-pool resolution recorded in DESIGN.md).
func (g *PostFlopGame) CFVAt(idx int, p tree.Player) []float32 {
	n := &g.Nodes[idx]
	if p == tree.OOP {
		return g.readPool(g.IPCFVPool, n.CFVOopOff, n.handCount(tree.OOP), n.Scale3, n.IsCompressed)
	}
	return g.readPool(g.ChancePool, n.CFVIpOff, n.handCount(tree.IP), n.Scale3, n.IsCompressed)
}

func (g *PostFlopGame) readPool(pool []byte, off uint32, n int, scale float32, compressed bool) []float32 {
	if compressed {
		return AsQ15Slice(pool, off, n, scale)
	}
	return AsF32Slice(pool, off, n)
}

// Root returns the arena index of the game's initial decision node.
func (g *PostFlopGame) Root() int { return 0 }

// Node exposes node idx for read-only inspection by callers outside the
// package (pkg/solver, pkg/codec, cmd/postflow-solver's report printer).
func (g *PostFlopGame) Node(idx int) *PostFlopNode { return &g.Nodes[idx] }
