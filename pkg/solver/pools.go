package solver

import (
	"github.com/holdem-tree/postflop-solver/pkg/game"
)

// Compressed storage uses three rescale factors per node (Scale1/2/3); there
// are four pools (strategy sum, regret, OOP cfv, IP cfv), so the two cfv
// pools share Scale3. Both cfv vectors have the same rough magnitude (pot-
// sized chip values), so one shared scale loses little precision.

func getStrategySum(g *game.PostFlopGame, n *game.PostFlopNode, count int) []float32 {
	if n.IsCompressed {
		return game.AsQ15Slice(g.StrategyPool, n.StrategyOff, count, n.Scale1)
	}
	return game.AsF32Slice(g.StrategyPool, n.StrategyOff, count)
}

func putStrategySum(g *game.PostFlopGame, n *game.PostFlopNode, vals []float32) {
	if n.IsCompressed {
		n.Scale1 = game.PutQ15Slice(g.StrategyPool, n.StrategyOff, vals)
		return
	}
	game.PutF32Slice(g.StrategyPool, n.StrategyOff, vals)
}

func getRegrets(g *game.PostFlopGame, n *game.PostFlopNode, count int) []float32 {
	if n.IsCompressed {
		return game.AsQ15Slice(g.RegretPool, n.RegretOff, count, n.Scale2)
	}
	return game.AsF32Slice(g.RegretPool, n.RegretOff, count)
}

func putRegrets(g *game.PostFlopGame, n *game.PostFlopNode, vals []float32) {
	if n.IsCompressed {
		n.Scale2 = game.PutQ15Slice(g.RegretPool, n.RegretOff, vals)
		return
	}
	game.PutF32Slice(g.RegretPool, n.RegretOff, vals)
}

func getCFVOop(g *game.PostFlopGame, n *game.PostFlopNode) []float32 {
	count := int(n.NumHandsOOP)
	if n.IsCompressed {
		return game.AsQ15Slice(g.IPCFVPool, n.CFVOopOff, count, n.Scale3)
	}
	return game.AsF32Slice(g.IPCFVPool, n.CFVOopOff, count)
}

func getCFVIp(g *game.PostFlopGame, n *game.PostFlopNode) []float32 {
	count := int(n.NumHandsIP)
	if n.IsCompressed {
		return game.AsQ15Slice(g.ChancePool, n.CFVIpOff, count, n.Scale3)
	}
	return game.AsF32Slice(g.ChancePool, n.CFVIpOff, count)
}

func putCFV(g *game.PostFlopGame, n *game.PostFlopNode, cfvOOP, cfvIP []float32) {
	if n.IsCompressed {
		n.Scale3 = game.PutQ15SlicesShared([]game.Q15Region{
			{Pool: g.IPCFVPool, Offset: n.CFVOopOff, Vals: cfvOOP},
			{Pool: g.ChancePool, Offset: n.CFVIpOff, Vals: cfvIP},
		})
		return
	}
	game.PutF32Slice(g.IPCFVPool, n.CFVOopOff, cfvOOP)
	game.PutF32Slice(g.ChancePool, n.CFVIpOff, cfvIP)
}
