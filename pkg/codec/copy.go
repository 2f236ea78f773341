package codec

import (
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

func readVals(pool []byte, off uint32, n int, compressed bool, scale float32) []float32 {
	if compressed {
		return game.AsQ15Slice(pool, off, n, scale)
	}
	return game.AsF32Slice(pool, off, n)
}

// copyPayload copies every payload pool (strategy sum, regret, both CFV
// vectors) from src into dst for every node at street <= upToStreet,
// decompressing through src's own per-node scale and requantizing against
// dst's compression mode. It is spec.md §4.6 step 3's "copy all valid
// payload pools", shared between Save (compacting to a smaller target mode)
// and ReloadAndResolveCopy (expanding a partial snapshot back to full
// river).
//
// src and dst must be built from the same ActionTree and CardConfig:
// PostFlopGame.Build is a pure function of that pair, so two games built
// from it are structurally identical node for node, which is what lets this
// walk both Nodes slices in lockstep by index instead of re-deriving a
// correspondence.
func copyPayload(src, dst *game.PostFlopGame, upToStreet cards.BoardState) error {
	if len(src.Nodes) != len(dst.Nodes) {
		return fmt.Errorf("codec: node count mismatch (%d vs %d); src and dst must share one ActionTree/CardConfig", len(src.Nodes), len(dst.Nodes))
	}

	for i := range src.Nodes {
		sn := &src.Nodes[i]
		dn := &dst.Nodes[i]
		if sn.Street > upToStreet {
			continue
		}

		cfvOOP := readVals(src.IPCFVPool, sn.CFVOopOff, sn.HandCount(tree.OOP), sn.IsCompressed, sn.Scale3)
		cfvIP := readVals(src.ChancePool, sn.CFVIpOff, sn.HandCount(tree.IP), sn.IsCompressed, sn.Scale3)
		if dst.IsCompressed {
			dn.Scale3 = game.PutQ15SlicesShared([]game.Q15Region{
				{Pool: dst.IPCFVPool, Offset: dn.CFVOopOff, Vals: cfvOOP},
				{Pool: dst.ChancePool, Offset: dn.CFVIpOff, Vals: cfvIP},
			})
		} else {
			game.PutF32Slice(dst.IPCFVPool, dn.CFVOopOff, cfvOOP)
			game.PutF32Slice(dst.ChancePool, dn.CFVIpOff, cfvIP)
		}

		if sn.Kind != tree.PlayerNode {
			continue
		}
		actingHands := sn.HandCount(sn.ToAct)
		count := int(sn.NumActions) * actingHands
		strat := readVals(src.StrategyPool, sn.StrategyOff, count, sn.IsCompressed, sn.Scale1)
		regret := readVals(src.RegretPool, sn.RegretOff, count, sn.IsCompressed, sn.Scale2)
		if dst.IsCompressed {
			dn.Scale1 = game.PutQ15Slice(dst.StrategyPool, dn.StrategyOff, strat)
			dn.Scale2 = game.PutQ15Slice(dst.RegretPool, dn.RegretOff, regret)
		} else {
			game.PutF32Slice(dst.StrategyPool, dn.StrategyOff, strat)
			game.PutF32Slice(dst.RegretPool, dn.RegretOff, regret)
		}
	}
	return nil
}
