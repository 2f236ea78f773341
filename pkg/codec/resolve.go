package codec

import (
	"context"
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/solver"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// ReloadAndResolveCopy implements spec.md §4.6's resolve algorithm:
//  1. Construct a fresh ng from g's ActionTree and CardConfig.
//  2. Allocate full-River storage.
//  3. Copy every valid payload pool from g into ng (streets <= g.StorageMode).
//  4. Install temporary locks on every Player node on copied streets so the
//     loaded strategies are preserved.
//  5. Run the solver; locked nodes don't update regrets but still propagate
//     CFVs, so unknown streets get a correct best response to the loaded ones.
//  6. Drop the synthetic locks.
//
// g itself is untouched; ng is an independent game sharing g's ActionTree
// pointer and CardConfig value.
func ReloadAndResolveCopy(ctx context.Context, g *game.PostFlopGame, iterations int) (*game.PostFlopGame, error) {
	if g.State < game.MemoryAllocated {
		return nil, &tree.StateError{Msg: "codec: resolve: source game has no allocated storage"}
	}

	ng, err := game.Build(g.ActionTree, g.CardConfig)
	if err != nil {
		return nil, fmt.Errorf("codec: resolve: rebuild: %w", err)
	}
	if err := ng.AllocateMemory(g.IsCompressed); err != nil {
		return nil, fmt.Errorf("codec: resolve: allocate: %w", err)
	}
	if err := copyPayload(g, ng, g.StorageMode); err != nil {
		return nil, fmt.Errorf("codec: resolve: copy: %w", err)
	}

	synthetic := installSyntheticLocks(ng, g.StorageMode)

	sv, err := solver.New(ng)
	if err != nil {
		return nil, fmt.Errorf("codec: resolve: %w", err)
	}
	if _, err := sv.Solve(ctx, iterations, 0); err != nil {
		removeSyntheticLocks(ng, synthetic)
		return nil, fmt.Errorf("codec: resolve: solve: %w", err)
	}

	removeSyntheticLocks(ng, synthetic)
	return ng, nil
}

// ReloadAndResolve performs the same work as ReloadAndResolveCopy and
// replaces *g in place, releasing the source's storage to the garbage
// collector once the old pools are no longer referenced.
func ReloadAndResolve(ctx context.Context, g *game.PostFlopGame, iterations int) error {
	ng, err := ReloadAndResolveCopy(ctx, g, iterations)
	if err != nil {
		return err
	}
	*g = *ng
	return nil
}

// installSyntheticLocks freezes every not-already-locked Player node at
// street <= upToStreet to its loaded average strategy, per spec.md §4.6
// step 4. Nodes already locked via ActionTree's deferred path instructions
// are left alone: their fixed strategy already has the same freezing
// effect, so re-locking them would be redundant rather than wrong, but
// skipping them keeps the set of indices this function must later clear
// exactly the ones it introduced.
func installSyntheticLocks(ng *game.PostFlopGame, upToStreet cards.BoardState) []int {
	var installed []int
	for i := range ng.Nodes {
		n := &ng.Nodes[i]
		if n.Kind != tree.PlayerNode || n.Street > upToStreet || n.IsLocked {
			continue
		}
		hands := n.HandCount(n.ToAct)
		count := int(n.NumActions) * hands
		sum := readVals(ng.StrategyPool, n.StrategyOff, count, n.IsCompressed, n.Scale1)
		avg := solver.AverageStrategy(sum, int(n.NumActions), hands)
		ng.SetLockedStrategy(i, avg)
		installed = append(installed, i)
	}
	return installed
}

func removeSyntheticLocks(ng *game.PostFlopGame, installed []int) {
	for _, idx := range installed {
		ng.ClearLockedStrategy(idx)
	}
}
