package codec

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Save implements spec.md §4.6's "save with target mode": it writes a
// snapshot covering only streets <= targetMode, even if g itself holds
// storage for deeper streets. targetMode must not exceed g.StorageMode -
// you cannot save a street that was never allocated.
//
// Save always re-derives the written pools from a fresh game built at
// targetMode rather than slicing g's own pools directly: AllocateMemoryUpTo
// packs offsets densely over exactly the nodes at or below its target
// street, in arena visitation order, so a game allocated to River and one
// allocated to Turn do not share a byte-for-byte prefix. Going through
// copyPayload (shared with ReloadAndResolveCopy) re-derives the correct
// compact layout instead of assuming one that doesn't hold.
func Save(g *game.PostFlopGame, targetMode cards.BoardState, w io.Writer) error {
	if g.State < game.MemoryAllocated {
		return &tree.StateError{Msg: "codec: save: game has no allocated storage"}
	}
	if targetMode > g.StorageMode {
		return &tree.StateError{Msg: fmt.Sprintf("codec: save: target mode %v exceeds allocated storage mode %v", targetMode, g.StorageMode)}
	}

	tmp, err := game.Build(g.ActionTree, g.CardConfig)
	if err != nil {
		return fmt.Errorf("codec: save: rebuild: %w", err)
	}
	if err := tmp.AllocateMemoryUpTo(targetMode, g.IsCompressed); err != nil {
		return fmt.Errorf("codec: save: allocate: %w", err)
	}
	if err := copyPayload(g, tmp, targetMode); err != nil {
		return fmt.Errorf("codec: save: %w", err)
	}

	state := g.State
	if targetMode < g.StorageMode {
		state = stateForStreet(targetMode)
	}

	snap := snapshot{
		FormatVersion: formatVersion,
		TreeConfig:    toConfigSnapshot(g.ActionTree.Config),
		CardConfig:    g.CardConfig,
		Locks:         g.ActionTree.Locks(),
		StorageMode:   targetMode,
		State:         state,
		IsCompressed:  g.IsCompressed,
		NodeScales:    collectScales(tmp),
		StrategyPool:  tmp.StrategyPool,
		RegretPool:    tmp.RegretPool,
		IPCFVPool:     tmp.IPCFVPool,
		ChancePool:    tmp.ChancePool,
	}

	hdr := header{
		Magic:       magicValue,
		Version:     formatVersion,
		StorageMode: uint8(targetMode),
		Compressed:  boolByte(g.IsCompressed),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("codec: encode snapshot: %w", err)
	}
	return nil
}
