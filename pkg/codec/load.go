package codec

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Load implements spec.md §4.6's "Reload": it decodes a snapshot and
// rebuilds an arena sized to match it. If the snapshot's storage mode is
// below River, g.State and g.StorageMode reflect that (SolvedFlop/
// SolvedTurn), and any later attempt to navigate a game.Cursor past that
// street surfaces as a *tree.StateError rather than touching unallocated
// pool bytes.
func Load(r io.Reader) (*game.PostFlopGame, error) {
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("codec: read header: %w", err)
	}
	if hdr.Magic != magicValue {
		return nil, &DecodeError{Msg: "not a postflop-solver snapshot (bad magic)"}
	}
	if hdr.Version != formatVersion {
		return nil, &DecodeError{Msg: fmt.Sprintf("unsupported snapshot version %d", hdr.Version)}
	}

	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("codec: decode snapshot: %w", err)
	}

	cfg, err := snap.TreeConfig.toConfig()
	if err != nil {
		return nil, fmt.Errorf("codec: rebuild tree config: %w", err)
	}
	at, err := tree.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("codec: rebuild action tree: %w", err)
	}
	for _, lock := range snap.Locks {
		if err := at.SetStrategyLock(lock.Path, lock.Strategy); err != nil {
			return nil, fmt.Errorf("codec: reapply lock: %w", err)
		}
	}

	g, err := game.Build(at, snap.CardConfig)
	if err != nil {
		return nil, fmt.Errorf("codec: rebuild arena: %w", err)
	}
	if err := g.AllocateMemoryUpTo(snap.StorageMode, snap.IsCompressed); err != nil {
		return nil, fmt.Errorf("codec: reallocate storage: %w", err)
	}

	if len(snap.StrategyPool) != len(g.StrategyPool) ||
		len(snap.RegretPool) != len(g.RegretPool) ||
		len(snap.IPCFVPool) != len(g.IPCFVPool) ||
		len(snap.ChancePool) != len(g.ChancePool) {
		return nil, &DecodeError{Msg: "pool size mismatch after rebuild; snapshot does not match a deterministic rebuild of its own TreeConfig/CardConfig"}
	}
	copy(g.StrategyPool, snap.StrategyPool)
	copy(g.RegretPool, snap.RegretPool)
	copy(g.IPCFVPool, snap.IPCFVPool)
	copy(g.ChancePool, snap.ChancePool)

	for i := range g.Nodes {
		if i >= len(snap.NodeScales) {
			break
		}
		g.Nodes[i].Scale1 = snap.NodeScales[i].S1
		g.Nodes[i].Scale2 = snap.NodeScales[i].S2
		g.Nodes[i].Scale3 = snap.NodeScales[i].S3
	}

	g.State = snap.State
	return g, nil
}
