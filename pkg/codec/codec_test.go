package codec

import (
	"bytes"
	"context"
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/solver"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

func c(rank, suit uint8) cards.Card { return cards.MakeCard(rank, suit) }

// turnGame builds a small, fully allocated turn-initial PostFlopGame: OOP
// holds AA or KK, IP holds QQ or JJ, on a 2-4-6-7 turn board with the river
// left to be dealt by the tree's one chance node.
func turnGame(t *testing.T) *game.PostFlopGame {
	t.Helper()
	opts, err := betsize.ParseOptions("50%", "50%")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	donk, err := betsize.ParseDonkOptions("")
	if err != nil {
		t.Fatalf("ParseDonkOptions: %v", err)
	}
	so := tree.StreetOptions{Bet: opts, Donk: donk}
	cfg := tree.Config{
		InitialState:        cards.Turn,
		StartingPot:         10,
		EffectiveStack:      20,
		Flop:                so,
		Turn:                so,
		River:               so,
		AddAllinThreshold:   0.15,
		ForceAllinThreshold: 0.05,
		MergingThreshold:    0.1,
	}
	at, err := tree.New(cfg)
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}

	cc := game.CardConfig{
		RangeOOP: ranges.Range{
			ranges.NewCombo(c(12, 3), c(12, 2)): 1, // AsAh
			ranges.NewCombo(c(11, 0), c(11, 2)): 1, // KcKh
		},
		RangeIP: ranges.Range{
			ranges.NewCombo(c(10, 3), c(10, 2)): 1, // QsQh
			ranges.NewCombo(c(9, 0), c(9, 2)):   1, // JcJh
		},
		Flop:  [3]cards.Card{c(0, 0), c(5, 1), c(7, 2)}, // 2c 7d 9h
		Turn:  c(2, 3),                                  // 4s
		River: cards.NotDealt,
	}

	g, err := game.Build(at, cc)
	if err != nil {
		t.Fatalf("game.Build: %v", err)
	}
	return g
}

func solvedTurnGame(t *testing.T, iterations int) *game.PostFlopGame {
	t.Helper()
	g := turnGame(t)
	if err := g.AllocateMemory(false); err != nil {
		t.Fatalf("AllocateMemory: %v", err)
	}
	sv, err := solver.New(g)
	if err != nil {
		t.Fatalf("solver.New: %v", err)
	}
	if _, err := sv.Solve(context.Background(), iterations, 0); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return g
}

func TestSaveLoadRoundTripFullRiver(t *testing.T) {
	g := solvedTurnGame(t, 20)

	var buf bytes.Buffer
	if err := Save(g, cards.River, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g2, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g2.StorageMode != cards.River {
		t.Errorf("StorageMode = %v, want River", g2.StorageMode)
	}
	if g2.State != game.Solved {
		t.Errorf("State = %v, want Solved", g2.State)
	}
	if len(g2.Nodes) != len(g.Nodes) {
		t.Fatalf("node count = %d, want %d", len(g2.Nodes), len(g.Nodes))
	}
	if !bytes.Equal(g2.StrategyPool, g.StrategyPool) {
		t.Errorf("strategy pool not preserved by round trip")
	}
	if !bytes.Equal(g2.RegretPool, g.RegretPool) {
		t.Errorf("regret pool not preserved by round trip")
	}
	if !bytes.Equal(g2.IPCFVPool, g.IPCFVPool) {
		t.Errorf("OOP cfv pool not preserved by round trip")
	}
	if !bytes.Equal(g2.ChancePool, g.ChancePool) {
		t.Errorf("IP cfv pool not preserved by round trip")
	}
}

func TestSaveWithSmallerTargetModeCompacts(t *testing.T) {
	g := solvedTurnGame(t, 20)

	var full, partial bytes.Buffer
	if err := Save(g, cards.River, &full); err != nil {
		t.Fatalf("Save(River): %v", err)
	}
	if err := Save(g, cards.Turn, &partial); err != nil {
		t.Fatalf("Save(Turn): %v", err)
	}

	g2, err := Load(&partial)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g2.StorageMode != cards.Turn {
		t.Errorf("StorageMode = %v, want Turn", g2.StorageMode)
	}
	if g2.State != game.SolvedTurn {
		t.Errorf("State = %v, want SolvedTurn", g2.State)
	}
	if len(g2.StrategyPool) >= len(g.StrategyPool) {
		t.Errorf("expected a turn-only snapshot's strategy pool (%d bytes) to be smaller than the full river one (%d bytes)",
			len(g2.StrategyPool), len(g.StrategyPool))
	}
	if partial.Len() >= full.Len() {
		t.Errorf("expected a turn-scoped save (%d bytes) to be smaller than a full-river save (%d bytes)", partial.Len(), full.Len())
	}
}

func TestSaveRejectsTargetModeAboveStorageMode(t *testing.T) {
	g := turnGame(t)
	if err := g.AllocateMemoryUpTo(cards.Turn, false); err != nil {
		t.Fatalf("AllocateMemoryUpTo: %v", err)
	}
	var buf bytes.Buffer
	if err := Save(g, cards.River, &buf); err == nil {
		t.Error("expected an error saving a target mode beyond the game's allocated storage mode")
	}
}

func TestReloadAndResolveCopyPreservesTurnStrategyAndSolvesRiver(t *testing.T) {
	g := solvedTurnGame(t, 50)

	partial, err := game.Build(g.ActionTree, g.CardConfig)
	if err != nil {
		t.Fatalf("game.Build: %v", err)
	}
	if err := partial.AllocateMemoryUpTo(cards.Turn, false); err != nil {
		t.Fatalf("AllocateMemoryUpTo: %v", err)
	}
	if err := copyPayload(g, partial, cards.Turn); err != nil {
		t.Fatalf("copyPayload: %v", err)
	}
	partial.StorageMode = cards.Turn
	partial.State = game.SolvedTurn

	root := &partial.Nodes[0]
	wantSum := readVals(partial.StrategyPool, root.StrategyOff,
		int(root.NumActions)*root.HandCount(tree.OOP), root.IsCompressed, root.Scale1)

	resolved, err := ReloadAndResolveCopy(context.Background(), partial, 20)
	if err != nil {
		t.Fatalf("ReloadAndResolveCopy: %v", err)
	}
	if resolved.StorageMode != cards.River {
		t.Errorf("StorageMode = %v, want River", resolved.StorageMode)
	}
	if resolved.State != game.Solved {
		t.Errorf("State = %v, want Solved", resolved.State)
	}

	root2 := &resolved.Nodes[0]
	gotSum := readVals(resolved.StrategyPool, root2.StrategyOff,
		int(root2.NumActions)*root2.HandCount(tree.OOP), root2.IsCompressed, root2.Scale1)
	for i := range wantSum {
		if gotSum[i] != wantSum[i] {
			t.Errorf("turn-street strategy sum changed by resolve at index %d: got %v, want %v", i, gotSum[i], wantSum[i])
		}
	}

	for i := range resolved.Nodes {
		if resolved.Nodes[i].IsLocked {
			t.Errorf("node %d still locked after ReloadAndResolveCopy; synthetic locks should have been removed", i)
		}
	}
}
