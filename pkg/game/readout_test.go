package game

import (
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

func c(rank, suit uint8) cards.Card { return cards.MakeCard(rank, suit) }

// smallRiverGame builds the same shape of river-only two-vs-two game
// pkg/solver's and pkg/codec's tests use, kept local to this package so
// pkg/game's own readout accessors have a direct test rather than relying
// on pkg/solver importing back into pkg/game to exercise them.
func smallRiverGame(t *testing.T) *PostFlopGame {
	t.Helper()
	opts, err := betsize.ParseOptions("100%", "100%")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	donk, err := betsize.ParseDonkOptions("")
	if err != nil {
		t.Fatalf("ParseDonkOptions: %v", err)
	}
	so := tree.StreetOptions{Bet: opts, Donk: donk}
	cfg := tree.Config{
		InitialState:        cards.River,
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

	cc := CardConfig{
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
		River: c(4, 1),                                  // 6d
	}
	g, err := Build(at, cc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := g.AllocateMemory(false); err != nil {
		t.Fatalf("AllocateMemory: %v", err)
	}
	return g
}

func TestRootAndNodeIndexIntoTheSameArena(t *testing.T) {
	g := smallRiverGame(t)
	if g.Root() != 0 {
		t.Errorf("Root() = %d, want 0", g.Root())
	}
	if g.Node(g.Root()) != &g.Nodes[0] {
		t.Error("Node(Root()) did not return the same node the arena stores at index 0")
	}
}

func TestStrategyAtMatchesAccumulatorLength(t *testing.T) {
	g := smallRiverGame(t)
	root := g.Node(g.Root())
	if root.Kind != tree.PlayerNode {
		t.Fatalf("root.Kind = %v, want PlayerNode", root.Kind)
	}
	sum := g.StrategyAt(g.Root())
	want := int(root.NumActions) * root.HandCount(root.ToAct)
	if len(sum) != want {
		t.Errorf("StrategyAt length = %d, want %d (actions*hands)", len(sum), want)
	}
	// Before any Solve call the strategy-sum accumulator is all zeros.
	for i, v := range sum {
		if v != 0 {
			t.Fatalf("sum[%d] = %v, want 0 before solving", i, v)
			break
		}
	}
}

func TestCFVAtReadsBothPlayersEverywhere(t *testing.T) {
	g := smallRiverGame(t)
	oopCFV := g.CFVAt(g.Root(), tree.OOP)
	ipCFV := g.CFVAt(g.Root(), tree.IP)
	root := g.Node(g.Root())
	if len(oopCFV) != root.HandCount(tree.OOP) {
		t.Errorf("OOP CFV length = %d, want %d", len(oopCFV), root.HandCount(tree.OOP))
	}
	if len(ipCFV) != root.HandCount(tree.IP) {
		t.Errorf("IP CFV length = %d, want %d", len(ipCFV), root.HandCount(tree.IP))
	}
}
