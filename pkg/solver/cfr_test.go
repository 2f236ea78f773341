package solver

import (
	"context"
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

func riverConfig(t *testing.T) tree.Config {
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
	return tree.Config{
		InitialState:        cards.River,
		StartingPot:         10,
		EffectiveStack:      20,
		RakeRate:            0,
		RakeCap:             0,
		Flop:                so,
		Turn:                so,
		River:               so,
		AddAllinThreshold:   0.15,
		ForceAllinThreshold: 0.05,
		MergingThreshold:    0.1,
	}
}

func c(rank, suit uint8) cards.Card { return cards.MakeCard(rank, suit) }

// riverGame builds a small, fully allocated river-only PostFlopGame: OOP
// holds AA or KK, IP holds QQ or JJ, on a blank 2-4-6-7-9 board that
// conflicts with none of them.
func riverGame(t *testing.T) *game.PostFlopGame {
	t.Helper()
	return riverGameWithConfig(t, riverConfig(t))
}

func riverGameWithConfig(t *testing.T, cfg tree.Config) *game.PostFlopGame {
	t.Helper()
	at, err := tree.New(cfg)
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}

	rangeOOP := ranges.Range{
		ranges.NewCombo(c(12, 3), c(12, 2)): 1, // AsAh
		ranges.NewCombo(c(11, 0), c(11, 2)): 1, // KcKh
	}
	rangeIP := ranges.Range{
		ranges.NewCombo(c(10, 3), c(10, 2)): 1, // QsQh
		ranges.NewCombo(c(9, 0), c(9, 2)):   1, // JcJh
	}
	board := [5]cards.Card{c(0, 0), c(5, 1), c(7, 2), c(2, 3), c(4, 1)} // 2c 7d 9h 4s 6d

	cc := game.CardConfig{
		RangeOOP: rangeOOP,
		RangeIP:  rangeIP,
		Flop:     [3]cards.Card{board[0], board[1], board[2]},
		Turn:     board[3],
		River:    board[4],
	}
	g, err := game.Build(at, cc)
	if err != nil {
		t.Fatalf("game.Build: %v", err)
	}
	if err := g.AllocateMemory(false); err != nil {
		t.Fatalf("AllocateMemory: %v", err)
	}
	return g
}

func TestSolveProducesFiniteExploitability(t *testing.T) {
	g := riverGame(t)
	sv, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	achieved, err := sv.Solve(ctx, 50, 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	expl, err := sv.Exploitability(ctx)
	if err != nil {
		t.Fatalf("Exploitability: %v", err)
	}
	if achieved != expl {
		t.Errorf("Solve returned achieved exploitability %v, want %v", achieved, expl)
	}
	if expl < -1e-6 {
		t.Errorf("expected non-negative exploitability, got %v", expl)
	}
	if expl != expl { // NaN check
		t.Errorf("exploitability is NaN")
	}
}

// TestExploitabilityWithRake exercises spec.md §4.3's game_value term against
// a nonzero RakeRate, where value_oop + value_ip no longer cancels to zero
// and a naive (ev_best_oop + ev_best_ip) / 2 would understate exploitability.
func TestExploitabilityWithRake(t *testing.T) {
	cfg := riverConfig(t)
	cfg.RakeRate = 0.05
	cfg.RakeCap = 2
	g := riverGameWithConfig(t, cfg)
	sv, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	achieved, err := sv.Solve(ctx, 50, 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	expl, err := sv.Exploitability(ctx)
	if err != nil {
		t.Fatalf("Exploitability: %v", err)
	}
	if achieved != expl {
		t.Errorf("Solve returned achieved exploitability %v, want %v", achieved, expl)
	}
	if expl != expl {
		t.Fatal("exploitability is NaN")
	}
	if expl < -1e-6 {
		t.Errorf("expected non-negative exploitability under rake, got %v", expl)
	}

	// Without the game_value correction, exploitability would be
	// (ev_best_oop + ev_best_ip) / 2, which for a raked pot is systematically
	// shifted away from the true value by rake's removal of chips from the
	// pot. Confirm the two diverge so this test would catch a regression to
	// the pre-fix formula.
	root := s0Reach(t, sv)
	brOOP, err := sv.bestResponse(ctx, 0, tree.OOP, root.ip)
	if err != nil {
		t.Fatalf("bestResponse OOP: %v", err)
	}
	brIP, err := sv.bestResponse(ctx, 0, tree.IP, root.oop)
	if err != nil {
		t.Fatalf("bestResponse IP: %v", err)
	}
	naive := (weightedMean(brOOP, root.oop) + weightedMean(brIP, root.ip)) / 2
	if naive == expl {
		t.Errorf("expected rake-corrected exploitability to differ from the naive (ev_best_oop+ev_best_ip)/2 formula, both were %v", expl)
	}
}

func s0Reach(t *testing.T, sv *Solver) reachPair {
	t.Helper()
	return sv.initialReach()
}

func TestSolveAABeatsKKAtRiverShowdown(t *testing.T) {
	g := riverGame(t)
	sv, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := sv.Solve(context.Background(), 200, 0); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	root := &g.Nodes[0]
	oopHands := root.Hands(tree.OOP)
	sum := getStrategySum(g, root, int(root.NumActions)*root.HandCount(tree.OOP))
	avg := AverageStrategy(sum, int(root.NumActions), root.HandCount(tree.OOP))

	var betActionIdx = -1
	for i, a := range g.ActionTree.Root.Actions {
		if a.Kind == tree.Bet || a.Kind == tree.AllIn {
			betActionIdx = i
			break
		}
	}
	if betActionIdx < 0 {
		t.Fatal("expected a bet/all-in action at the river root")
	}

	numHands := root.HandCount(tree.OOP)
	var aaBetFreq, kkBetFreq float32
	for i, hand := range oopHands {
		freq := avg[betActionIdx*numHands+i]
		if hand.Hi.Rank() == 12 { // AA
			aaBetFreq = freq
		} else if hand.Hi.Rank() == 11 { // KK
			kkBetFreq = freq
		}
	}
	if aaBetFreq < kkBetFreq {
		t.Errorf("expected AA (the nuts) to bet at least as often as KK, got AA=%v KK=%v", aaBetFreq, kkBetFreq)
	}
}
