package tree

import (
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

func potBetOptions(t *testing.T, betPct, raisePct string) StreetOptions {
	t.Helper()
	opts, err := betsize.ParseOptions(betPct, raisePct)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	donk, err := betsize.ParseDonkOptions("")
	if err != nil {
		t.Fatalf("ParseDonkOptions: %v", err)
	}
	return StreetOptions{Bet: opts, Donk: donk}
}

func baseConfig(t *testing.T) Config {
	so := potBetOptions(t, "100%", "100%")
	return Config{
		InitialState:        cards.River,
		StartingPot:         10,
		EffectiveStack:      90,
		RakeRate:            0,
		RakeCap:             0,
		Flop:                so,
		Turn:                so,
		River:                so,
		AddAllinThreshold:   0.15,
		ForceAllinThreshold: 0.05,
		MergingThreshold:    0.1,
	}
}

func TestNewActionTreeRiverHasCheckAndBet(t *testing.T) {
	tr, err := New(baseConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Root.Kind != PlayerNode {
		t.Fatalf("expected root to be a player node")
	}
	foundCheck, foundBet := false, false
	for _, a := range tr.Root.Actions {
		if a.Kind == Check {
			foundCheck = true
		}
		if a.Kind == Bet || a.Kind == AllIn {
			foundBet = true
		}
	}
	if !foundCheck || !foundBet {
		t.Fatalf("expected Check and Bet/AllIn among root actions, got %v", tr.Root.Actions)
	}
}

func TestFoldTerminalAfterBet(t *testing.T) {
	tr, err := New(baseConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	var betIdx = -1
	for i, a := range tr.Root.Actions {
		if a.Kind == Bet {
			betIdx = i
			break
		}
	}
	if betIdx < 0 {
		t.Fatal("no Bet action found at root")
	}
	betChild := tr.Root.Children[betIdx]
	if betChild.Kind != PlayerNode {
		t.Fatalf("expected opponent decision node after bet")
	}
	var foldIdx = -1
	for i, a := range betChild.Actions {
		if a.Kind == Fold {
			foldIdx = i
		}
	}
	if foldIdx < 0 {
		t.Fatal("expected Fold among actions facing a bet")
	}
	if betChild.Children[foldIdx].Kind != TerminalNodeKind {
		t.Fatal("expected fold to lead to a terminal node")
	}
}

func TestConfigValidateRejectsBadRake(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RakeRate = 1.5
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for rake_rate > 1")
	}
}

func TestAllInCollapseNearStack(t *testing.T) {
	cfg := baseConfig(t)
	cfg.EffectiveStack = 100
	cfg.StartingPot = 190 // pot-sized bet of 190 vs a 100 stack should collapse to all-in
	tr, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range tr.Root.Actions {
		if a.Kind == Bet && float64(a.Chips) != 100 {
			t.Errorf("expected oversized pot bet to collapse to all-in (100), got %d", a.Chips)
		}
	}
}

func TestSetStrategyLockRequiresValidShape(t *testing.T) {
	tr, err := New(baseConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	numActions := len(tr.Root.Actions)
	if err := tr.SetStrategyLock(nil, make([]float32, numActions)); err != nil {
		t.Fatalf("expected valid lock to succeed: %v", err)
	}
	if err := tr.SetStrategyLock(nil, make([]float32, numActions+1)); err == nil {
		t.Fatal("expected error for mis-shaped lock strategy")
	}
}
