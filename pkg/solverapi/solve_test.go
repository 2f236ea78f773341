package solverapi

import (
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/notation"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// TestNewGameBuildsFromParsedPosition drives NewGame through the same
// pkg/notation entry point cmd/postflow-solver and cmd/postflow-server use,
// rather than hand-building a tree.Config/game.CardConfig the way
// pkg/solver's and pkg/codec's own tests do - this is the thing neither of
// those test suites exercises: the position-string-to-allocated-game path.
func TestNewGameBuildsFromParsedPosition(t *testing.T) {
	spec, err := notation.ParsePosition("OOP:AA,KK:S100/IP:QQ,JJ:S100|P10|Kh9s4c")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}

	opts := DefaultOptions()
	g, err := NewGame(spec, opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	if len(g.Nodes) == 0 {
		t.Fatal("expected a non-empty node arena")
	}
	root := g.Node(g.Root())
	if root.Kind != tree.PlayerNode {
		t.Fatalf("root.Kind = %v, want PlayerNode", root.Kind)
	}
	if root.ToAct != tree.OOP {
		t.Errorf("root.ToAct = %v, want OOP (the solver always seats OOP first)", root.ToAct)
	}
	if got := root.HandCount(tree.OOP); got != 9 {
		t.Errorf("root OOP hand count = %d, want 9 (6 AA + 3 KK left after the Kh on the board)", got)
	}
	if got := root.HandCount(tree.IP); got != 12 {
		t.Errorf("root IP hand count = %d, want 12 (QQ+JJ)", got)
	}
}

func TestNewGameRejectsBadBetSizeGrammar(t *testing.T) {
	spec, err := notation.ParsePosition("OOP:AA:S100/IP:QQ:S100|P10|Kh9s4c")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	opts := DefaultOptions()
	opts.BetSizes = "not-a-size"
	if _, err := NewGame(spec, opts); err == nil {
		t.Error("expected an error from a malformed bet-size string")
	}
}

func TestNewGameHonorsCompressedOption(t *testing.T) {
	spec, err := notation.ParsePosition("OOP:AA:S100/IP:QQ:S100|P10|Kh9s4c")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	opts := DefaultOptions()
	opts.Compressed = true
	g, err := NewGame(spec, opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if !g.IsCompressed {
		t.Error("expected IsCompressed to be true when Options.Compressed is set")
	}
}
