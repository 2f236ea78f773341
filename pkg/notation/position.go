// Package notation parses the compact position strings cmd/postflow-solver
// takes on its command line into range/stack/board inputs, adapted from the
// teacher's pkg/notation/parser.go FEN-style grammar
// ("BTN:AsKd:S98/BB:??:S97|P3|Th9h2c|>BTN"). The postflop solver always has
// OOP to act at the root (pkg/tree.New builds it that way), so the trailing
// "|>POS" action indicator the teacher's preflop-aware grammar needed is
// dropped; everything else - slash-separated players, "S<stack>" suffix,
// "P<pot>" pot, concatenated board cards - carries over unchanged.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/ranges"
)

// PositionSpec is the parsed form of one position string: two weighted
// ranges, the common effective stack, the starting pot, and the board dealt
// so far. It carries no opinion about bet sizing or rake - those come from
// separate CLI flags, exactly as the teacher's main.go builds its
// tree.ActionConfig out of flags rather than out of notation.GameState.
type PositionSpec struct {
	OOPRange       ranges.Range
	IPRange        ranges.Range
	EffectiveStack float64
	StartingPot    float64
	Board          cards.Board
}

// ParsePosition parses "OOP:<range>:S<stack>/IP:<range>:S<stack>|P<pot>|<board>".
// Example: "OOP:AA,KK:S100/IP:QQ,JJ:S100|P10|Kh9s4c7d2s"
func ParsePosition(s string) (*PositionSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("notation: empty position string")
	}

	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("notation: invalid position format %q (expected players|pot|board)", s)
	}

	oop, ip, stack, err := parsePlayers(parts[0])
	if err != nil {
		return nil, fmt.Errorf("notation: error parsing players: %w", err)
	}
	pot, err := parsePot(parts[1])
	if err != nil {
		return nil, fmt.Errorf("notation: error parsing pot: %w", err)
	}
	board, err := cards.ParseBoard(parts[2])
	if err != nil {
		return nil, fmt.Errorf("notation: error parsing board: %w", err)
	}

	return &PositionSpec{
		OOPRange:       oop,
		IPRange:        ip,
		EffectiveStack: stack,
		StartingPot:    pot,
		Board:          board,
	}, nil
}

func parsePlayers(s string) (oop, ip ranges.Range, stack float64, err error) {
	players := strings.Split(s, "/")
	if len(players) != 2 {
		return nil, nil, 0, fmt.Errorf("expected exactly 2 players separated by '/', got %d", len(players))
	}

	oopRange, oopStack, err := parsePlayer(players[0], "OOP")
	if err != nil {
		return nil, nil, 0, err
	}
	ipRange, ipStack, err := parsePlayer(players[1], "IP")
	if err != nil {
		return nil, nil, 0, err
	}
	if oopStack != ipStack {
		return nil, nil, 0, fmt.Errorf("OOP stack %.2f and IP stack %.2f must match (single-street solve assumes symmetric effective stacks)", oopStack, ipStack)
	}
	return oopRange, ipRange, oopStack, nil
}

func parsePlayer(s, wantLabel string) (ranges.Range, float64, error) {
	s = strings.TrimSpace(s)
	// The first ':' ends the label and the last starts the stack, so a
	// weighted range ("AA:0.5,KK") keeps its own ':' separators.
	first, last := strings.Index(s, ":"), strings.LastIndex(s, ":")
	if first < 0 || first == last {
		return nil, 0, fmt.Errorf("invalid player format %q (expected POS:RANGE:Sstack)", s)
	}
	parts := []string{s[:first], s[first+1 : last], s[last+1:]}
	label := strings.TrimSpace(parts[0])
	if !strings.EqualFold(label, wantLabel) {
		return nil, 0, fmt.Errorf("expected position %q, got %q", wantLabel, label)
	}

	rangeStr := strings.TrimSpace(parts[1])
	r, err := ranges.ParseRange(rangeStr)
	if err != nil {
		return nil, 0, fmt.Errorf("error parsing range %q: %w", rangeStr, err)
	}

	stackStr := strings.TrimSpace(parts[2])
	if len(stackStr) < 2 || (stackStr[0] != 'S' && stackStr[0] != 's') {
		return nil, 0, fmt.Errorf("invalid stack format %q (expected S<amount>)", stackStr)
	}
	stack, err := strconv.ParseFloat(stackStr[1:], 64)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid stack amount %q: %w", stackStr, err)
	}
	return r, stack, nil
}

func parsePot(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return 0, fmt.Errorf("invalid pot format %q (expected P<amount>)", s)
	}
	return strconv.ParseFloat(s[1:], 64)
}
