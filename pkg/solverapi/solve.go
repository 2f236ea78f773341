// Package solverapi bundles a parsed position plus bet-sizing/rake/storage
// options into a built, memory-allocated PostFlopGame, the one piece of
// setup both cmd/postflow-solver (direct CLI flags) and cmd/postflow-server
// (JSON job requests) need identically - separated out so the two command
// front ends share it rather than each re-deriving tree.Config/CardConfig
// from a notation.PositionSpec on their own, the way the teacher's server
// package separates server/engine from cmd/poker-solver's own flag parsing.
package solverapi

import (
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/notation"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

// Options holds the tree.Config knobs a position string doesn't carry.
type Options struct {
	BetSizes            string
	RaiseSizes          string
	DonkSizes           string
	AddAllinThreshold   float64
	ForceAllinThreshold float64
	MergeThreshold      float64
	RakeRate            float64
	RakeCap             float64
	Compressed          bool
}

// DefaultOptions mirrors cmd/postflow-solver's flag defaults.
func DefaultOptions() Options {
	return Options{
		BetSizes:            "50%,100%",
		RaiseSizes:          "100%",
		AddAllinThreshold:   0.15,
		ForceAllinThreshold: 0.05,
		MergeThreshold:      0.1,
	}
}

// NewGame builds the ActionTree and PostFlopGame for spec+opts and allocates
// storage through the river, ready for a Solver.
func NewGame(spec *notation.PositionSpec, opts Options) (*game.PostFlopGame, error) {
	betOpts, err := betsize.ParseOptions(opts.BetSizes, opts.RaiseSizes)
	if err != nil {
		return nil, fmt.Errorf("solverapi: bet sizes: %w", err)
	}
	donk, err := betsize.ParseDonkOptions(opts.DonkSizes)
	if err != nil {
		return nil, fmt.Errorf("solverapi: donk sizes: %w", err)
	}
	so := tree.StreetOptions{Bet: betOpts, Donk: donk}

	initial, err := spec.Board.State()
	if err != nil {
		return nil, fmt.Errorf("solverapi: board: %w", err)
	}

	cfg := tree.Config{
		InitialState:        initial,
		StartingPot:         spec.StartingPot,
		EffectiveStack:      spec.EffectiveStack,
		RakeRate:            opts.RakeRate,
		RakeCap:             opts.RakeCap,
		Flop:                so,
		Turn:                so,
		River:               so,
		AddAllinThreshold:   opts.AddAllinThreshold,
		ForceAllinThreshold: opts.ForceAllinThreshold,
		MergingThreshold:    opts.MergeThreshold,
	}

	cc := game.CardConfig{
		RangeOOP: spec.OOPRange,
		RangeIP:  spec.IPRange,
		Turn:     cards.NotDealt,
		River:    cards.NotDealt,
	}
	copy(cc.Flop[:], spec.Board[:3])
	if len(spec.Board) >= 4 {
		cc.Turn = spec.Board[3]
	}
	if len(spec.Board) >= 5 {
		cc.River = spec.Board[4]
	}

	at, err := tree.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("solverapi: build tree: %w", err)
	}
	g, err := game.Build(at, cc)
	if err != nil {
		return nil, fmt.Errorf("solverapi: build arena: %w", err)
	}
	if err := g.AllocateMemory(opts.Compressed); err != nil {
		return nil, fmt.Errorf("solverapi: allocate: %w", err)
	}
	return g, nil
}
