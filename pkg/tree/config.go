// Package tree implements the ActionTree: the card-independent abstract
// betting tree described in spec.md §4.1. It is built from a TreeConfig
// alone and knows nothing about concrete cards; PostFlopGame (pkg/game)
// cross-products it with chance deals to build the concrete arena.
//
// The build algorithm and action-generation shape are grounded in the
// teacher's pkg/tree/actions.go and pkg/tree/builder.go, generalized from a
// single concrete combo-vs-combo recursion to a fully abstract tree, and the
// geometric-size derivation is grounded in the teacher's
// pkg/tree/geometric.go formula, generalized to original_source's
// Geometric(streets, maxPotRatio) semantics.
package tree

import (
	"fmt"

	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

// StreetOptions bundles the bet/raise/donk size options for one street.
type StreetOptions struct {
	Bet  betsize.Options
	Donk betsize.DonkOptions
}

// Config is spec.md §3's TreeConfig.
type Config struct {
	InitialState     cards.BoardState
	StartingPot      float64
	EffectiveStack   float64
	RakeRate         float64 // in [0,1]
	RakeCap          float64 // >= 0
	Flop             StreetOptions
	Turn             StreetOptions
	River            StreetOptions
	AddAllinThreshold   float64 // e.g. 0.15: sizes within 15% of all-in collapse to all-in
	ForceAllinThreshold float64 // e.g. 0.05: if stack-behind/pot below this, only all-in remains
	MergingThreshold    float64 // relative tolerance for deduplicating candidate sizes
}

// Validate enforces spec.md §4.1's ConfigError conditions.
func (c Config) Validate() error {
	if c.RakeRate < 0 || c.RakeRate > 1 {
		return &ConfigError{Msg: fmt.Sprintf("rake_rate %v out of [0,1]", c.RakeRate)}
	}
	if c.RakeCap < 0 {
		return &ConfigError{Msg: fmt.Sprintf("rake_cap %v must be >= 0", c.RakeCap)}
	}
	if c.EffectiveStack <= 0 {
		return &ConfigError{Msg: "effective_stack must be > 0"}
	}
	if c.StartingPot <= 0 {
		return &ConfigError{Msg: "starting_pot must be > 0"}
	}
	return nil
}

func (c Config) optionsFor(street cards.BoardState) StreetOptions {
	switch street {
	case cards.Flop:
		return c.Flop
	case cards.Turn:
		return c.Turn
	default:
		return c.River
	}
}

// streetsRemaining implements original_source's Geometric(0, _) default:
// flop=3, turn=2, river=1 remaining streets of betting.
func streetsRemaining(street cards.BoardState) int32 {
	switch street {
	case cards.Flop:
		return 3
	case cards.Turn:
		return 2
	default:
		return 1
	}
}
