// Package betsize implements the BetSize tagged union and its string
// grammar, ported from the suffix-driven parser in
// original_source/src/bet_size.rs (%, x, c[+Nr], e/Ne/NeM%, a), generalizing
// the teacher's bare pot-fraction floats (pkg/tree/geometric.go) into the
// full five-variant union spec.md §3 requires.
package betsize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind distinguishes the five BetSize variants.
type Kind uint8

const (
	// PotRelative is a fraction of the current pot, e.g. 0.75 for "75%".
	PotRelative Kind = iota
	// PrevBetRelative is a multiple of the previous bet; valid only for raises.
	PrevBetRelative
	// Additive is a fixed chip amount with an optional raise cap.
	Additive
	// Geometric grows the bet geometrically toward a target pot ratio.
	Geometric
	// AllIn shoves the remaining stack.
	AllIn
)

// BetSize is a single candidate bet-size specification. Only the fields
// relevant to Kind are meaningful; this mirrors the Rust enum's payload
// shape in Go's idiom of a tagged struct rather than a sum type, since Go
// has no enum-with-payload construct.
type BetSize struct {
	Kind Kind

	// PotRelative: fraction of pot, e.g. 0.75.
	// PrevBetRelative: multiple of previous bet, e.g. 2.5. Must be > 1.0.
	Frac float64

	// Additive: fixed chip amount.
	Chips int32
	// Additive: raise cap in number of raises, 0 = uncapped. Legal only on
	// raises, never on first bets (BetSizeOptions.Bets rejects non-zero here).
	RaiseCap int32

	// Geometric: number of remaining streets to reach MaxPotRatio, 0 means
	// "infer from current street" (flop=3, turn=2, river=1).
	Streets int32
	// Geometric: maximum pot-relative size, math.Inf(1) for unbounded.
	MaxPotRatio float64
}

func (b BetSize) String() string {
	switch b.Kind {
	case PotRelative:
		return fmt.Sprintf("%g%%", 100*b.Frac)
	case PrevBetRelative:
		return fmt.Sprintf("%gx", b.Frac)
	case Additive:
		if b.RaiseCap != 0 {
			return fmt.Sprintf("%dc%dr", b.Chips, b.RaiseCap)
		}
		return fmt.Sprintf("%dc", b.Chips)
	case Geometric:
		switch {
		case b.Streets == 0 && math.IsInf(b.MaxPotRatio, 1):
			return "e"
		case b.Streets == 0:
			return fmt.Sprintf("e%g%%", b.MaxPotRatio*100)
		case math.IsInf(b.MaxPotRatio, 1):
			return fmt.Sprintf("%de", b.Streets)
		default:
			return fmt.Sprintf("%de%g%%", b.Streets, b.MaxPotRatio*100)
		}
	case AllIn:
		return "a"
	default:
		return "?"
	}
}

// less orders BetSize values for the deterministic sort bet_sizes_from_str
// performs in the original (sort_unstable_by partial_cmp); Go needs a total
// order since sort.Slice requires one, so ties break by field order after Kind.
func less(l, r BetSize) bool {
	if l.Kind != r.Kind {
		return l.Kind < r.Kind
	}
	switch l.Kind {
	case PotRelative, PrevBetRelative:
		return l.Frac < r.Frac
	case Additive:
		if l.Chips != r.Chips {
			return l.Chips < r.Chips
		}
		return l.RaiseCap < r.RaiseCap
	case Geometric:
		if l.Streets != r.Streets {
			return l.Streets < r.Streets
		}
		return l.MaxPotRatio < r.MaxPotRatio
	default:
		return false
	}
}

// Parse parses a single bet-size token per the grammar documented in
// original_source/src/bet_size.rs: a numeric prefix followed by one of the
// suffixes %, x, c[+Nr], e/Ne/NeM%, or the literal "a".
func Parse(s string) (BetSize, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	errInvalid := fmt.Errorf("betsize: invalid bet size: %q", s)

	switch {
	case strings.HasSuffix(lower, "x"):
		f, ok := parseFloat(strings.TrimSuffix(lower, "x"))
		if !ok {
			return BetSize{}, errInvalid
		}
		if f <= 1.0 {
			return BetSize{}, fmt.Errorf("betsize: multiplier must be greater than 1.0: %q", s)
		}
		return BetSize{Kind: PrevBetRelative, Frac: f}, nil

	case strings.Contains(lower, "c"):
		return parseAdditive(lower, s, errInvalid)

	case strings.Contains(lower, "e"):
		return parseGeometric(lower, s, errInvalid)

	case strings.HasSuffix(lower, "%"):
		f, ok := parseFloat(strings.TrimSuffix(lower, "%"))
		if !ok {
			return BetSize{}, errInvalid
		}
		return BetSize{Kind: PotRelative, Frac: f / 100.0}, nil

	case lower == "a":
		return BetSize{Kind: AllIn}, nil

	default:
		return BetSize{}, errInvalid
	}
}

func parseAdditive(lower, orig string, errInvalid error) (BetSize, error) {
	parts := strings.SplitN(lower, "c", 3)
	if len(parts) < 2 {
		return BetSize{}, errInvalid
	}
	add, ok := parseFloat(parts[0])
	if !ok {
		return BetSize{}, errInvalid
	}
	if add != math.Trunc(add) {
		return BetSize{}, fmt.Errorf("betsize: additive size must be an integer: %q", orig)
	}
	if add > math.MaxInt32 {
		return BetSize{}, fmt.Errorf("betsize: additive size must be less than 2^31: %q", orig)
	}

	var cap32 int32
	capStr := parts[1]
	if capStr != "" {
		fStr, ok := strings.CutSuffix(capStr, "r")
		if !ok {
			return BetSize{}, errInvalid
		}
		f, ok := parseFloat(fStr)
		if !ok {
			return BetSize{}, errInvalid
		}
		if f != math.Trunc(f) || f == 0 {
			return BetSize{}, fmt.Errorf("betsize: raise cap must be a positive integer: %q", orig)
		}
		if f > 100 {
			return BetSize{}, fmt.Errorf("betsize: raise cap must be <= 100: %q", orig)
		}
		cap32 = int32(f)
	}
	if len(parts) > 2 {
		return BetSize{}, errInvalid
	}
	return BetSize{Kind: Additive, Chips: int32(add), RaiseCap: cap32}, nil
}

func parseGeometric(lower, orig string, errInvalid error) (BetSize, error) {
	parts := strings.SplitN(lower, "e", 3)
	if len(parts) < 2 {
		return BetSize{}, errInvalid
	}
	var streets int32
	if parts[0] != "" {
		f, ok := parseFloat(parts[0])
		if !ok {
			return BetSize{}, errInvalid
		}
		if f != math.Trunc(f) || f == 0 {
			return BetSize{}, fmt.Errorf("betsize: number of streets must be a positive integer: %q", orig)
		}
		if f > 100 {
			return BetSize{}, fmt.Errorf("betsize: number of streets must be <= 100: %q", orig)
		}
		streets = int32(f)
	}

	maxPotRel := math.Inf(1)
	if parts[1] != "" {
		pctStr, ok := strings.CutSuffix(parts[1], "%")
		if !ok {
			return BetSize{}, errInvalid
		}
		f, ok := parseFloat(pctStr)
		if !ok {
			return BetSize{}, errInvalid
		}
		maxPotRel = f / 100.0
	}
	if len(parts) > 2 {
		return BetSize{}, errInvalid
	}
	return BetSize{Kind: Geometric, Streets: streets, MaxPotRatio: maxPotRel}, nil
}

// parseFloat rejects signs and alphabetic characters the way the original's
// parse_float does, so stray "+"/"-" prefixes or embedded letters are
// treated as parse failures rather than silently accepted by strconv.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "+-") {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != '.' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseList parses a comma-separated list of bet-size tokens, trimming a
// trailing empty element (a trailing comma), and returns them sorted for
// determinism, matching bet_sizes_from_str.
func ParseList(s string) ([]BetSize, error) {
	tokens := strings.Split(s, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	out := make([]BetSize, 0, len(tokens))
	for _, tok := range tokens {
		bs, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, bs)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// Options holds the resolved bet-size lists for first bets and raises on one
// street, per spec.md §3's BetSizeOptions.
type Options struct {
	bets   []BetSize
	raises []BetSize
}

// NewOptions validates bets (no PrevBetRelative, no non-zero raise caps) and
// builds an Options, matching BetSizeOptions::try_from_sizes.
func NewOptions(bets, raises []BetSize) (Options, error) {
	valid, err := validBets(bets)
	if err != nil {
		return Options{}, err
	}
	return Options{bets: valid, raises: raises}, nil
}

// ParseOptions parses comma-separated bet and raise strings into Options.
func ParseOptions(betStr, raiseStr string) (Options, error) {
	bets, err := ParseList(betStr)
	if err != nil {
		return Options{}, err
	}
	raises, err := ParseList(raiseStr)
	if err != nil {
		return Options{}, err
	}
	return NewOptions(bets, raises)
}

func validBets(bets []BetSize) ([]BetSize, error) {
	for _, bs := range bets {
		switch bs.Kind {
		case PrevBetRelative:
			return nil, fmt.Errorf("betsize: bets cannot contain PrevBetRelative")
		case Additive:
			if bs.RaiseCap != 0 {
				return nil, fmt.Errorf("betsize: bets cannot contain additive sizes with non-zero raise caps")
			}
		}
	}
	return bets, nil
}

// Bets returns the first-bet size list.
func (o Options) Bets() []BetSize { return o.bets }

// Raises returns the raise size list.
func (o Options) Raises() []BetSize { return o.raises }

// DonkOptions holds the resolved donk-bet sizes for one street.
type DonkOptions struct {
	donks []BetSize
}

// ParseDonkOptions parses a comma-separated donk-size string.
func ParseDonkOptions(s string) (DonkOptions, error) {
	donks, err := ParseList(s)
	if err != nil {
		return DonkOptions{}, err
	}
	valid, err := validBets(donks)
	if err != nil {
		return DonkOptions{}, err
	}
	return DonkOptions{donks: valid}, nil
}

// Donks returns the donk-bet size list.
func (d DonkOptions) Donks() []BetSize { return d.donks }

// NewDonkOptions validates donks (no PrevBetRelative, no non-zero raise
// caps) and builds a DonkOptions, the direct-value counterpart to
// ParseDonkOptions for callers that already have a []BetSize rather than a
// size-list string (pkg/codec reconstructing TreeConfig from a persisted
// snapshot, since DonkOptions.donks is unexported and so does not survive a
// gob round trip on its own).
func NewDonkOptions(donks []BetSize) (DonkOptions, error) {
	valid, err := validBets(donks)
	if err != nil {
		return DonkOptions{}, err
	}
	return DonkOptions{donks: valid}, nil
}
