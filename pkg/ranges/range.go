// Package ranges implements weighted starting-hand ranges: Combo, the
// canonical ordered hole-card pair, and Range, a mapping from Combo to a
// weight in [0,1]. The hand-notation grammar ("AA", "AKs", "KK-JJ") is
// adapted from the teacher's pkg/notation/range.go, generalized from an
// unweighted combo list to spec.md's weighted range and the weighted
// ":0.5" suffix grammar from original_source's range parser.
package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

// Combo is an ordered hole-card pair, canonicalized so Hi < Lo never holds
// two representations of the same hand.
type Combo struct {
	Hi cards.Card
	Lo cards.Card
}

// NewCombo canonicalizes a and b into a Combo with Hi < Lo.
func NewCombo(a, b cards.Card) Combo {
	if a < b {
		return Combo{Hi: a, Lo: b}
	}
	return Combo{Hi: b, Lo: a}
}

// String renders the combo, e.g. "AsKh".
func (c Combo) String() string { return c.Hi.String() + c.Lo.String() }

// Conflicts reports whether the combo shares a card with any of dead.
func (c Combo) Conflicts(dead ...cards.Card) bool {
	for _, d := range dead {
		if c.Hi == d || c.Lo == d {
			return true
		}
	}
	return false
}

// Range is a weighted set of starting hands: weight 0 means "never dealt",
// weight 1 means "always dealt", intermediate values let the solver mix
// blockers the way a real opponent range would.
type Range map[Combo]float64

// Weight returns the combo's weight, or 0 if absent.
func (r Range) Weight(c Combo) float64 { return r[c] }

// Combos returns the combos with strictly positive weight.
func (r Range) Combos() []Combo {
	out := make([]Combo, 0, len(r))
	for c, w := range r {
		if w > 0 {
			out = append(out, c)
		}
	}
	return out
}

// RemoveDeadCards returns a copy of r with any combo touching a dead card
// left out, used when the solver removes cards already on the board or in
// the other player's hand.
func (r Range) RemoveDeadCards(dead ...cards.Card) Range {
	out := make(Range, len(r))
	for c, w := range r {
		if c.Conflicts(dead...) {
			continue
		}
		out[c] = w
	}
	return out
}

// SortCombos orders combos by (Hi, Lo), giving pkg/game's arena a stable,
// reproducible hand-index assignment independent of Go's map iteration order.
func SortCombos(combos []Combo) {
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Hi != combos[j].Hi {
			return combos[i].Hi < combos[j].Hi
		}
		return combos[i].Lo < combos[j].Lo
	})
}

// TotalWeight sums the weights of every combo in the range.
func (r Range) TotalWeight() float64 {
	var total float64
	for _, w := range r {
		total += w
	}
	return total
}

// ParseRange parses a comma-separated range string into a weighted Range.
// Supported forms, generalizing the teacher's ParseRange:
//
//	"AA"          -> 6 combos, weight 1.0
//	"AKs" / "AKo" -> 4 / 12 combos, weight 1.0
//	"KK-JJ"       -> pair range, weight 1.0
//	"AKs-ATs"     -> suited range, weight 1.0
//	"AA:0.5"      -> 6 combos, weight 0.5 (original_source weighted grammar)
func ParseRange(rangeStr string) (Range, error) {
	rangeStr = strings.TrimSpace(rangeStr)
	if rangeStr == "" {
		return nil, fmt.Errorf("ranges: empty range string")
	}

	result := make(Range)
	for _, part := range strings.Split(rangeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		spec, weight, err := splitWeight(part)
		if err != nil {
			return nil, err
		}

		var combos []Combo
		if strings.Contains(spec, "-") {
			combos, err = parseRangeWithDash(spec)
		} else {
			combos, err = parseSingleHand(spec)
		}
		if err != nil {
			return nil, fmt.Errorf("ranges: error parsing %q: %w", part, err)
		}
		for _, c := range combos {
			result[c] = weight
		}
	}
	return result, nil
}

func splitWeight(part string) (spec string, weight float64, err error) {
	if idx := strings.LastIndex(part, ":"); idx >= 0 {
		spec = part[:idx]
		w, err := strconv.ParseFloat(part[idx+1:], 64)
		if err != nil {
			return "", 0, fmt.Errorf("ranges: invalid weight in %q: %w", part, err)
		}
		if w < 0 || w > 1 {
			return "", 0, fmt.Errorf("ranges: weight %v out of [0,1] in %q", w, part)
		}
		return spec, w, nil
	}
	return part, 1.0, nil
}

func parseSingleHand(hand string) ([]Combo, error) {
	hand = strings.TrimSpace(hand)
	if len(hand) < 2 || len(hand) > 3 {
		return nil, fmt.Errorf("invalid hand notation: %q", hand)
	}
	r1, err := parseRankChar(hand[0])
	if err != nil {
		return nil, err
	}
	r2, err := parseRankChar(hand[1])
	if err != nil {
		return nil, err
	}
	var suited bool
	if len(hand) == 3 {
		switch hand[2] {
		case 's', 'S':
			suited = true
		case 'o', 'O':
			suited = false
		default:
			return nil, fmt.Errorf("invalid suited/offsuit indicator: %c", hand[2])
		}
	} else if r1 != r2 {
		return nil, fmt.Errorf("ambiguous hand %q (use 's' or 'o')", hand)
	}
	return generateCombos(r1, r2, suited), nil
}

func parseRangeWithDash(rangeStr string) ([]Combo, error) {
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range format: %q (expected AA-KK)", rangeStr)
	}
	startR1, startR2, startSuited, err := parseHandComponents(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid start hand: %w", err)
	}
	endR1, endR2, endSuited, err := parseHandComponents(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid end hand: %w", err)
	}
	if startSuited != endSuited {
		return nil, fmt.Errorf("mismatched suited/offsuit in range %q", rangeStr)
	}

	var combos []Combo
	if startR1 == startR2 && endR1 == endR2 {
		for r := int(startR1); r >= int(endR1); r-- {
			combos = append(combos, generateCombos(uint8(r), uint8(r), startSuited)...)
		}
		return combos, nil
	}
	if startR1 != endR1 {
		return nil, fmt.Errorf("invalid range %q (first rank must match)", rangeStr)
	}
	for r := int(startR2); r >= int(endR2); r-- {
		combos = append(combos, generateCombos(startR1, uint8(r), startSuited)...)
	}
	return combos, nil
}

func parseHandComponents(hand string) (r1, r2 uint8, suited bool, err error) {
	if len(hand) < 2 || len(hand) > 3 {
		return 0, 0, false, fmt.Errorf("invalid hand notation: %q", hand)
	}
	r1, err = parseRankChar(hand[0])
	if err != nil {
		return 0, 0, false, err
	}
	r2, err = parseRankChar(hand[1])
	if err != nil {
		return 0, 0, false, err
	}
	if len(hand) == 3 {
		if r1 == r2 {
			return 0, 0, false, fmt.Errorf("pair %q cannot have suited/offsuit indicator", hand)
		}
		switch hand[2] {
		case 's', 'S':
			suited = true
		case 'o', 'O':
			suited = false
		default:
			return 0, 0, false, fmt.Errorf("invalid suited/offsuit indicator: %c", hand[2])
		}
	} else if r1 != r2 {
		return 0, 0, false, fmt.Errorf("ambiguous hand %q", hand)
	}
	return r1, r2, suited, nil
}

func parseRankChar(b byte) (uint8, error) {
	switch b {
	case 'A', 'a':
		return 12, nil
	case 'K', 'k':
		return 11, nil
	case 'Q', 'q':
		return 10, nil
	case 'J', 'j':
		return 9, nil
	case 'T', 't':
		return 8, nil
	case '9':
		return 7, nil
	case '8':
		return 6, nil
	case '7':
		return 5, nil
	case '6':
		return 4, nil
	case '5':
		return 3, nil
	case '4':
		return 2, nil
	case '3':
		return 1, nil
	case '2':
		return 0, nil
	default:
		return 0, fmt.Errorf("invalid rank: %c", b)
	}
}

func generateCombos(r1, r2 uint8, suited bool) []Combo {
	var combos []Combo
	suits := []uint8{0, 1, 2, 3}

	if r1 == r2 {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				combos = append(combos, NewCombo(cards.MakeCard(r1, suits[i]), cards.MakeCard(r2, suits[j])))
			}
		}
	} else if suited {
		for _, s := range suits {
			combos = append(combos, NewCombo(cards.MakeCard(r1, s), cards.MakeCard(r2, s)))
		}
	} else {
		for _, s1 := range suits {
			for _, s2 := range suits {
				if s1 != s2 {
					combos = append(combos, NewCombo(cards.MakeCard(r1, s1), cards.MakeCard(r2, s2)))
				}
			}
		}
	}
	return combos
}
