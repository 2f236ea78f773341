package cards

import "fmt"

// BoardState identifies which street a board represents.
type BoardState uint8

const (
	Flop BoardState = iota
	Turn
	River
)

func (s BoardState) String() string {
	switch s {
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// Board is the set of community cards dealt so far, 3 to 5 cards.
type Board []Card

// State reports which street the board represents based on its length.
func (b Board) State() (BoardState, error) {
	switch len(b) {
	case 3:
		return Flop, nil
	case 4:
		return Turn, nil
	case 5:
		return River, nil
	default:
		return 0, fmt.Errorf("cards: board has %d cards, must have 3, 4 or 5", len(b))
	}
}

// ParseBoard parses a board from a concatenated card string (e.g. "Th9h2c").
func ParseBoard(s string) (Board, error) {
	cs, err := ParseCards(s)
	if err != nil {
		return nil, fmt.Errorf("cards: invalid board: %w", err)
	}
	if len(cs) < 3 || len(cs) > 5 {
		return nil, fmt.Errorf("cards: board has %d cards, must have 3-5", len(cs))
	}
	return Board(cs), nil
}

func (b Board) String() string { return StringAll([]Card(b)) }
