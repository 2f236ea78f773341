package handeval

import (
	"testing"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
)

func mustCards(t *testing.T, s string) []cards.Card {
	t.Helper()
	cs, err := cards.ParseCards(s)
	if err != nil {
		t.Fatalf("ParseCards(%q): %v", s, err)
	}
	return cs
}

func TestScoreOrdersHandsCorrectly(t *testing.T) {
	// A straight flush should outscore quads, which should outscore a full house.
	sf, err := Score(mustCards(t, "2c3c4c5c6c"))
	if err != nil {
		t.Fatal(err)
	}
	quads, err := Score(mustCards(t, "2c2d2h2sAc"))
	if err != nil {
		t.Fatal(err)
	}
	boat, err := Score(mustCards(t, "3c3d3h2s2c"))
	if err != nil {
		t.Fatal(err)
	}
	highCard, err := Score(mustCards(t, "2c5d9hJsAc"))
	if err != nil {
		t.Fatal(err)
	}
	if !(sf > quads && quads > boat && boat > highCard) {
		t.Fatalf("expected sf > quads > boat > highCard, got %d %d %d %d", sf, quads, boat, highCard)
	}
}

func TestScoreSevenCard(t *testing.T) {
	score, err := Score(mustCards(t, "AsKsQsJsTs2c3d"))
	if err != nil {
		t.Fatal(err)
	}
	worse, err := Score(mustCards(t, "2c3d4h5s7c8d9h"))
	if err != nil {
		t.Fatal(err)
	}
	if score <= worse {
		t.Fatalf("royal-flush-containing 7-card hand should score above garbage: %d <= %d", score, worse)
	}
}

func TestScoreSixCardPicksBest(t *testing.T) {
	score, err := Score(mustCards(t, "AsKsQsJsTs2c"))
	if err != nil {
		t.Fatal(err)
	}
	five, err := Score(mustCards(t, "AsKsQsJsTs"))
	if err != nil {
		t.Fatal(err)
	}
	if score != five {
		t.Fatalf("6-card best-of-5 should match direct 5-card score: %d != %d", score, five)
	}
}
