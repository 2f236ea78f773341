package cards

import "testing"

func TestParseCard(t *testing.T) {
	tests := []struct {
		input    string
		wantRank uint8
		wantSuit uint8
		wantErr  bool
	}{
		{"As", 12, 3, false},
		{"Kh", 11, 2, false},
		{"Qd", 10, 1, false},
		{"Jc", 9, 0, false},
		{"Ts", 8, 3, false},
		{"9h", 7, 2, false},
		{"2c", 0, 0, false},
		{"as", 12, 3, false}, // lowercase should work
		{"TD", 8, 1, false},  // mixed case
		{"", 0, 0, true},     // empty
		{"A", 0, 0, true},    // too short
		{"Asx", 0, 0, true},  // too long
		{"Xx", 0, 0, true},   // invalid rank
		{"Ax", 0, 0, true},   // invalid suit
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCard(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if got.Rank() != tt.wantRank || got.Suit() != tt.wantSuit {
					t.Errorf("ParseCard(%q) = %v, want rank=%v suit=%v", tt.input, got, tt.wantRank, tt.wantSuit)
				}
			}
		})
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{MakeCard(12, 3), "As"},
		{MakeCard(11, 2), "Kh"},
		{MakeCard(8, 1), "Td"},
		{MakeCard(0, 0), "2c"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.card.String(); got != tt.want {
				t.Errorf("Card.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCards(t *testing.T) {
	tests := []struct {
		input   string
		want    []Card
		wantErr bool
	}{
		{
			"AsKh",
			[]Card{MakeCard(12, 3), MakeCard(11, 2)},
			false,
		},
		{
			"As Kh Qd",
			[]Card{MakeCard(12, 3), MakeCard(11, 2), MakeCard(10, 1)},
			false,
		},
		{
			"2s3h4d5c6s",
			[]Card{MakeCard(0, 3), MakeCard(1, 2), MakeCard(2, 1), MakeCard(3, 0), MakeCard(4, 3)},
			false,
		},
		{
			"A", // odd length
			nil,
			true,
		},
		{
			"AsXx", // invalid card
			nil,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseCards(%q) returned %d cards, want %d", tt.input, len(got), len(tt.want))
					return
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("ParseCards(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"As", "Kh", "Qd", "Jc", "Ts", "9h", "2c"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			card, err := ParseCard(input)
			if err != nil {
				t.Fatalf("ParseCard(%q) error = %v", input, err)
			}
			if got := card.String(); got != input {
				t.Errorf("round trip failed: %q -> %v -> %q", input, card, got)
			}
		})
	}
}

func TestMakeCardMatchesOriginalEncoding(t *testing.T) {
	// card_id = 4*rank + suit, per original_source/src/card.rs.
	c := MakeCard(5, 2)
	if int(c) != 4*5+2 {
		t.Errorf("encoding mismatch: got %d, want %d", c, 4*5+2)
	}
}

func TestRemoveCards(t *testing.T) {
	deck := FullDeck()
	as, _ := ParseCard("As")
	kh, _ := ParseCard("Kh")
	out := RemoveCards(deck, as, kh)
	if len(out) != 50 {
		t.Fatalf("expected 50 cards remaining, got %d", len(out))
	}
	for _, c := range out {
		if c == as || c == kh {
			t.Fatalf("removed card %v still present", c)
		}
	}
}
