package betsize

import (
	"math"
	"testing"
)

// Valid/invalid cases ported directly from original_source/src/bet_size.rs's
// test_bet_size_from_str table.
func TestParseValid(t *testing.T) {
	tests := []struct {
		in   string
		want BetSize
	}{
		{"0%", BetSize{Kind: PotRelative, Frac: 0}},
		{"75%", BetSize{Kind: PotRelative, Frac: 0.75}},
		{"112.5%", BetSize{Kind: PotRelative, Frac: 1.125}},
		{"1.001x", BetSize{Kind: PrevBetRelative, Frac: 1.001}},
		{"3.5X", BetSize{Kind: PrevBetRelative, Frac: 3.5}},
		{"0c", BetSize{Kind: Additive, Chips: 0, RaiseCap: 0}},
		{"123C", BetSize{Kind: Additive, Chips: 123, RaiseCap: 0}},
		{"0c1r", BetSize{Kind: Additive, Chips: 0, RaiseCap: 1}},
		{"100C100R", BetSize{Kind: Additive, Chips: 100, RaiseCap: 100}},
		{"e", BetSize{Kind: Geometric, Streets: 0, MaxPotRatio: math.Inf(1)}},
		{"E", BetSize{Kind: Geometric, Streets: 0, MaxPotRatio: math.Inf(1)}},
		{"2e", BetSize{Kind: Geometric, Streets: 2, MaxPotRatio: math.Inf(1)}},
		{"E37.5%", BetSize{Kind: Geometric, Streets: 0, MaxPotRatio: 0.375}},
		{"100e.5%", BetSize{Kind: Geometric, Streets: 100, MaxPotRatio: 0.005}},
		{"a", BetSize{Kind: AllIn}},
		{"A", BetSize{Kind: AllIn}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"", "0", "1.23", "%", "+42%", "-30%", "x", "0x", "1x", "c", "12.3c", "10c10", "42cr",
		"c3r", "0c0r", "123c101r", "1c2r3", "12c3.4r", "0e", "2.7e", "101e", "3e7", "E%",
		"1e2e3", "bet", "1a", "a1",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			if _, err := Parse(s); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", s)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("50c, e, a,", "25%, 2.5x, e200%")
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Bets()) != 3 {
		t.Fatalf("expected 3 bets, got %d", len(opts.Bets()))
	}
	if len(opts.Raises()) != 3 {
		t.Fatalf("expected 3 raises, got %d", len(opts.Raises()))
	}
}

func TestParseOptionsRejectsPrevBetRelativeInBets(t *testing.T) {
	if _, err := ParseOptions("2.5x", ""); err == nil {
		t.Fatal("expected error for PrevBetRelative in bets")
	}
}

func TestParseOptionsRejectsEmptyToken(t *testing.T) {
	if _, err := ParseOptions(",", ""); err == nil {
		t.Fatal("expected error for lone comma")
	}
}

func TestParseDonkOptions(t *testing.T) {
	d, err := ParseDonkOptions("40%, 70%")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Donks()) != 2 {
		t.Fatalf("expected 2 donks, got %d", len(d.Donks()))
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []BetSize{
		{Kind: PotRelative, Frac: 0.75},
		{Kind: PrevBetRelative, Frac: 2.5},
		{Kind: Additive, Chips: 100, RaiseCap: 0},
		{Kind: Additive, Chips: 20, RaiseCap: 3},
		{Kind: Geometric, Streets: 0, MaxPotRatio: math.Inf(1)},
		{Kind: Geometric, Streets: 2, MaxPotRatio: math.Inf(1)},
		{Kind: AllIn},
	}
	for _, bs := range tests {
		s := bs.String()
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("String() produced unparsable %q: %v", s, err)
		}
		if got != bs {
			t.Errorf("round trip %+v -> %q -> %+v", bs, s, got)
		}
	}
}
