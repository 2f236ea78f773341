package notation

import "testing"

func TestParsePositionFlop(t *testing.T) {
	spec, err := ParsePosition("OOP:AA,KK:S100/IP:QQ,JJ:S100|P10|Kh9s4c")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if spec.StartingPot != 10 {
		t.Errorf("StartingPot = %v, want 10", spec.StartingPot)
	}
	if spec.EffectiveStack != 100 {
		t.Errorf("EffectiveStack = %v, want 100", spec.EffectiveStack)
	}
	if len(spec.Board) != 3 {
		t.Errorf("board has %d cards, want 3", len(spec.Board))
	}
	if len(spec.OOPRange) != 12 { // AA (6) + KK (6)
		t.Errorf("OOPRange has %d combos, want 12", len(spec.OOPRange))
	}
	if len(spec.IPRange) != 12 {
		t.Errorf("IPRange has %d combos, want 12", len(spec.IPRange))
	}
}

func TestParsePositionRejectsMismatchedStacks(t *testing.T) {
	_, err := ParsePosition("OOP:AA:S100/IP:QQ:S90|P10|Kh9s4c")
	if err == nil {
		t.Error("expected error for mismatched stacks")
	}
}

func TestParsePositionRejectsWrongLabel(t *testing.T) {
	_, err := ParsePosition("BTN:AA:S100/IP:QQ:S100|P10|Kh9s4c")
	if err == nil {
		t.Error("expected error for wrong position label")
	}
}

func TestParsePositionRejectsBadFormat(t *testing.T) {
	cases := []string{
		"",
		"OOP:AA:S100/IP:QQ:S100|P10", // missing board
		"OOP:AA:S100|P10|Kh9s4c",     // missing '/'
	}
	for _, c := range cases {
		if _, err := ParsePosition(c); err == nil {
			t.Errorf("ParsePosition(%q): expected error", c)
		}
	}
}
