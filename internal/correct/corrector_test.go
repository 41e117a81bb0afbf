package correct

import (
	"testing"

	"github.com/virtualmailroom/mailroom/internal/catalog"
)

func firmCorrector(t *testing.T) *Corrector {
	t.Helper()
	dt, err := catalog.Builtin().Lookup("LTD")
	if err != nil {
		t.Fatal(err)
	}
	return New(dt)
}

func TestApplyLeadingDigitConfusions(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		ruleID string
	}{
		{"12401462", "L2401462", "lead-1-L"},
		{"I2401462", "L2401462", "lead-I-L"},
		{"32401462", "J2401462", "lead-3-J"},
		{"62503406", "G2503406", "lead-6-G"},
		{"02503406", "G2503406", "lead-0-G"},
	}

	c := firmCorrector(t)
	for _, tt := range tests {
		got, corrections := c.Apply(tt.in)
		if got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		if len(corrections) != 1 {
			t.Errorf("Apply(%q): %d corrections, want 1", tt.in, len(corrections))
			continue
		}
		if corrections[0].RuleID != tt.ruleID {
			t.Errorf("Apply(%q): rule %q, want %q", tt.in, corrections[0].RuleID, tt.ruleID)
		}
		if corrections[0].Position != 0 {
			t.Errorf("Apply(%q): position %d", tt.in, corrections[0].Position)
		}
	}
}

func TestApplySecondCharacterConfusion(t *testing.T) {
	c := firmCorrector(t)

	got, corrections := c.Apply("YL311191")
	if got != "Y1311191" {
		t.Fatalf("Apply(YL311191) = %q, want Y1311191", got)
	}
	if len(corrections) != 1 || corrections[0].Position != 1 {
		t.Errorf("corrections = %+v", corrections)
	}
	if corrections[0].Original != "L" || corrections[0].Replacement != "1" {
		t.Errorf("correction letters = %+v", corrections[0])
	}
}

func TestApplyNeverTouchesValidValue(t *testing.T) {
	c := firmCorrector(t)

	for _, value := range []string{"Y1311191", "L2401462", "G2503406", "JM123456"} {
		got, corrections := c.Apply(value)
		if got != value {
			t.Errorf("valid value rewritten: %q -> %q", value, got)
		}
		if len(corrections) != 0 {
			t.Errorf("valid value %q got corrections %+v", value, corrections)
		}
	}
}

func TestApplyTrailingPad(t *testing.T) {
	c := firmCorrector(t)

	got, corrections := c.Apply("L24022")
	if got != "L240220" {
		t.Fatalf("Apply(L24022) = %q, want L240220", got)
	}
	if len(corrections) != 1 || corrections[0].RuleID != "pad-trailing-zero" {
		t.Errorf("corrections = %+v", corrections)
	}
	// The rule appends; the original character slot is past the end
	if corrections[0].Original != "" || corrections[0].Replacement != "0" {
		t.Errorf("pad correction = %+v", corrections[0])
	}
}

func TestApplyLeavesHopelessValueAlone(t *testing.T) {
	c := firmCorrector(t)

	got, corrections := c.Apply("123456")
	if got != "123456" {
		t.Errorf("Apply(123456) = %q", got)
	}
	if len(corrections) != 0 {
		t.Errorf("corrections = %+v", corrections)
	}
}
