package education

import (
	"errors"
	"math/rand"
	"testing"

	apperrors "justtrades-bot/internal/errors"
)

func TestGlossarySize(t *testing.T) {
	if n := len(Keys()); n != 14 {
		t.Errorf("got %d terms, want 14", n)
	}
	if n := len(Tips()); n != 15 {
		t.Errorf("got %d tips, want 15", n)
	}
	if Keys()[0] != "support" || Keys()[13] != "fud" {
		t.Errorf("unexpected order: %v", Keys())
	}
}

func TestLookup(t *testing.T) {
	term, err := Lookup("  RiskReward ")
	if err != nil || term.Title != "Risk/Reward Ratio" {
		t.Errorf("Lookup(RiskReward) = %+v, %v", term, err)
	}
	if _, err := Lookup("gamma"); !errors.Is(err, apperrors.ErrTermNotFound) {
		t.Errorf("Lookup(gamma) error = %v, want ErrTermNotFound", err)
	}
}

func TestRandomTipDeterministicWithSeed(t *testing.T) {
	a := RandomTip(rand.New(rand.NewSource(7)))
	b := RandomTip(rand.New(rand.NewSource(7)))
	if a != b || a == "" {
		t.Errorf("tips differ for same seed: %q vs %q", a, b)
	}
}

func TestTermsAreComplete(t *testing.T) {
	for _, term := range Terms() {
		if term.Title == "" || term.Definition == "" || term.Example == "" {
			t.Errorf("incomplete term %+v", term)
		}
	}
}
