package models

import "testing"

func TestLookupImpact(t *testing.T) {
	cases := map[string]Impact{
		"":       ImpactHigh,
		"high":   ImpactHigh,
		"Medium": ImpactMedium,
		"MED":    ImpactMedium,
		" low ":  ImpactLow,
	}
	for in, want := range cases {
		got, ok := LookupImpact(in)
		if !ok || got != want {
			t.Errorf("LookupImpact(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"Report", "banana", "critical"} {
		if _, ok := LookupImpact(in); ok {
			t.Errorf("LookupImpact(%q) accepted", in)
		}
	}
}
