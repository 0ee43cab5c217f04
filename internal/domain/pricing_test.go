package domain_test

import (
	"math"
	"testing"

	"agence-dashboard/internal/domain"
)

func TestDerive_Basic(t *testing.T) {
	d := domain.Derive(10000, 15, domain.RoundCents)
	if d.PrestationAmount != 1500 {
		t.Errorf("expected prestation 1500, got %v", d.PrestationAmount)
	}
	if d.TotalAmount != 11500 {
		t.Errorf("expected total 11500, got %v", d.TotalAmount)
	}

	g := domain.Derive(10000, 15, domain.RoundUnits)
	if g.PrestationAmount != 1500 || g.TotalAmount != 11500 {
		t.Errorf("groupage rounding changed an exact result: %+v", g)
	}
}

func TestDerive_EmptyMarkupIsZero(t *testing.T) {
	for _, in := range []interface{}{"", nil, "abc", "  ", math.NaN()} {
		d := domain.Derive(10000, domain.ParseMarkup(in), domain.RoundCents)
		if d.PrestationAmount != 0 || d.TotalAmount != 10000 {
			t.Errorf("markup %#v: expected 0/10000, got %+v", in, d)
		}
	}
}

func TestDerive_NonFiniteBase(t *testing.T) {
	d := domain.Derive(math.Inf(1), 10, domain.RoundCents)
	if d.PrestationAmount != 0 || d.TotalAmount != 0 {
		t.Errorf("expected zeroes for infinite base, got %+v", d)
	}
}

func TestDerive_NegativeMarkupClamped(t *testing.T) {
	d := domain.Derive(200, -10, domain.RoundUnits)
	if d.PrestationAmount != 0 || d.TotalAmount != 200 {
		t.Errorf("expected clamped markup, got %+v", d)
	}
}

func TestRoundingPolicies(t *testing.T) {
	cases := []struct {
		name       string
		base       float64
		markup     float64
		round      domain.Rounding
		prestation float64
		total      float64
	}{
		{"cents half away from zero", 1, 0.5, domain.RoundCents, 0.01, 1.01},
		{"cents truncates beyond two places", 333, 10.005, domain.RoundCents, 33.32, 366.32},
		{"units half away from zero", 50, 1, domain.RoundUnits, 1, 51},
		{"units rounds down below half", 333, 10.005, domain.RoundUnits, 33, 366},
		{"units on fractional base", 1234.5, 10, domain.RoundUnits, 123, 1357.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := domain.Derive(tc.base, tc.markup, tc.round)
			if d.PrestationAmount != tc.prestation {
				t.Errorf("prestation: expected %v, got %v", tc.prestation, d.PrestationAmount)
			}
			if d.TotalAmount != tc.total {
				t.Errorf("total: expected %v, got %v", tc.total, d.TotalAmount)
			}
		})
	}
}

func TestParseMarkup(t *testing.T) {
	cases := map[string]struct {
		in   interface{}
		want float64
	}{
		"float":         {12.5, 12.5},
		"int":           {15, 15},
		"string":        {"15", 15},
		"decimal comma": {"12,5", 12.5},
		"padded":        {" 7 ", 7},
		"negative":      {"-3", -3},
		"garbage":       {"15%", 0},
		"nil pointer":   {(*float64)(nil), 0},
	}
	for name, tc := range cases {
		if got := domain.ParseMarkup(tc.in); got != tc.want {
			t.Errorf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

func TestZonePrice_WithMarkupDoesNotMutate(t *testing.T) {
	z := domain.ZonePrice{ZoneID: "z1", BaseAmount: 10000}
	z.Recompute()

	edited := z.WithMarkup(15)
	if z.MarkupPercent != 0 || z.TotalAmount != 10000 {
		t.Fatalf("original zone changed: %+v", z)
	}
	if edited.PrestationAmount != 1500 || edited.TotalAmount != 11500 {
		t.Errorf("unexpected derived amounts: %+v", edited)
	}
}
