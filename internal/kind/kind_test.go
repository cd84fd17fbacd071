package kind

import "testing"

func TestPredicates(t *testing.T) {
	tests := []struct {
		k                                    Kind
		posOnly, pos, kw, kwOnly, varP, varK bool
	}{
		{PosOnly, true, true, false, false, false, false},
		{PosOrKw, false, true, true, false, false, false},
		{KwOnly, false, false, true, true, false, false},
		{VarPos, false, false, false, false, true, false},
		{VarKw, false, false, false, false, false, true},
		{PosOnly | Opt, true, true, false, false, false, false},
		{KwOnly | Opt, false, false, true, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.k.String(), func(t *testing.T) {
			if tt.k.PosOnly() != tt.posOnly || tt.k.Pos() != tt.pos ||
				tt.k.Kw() != tt.kw || tt.k.KwOnly() != tt.kwOnly ||
				tt.k.VarPos() != tt.varP || tt.k.VarKw() != tt.varK {
				t.Errorf("predicates for %s: PosOnly=%v Pos=%v Kw=%v KwOnly=%v VarPos=%v VarKw=%v",
					tt.k, tt.k.PosOnly(), tt.k.Pos(), tt.k.Kw(), tt.k.KwOnly(),
					tt.k.VarPos(), tt.k.VarKw())
			}
		})
	}
}

func TestValid(t *testing.T) {
	valid := []Kind{PosOnly, PosOrKw, KwOnly, VarPos, VarKw,
		PosOnly | Opt, PosOrKw | Opt, KwOnly | Opt}
	for _, k := range valid {
		if !k.Valid() {
			t.Errorf("%s reported invalid", k)
		}
	}
	invalid := []Kind{0, Var, Opt, Var | Opt, VarPos | Opt, VarKw | Opt,
		Var | Pos | Kw}
	for _, k := range invalid {
		if k.Valid() {
			t.Errorf("%04b reported valid", uint8(k))
		}
	}
}

func TestRankOrdering(t *testing.T) {
	order := []Kind{PosOnly, PosOrKw, VarPos, KwOnly, VarKw}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s (rank %d) must precede %s (rank %d)",
				order[i-1], order[i-1].Rank(), order[i], order[i].Rank())
		}
	}
	// Optionality does not move a parameter between sections.
	if (PosOrKw | Opt).Rank() != PosOrKw.Rank() {
		t.Error("optional flag changed the rank")
	}
}

func TestCanWeakenTo(t *testing.T) {
	tests := []struct {
		name string
		from Kind
		to   Kind
		ok   bool
	}{
		{"identity", PosOrKw, PosOrKw, true},
		{"positional-only gains keyword access", PosOnly, PosOrKw, true},
		{"keyword-only gains positional access", KwOnly, PosOrKw, true},
		{"pos-or-kw loses keyword access", PosOrKw, PosOnly, false},
		{"pos-or-kw loses positional access", PosOrKw, KwOnly, false},
		{"optional stays optional", PosOrKw | Opt, PosOrKw | Opt, true},
		{"optional becomes required", PosOrKw | Opt, PosOrKw, false},
		{"required becomes optional", PosOrKw, PosOrKw | Opt, true},
		{"variadic matches variadic", VarPos, VarPos, true},
		{"variadic flavor mismatch", VarPos, VarKw, false},
		{"variadic to plain", VarPos, PosOrKw, false},
		{"plain to variadic", PosOrKw, VarPos, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanWeakenTo(tt.to); got != tt.ok {
				t.Errorf("%s.CanWeakenTo(%s) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}
		})
	}
}
