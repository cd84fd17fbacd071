package call

import (
	"errors"
	"testing"

	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/pytypes"
	"github.com/funvibe/funcall/internal/sig"
)

func partialSig(t *testing.T) *sig.Signature {
	t.Helper()
	return sig.MustNew(pytypes.NewHost(),
		sig.Param{Name: "a", Kind: kind.PosOrKw, Type: pytypes.IntType},
		sig.Param{Name: "b", Kind: kind.PosOrKw, Type: pytypes.IntType},
		sig.Param{Name: "rest", Kind: kind.VarPos},
		sig.Param{Name: "kw", Kind: kind.VarKw},
	)
}

func TestNewPartialsTargets(t *testing.T) {
	s := partialSig(t)

	p, err := NewPartials(s,
		Pos(pytypes.Int(1)),
		Kw("b", pytypes.Int(2)),
		Pos(pytypes.Int(3)), // positional slots are taken: overflows to *rest
		Kw("extra", pytypes.Str("e")),
	)
	if err != nil {
		t.Fatalf("NewPartials: %v", err)
	}
	if p.Len() != 4 {
		t.Fatalf("Len = %d", p.Len())
	}

	// Records are sorted by target formal, stable in binding order.
	targets := make([]int, p.Len())
	for i, r := range p.Records() {
		targets[i] = r.Target
	}
	want := []int{0, 1, 2, 3}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("targets = %v, want %v", targets, want)
		}
	}
}

func TestNewPartialsVarPosOverflowAfterKeyword(t *testing.T) {
	s := partialSig(t)

	// A keyword partial on b leaves a free; the next positional takes a,
	// the one after overflows.
	p, err := NewPartials(s,
		Kw("b", pytypes.Int(2)),
		Pos(pytypes.Int(1)),
		Pos(pytypes.Int(3)),
	)
	if err != nil {
		t.Fatalf("NewPartials: %v", err)
	}
	recs := p.Records()
	if recs[0].Target != 0 || recs[1].Target != 1 || recs[2].Target != 2 {
		t.Errorf("targets = %v %v %v", recs[0].Target, recs[1].Target, recs[2].Target)
	}
}

func TestPartialsErrors(t *testing.T) {
	host := pytypes.NewHost()
	plain := sig.MustNew(host,
		sig.Param{Name: "p", Kind: kind.PosOnly},
		sig.Param{Name: "a", Kind: kind.PosOrKw, Type: pytypes.IntType},
	)

	tests := []struct {
		name  string
		s     *sig.Signature
		args  []Arg
		match func(error) bool
	}{
		{"rebind by keyword", partialSig(t),
			[]Arg{Pos(pytypes.Int(1)), Kw("a", pytypes.Int(2))},
			func(err error) bool {
				var e *ConflictingValueError
				return errors.As(err, &e)
			}},
		{"duplicate keyword", partialSig(t),
			[]Arg{Kw("b", pytypes.Int(1)), Kw("b", pytypes.Int(2))},
			func(err error) bool {
				var e *ConflictingValueError
				return errors.As(err, &e)
			}},
		{"duplicate varkw name", partialSig(t),
			[]Arg{Kw("z", pytypes.Int(1)), Kw("z", pytypes.Int(2))},
			func(err error) bool {
				var e *DuplicateArgumentError
				return errors.As(err, &e)
			}},
		{"wrong type", partialSig(t),
			[]Arg{Pos(pytypes.Str("s"))},
			func(err error) bool {
				var e *BadTypeError
				return errors.As(err, &e)
			}},
		{"unpack rejected", partialSig(t),
			[]Arg{Star(pytypes.Int(1))},
			func(err error) bool {
				var e *BadPackError
				return errors.As(err, &e)
			}},
		{"keyword names positional-only", plain,
			[]Arg{Kw("p", pytypes.Int(1))},
			func(err error) bool {
				var e *ConflictingValueError
				return errors.As(err, &e)
			}},
		{"unknown keyword without varkw", plain,
			[]Arg{Kw("q", pytypes.Int(1))},
			func(err error) bool {
				var e *ExtraKeywordError
				return errors.As(err, &e)
			}},
		{"positional overflow without varpos", plain,
			[]Arg{Pos(pytypes.Int(1)), Pos(pytypes.Int(2)), Pos(pytypes.Int(3))},
			func(err error) bool {
				var e *ExtraPositionalError
				return errors.As(err, &e)
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPartials(tt.s, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.match(err) {
				t.Errorf("NewPartials returned %T: %v", err, err)
			}
		})
	}
}

func TestPartialsExtend(t *testing.T) {
	s := partialSig(t)

	first, err := NewPartials(s, Pos(pytypes.Int(1)))
	if err != nil {
		t.Fatalf("NewPartials: %v", err)
	}
	second, err := first.Extend(Kw("b", pytypes.Int(2)))
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if first.Len() != 1 {
		t.Error("Extend mutated the original container")
	}
	if second.Len() != 2 {
		t.Errorf("extended Len = %d, want 2", second.Len())
	}

	// Re-targeting a formal bound by the earlier layer conflicts.
	var conflict *ConflictingValueError
	if _, err := second.Extend(Kw("a", pytypes.Int(9))); !errors.As(err, &conflict) {
		t.Errorf("Extend rebind returned %v, want ConflictingValueError", err)
	}
}

func TestPartialsThroughMerge(t *testing.T) {
	s := partialSig(t)
	p, err := NewPartials(s, Pos(pytypes.Int(1)), Kw("tag", pytypes.Str("t")))
	if err != nil {
		t.Fatalf("NewPartials: %v", err)
	}

	sink := newEventSink()
	if err := Merge(s, p, nil, []Arg{Pos(pytypes.Int(2))}, sink); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if sink.values["a"].(*pytypes.Object).Value.(int64) != 1 {
		t.Error("partial value for a was not applied")
	}
	if sink.values["b"].(*pytypes.Object).Value.(int64) != 2 {
		t.Error("call-site value did not fill the next free formal")
	}
	if len(sink.varkw) != 1 || sink.varkw[0].Name != "tag" {
		t.Errorf("varkw = %v, want the partial tag", sink.varkw)
	}

	// A call-site keyword for a partially-bound formal conflicts.
	err = Merge(s, p, nil, []Arg{Kw("a", pytypes.Int(9)), Pos(pytypes.Int(2))}, sink)
	var conflict *ConflictingValueError
	if !errors.As(err, &conflict) {
		t.Errorf("Merge returned %v, want ConflictingValueError", err)
	}
}
