package sig

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/pytypes"
)

func TestNewValidation(t *testing.T) {
	host := pytypes.NewHost()

	tests := []struct {
		name   string
		params []Param
		ok     bool
	}{
		{"empty", nil, true},
		{"plain", []Param{
			{Name: "a", Kind: kind.PosOrKw},
			{Name: "b", Kind: kind.PosOrKw},
		}, true},
		{"full shape", []Param{
			{Name: "p", Kind: kind.PosOnly},
			{Name: "x", Kind: kind.PosOrKw},
			{Name: "y", Kind: kind.PosOrKw | kind.Opt},
			{Name: "args", Kind: kind.VarPos},
			{Name: "k", Kind: kind.KwOnly},
			{Name: "kwargs", Kind: kind.VarKw},
		}, true},
		{"unnamed positional-only", []Param{
			{Kind: kind.PosOnly},
		}, true},
		{"unnamed keyword", []Param{
			{Kind: kind.KwOnly},
		}, false},
		{"duplicate names", []Param{
			{Name: "a", Kind: kind.PosOrKw},
			{Name: "a", Kind: kind.KwOnly},
		}, false},
		{"positional-only after pos-or-kw", []Param{
			{Name: "x", Kind: kind.PosOrKw},
			{Name: "p", Kind: kind.PosOnly},
		}, false},
		{"positional after *args", []Param{
			{Name: "args", Kind: kind.VarPos},
			{Name: "x", Kind: kind.PosOrKw},
		}, false},
		{"keyword-only after **kwargs", []Param{
			{Name: "kwargs", Kind: kind.VarKw},
			{Name: "k", Kind: kind.KwOnly},
		}, false},
		{"two *args", []Param{
			{Name: "a", Kind: kind.VarPos},
			{Name: "b", Kind: kind.VarPos},
		}, false},
		{"two **kwargs", []Param{
			{Name: "a", Kind: kind.VarKw},
			{Name: "b", Kind: kind.VarKw},
		}, false},
		{"required after optional", []Param{
			{Name: "a", Kind: kind.PosOrKw | kind.Opt},
			{Name: "b", Kind: kind.PosOrKw},
		}, false},
		{"required keyword-only after optional is fine", []Param{
			{Name: "a", Kind: kind.KwOnly | kind.Opt},
			{Name: "b", Kind: kind.KwOnly},
		}, true},
		{"optional *args", []Param{
			{Name: "args", Kind: kind.VarPos | kind.Opt},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(host, tt.params...)
			if tt.ok && err != nil {
				t.Errorf("New: %v", err)
			}
			if !tt.ok {
				var malformed *MalformedError
				if !errors.As(err, &malformed) {
					t.Errorf("New returned %v, want MalformedError", err)
				}
			}
		})
	}
}

func TestSignatureIndices(t *testing.T) {
	host := pytypes.NewHost()
	s := MustNew(host,
		Param{Name: "p", Kind: kind.PosOnly},
		Param{Name: "x", Kind: kind.PosOrKw},
		Param{Name: "y", Kind: kind.PosOrKw | kind.Opt},
		Param{Name: "args", Kind: kind.VarPos},
		Param{Name: "k", Kind: kind.KwOnly},
		Param{Name: "kwargs", Kind: kind.VarKw},
	)

	if s.Len() != 6 {
		t.Fatalf("Len = %d", s.Len())
	}
	if s.FirstPosOnly() != 0 || s.FirstPosOrKw() != 1 || s.FirstOpt() != 2 {
		t.Errorf("section indices = %d %d %d",
			s.FirstPosOnly(), s.FirstPosOrKw(), s.FirstOpt())
	}
	if s.VarPosIndex() != 3 || s.FirstKwOnly() != 4 || s.VarKwIndex() != 5 {
		t.Errorf("variadic indices = %d %d %d",
			s.VarPosIndex(), s.FirstKwOnly(), s.VarKwIndex())
	}
	if s.PosCount() != 3 || s.OptCount() != 1 {
		t.Errorf("PosCount = %d, OptCount = %d", s.PosCount(), s.OptCount())
	}

	// required: p, x, k — not y (optional), not the variadics.
	want := uint64(1)<<0 | uint64(1)<<1 | uint64(1)<<4
	if s.Required() != want {
		t.Errorf("Required = %b, want %b", s.Required(), want)
	}
}

func TestKeywordTablePerfect(t *testing.T) {
	host := pytypes.NewHost()
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	params := make([]Param, len(names))
	for i, n := range names {
		params[i] = Param{Name: n, Kind: kind.KwOnly}
	}
	s := MustNew(host, params...)

	// Every declared name resolves to its own callback in one probe.
	for i, n := range names {
		cb, exact := s.Lookup(n)
		if !exact || cb == nil {
			t.Fatalf("Lookup(%q) missed", n)
		}
		if cb.Param.Index != i {
			t.Errorf("Lookup(%q) found formal %d, want %d", n, cb.Param.Index, i)
		}
	}

	// Unknown names miss cleanly without a variadic fallback.
	if cb, _ := s.Lookup("eta"); cb != nil {
		t.Errorf("Lookup(eta) = %v, want nil", cb.Param)
	}

	// Table capacity stays within twice the keyword count, rounded up.
	if s.TableSize() != 16 {
		t.Errorf("TableSize = %d, want 16", s.TableSize())
	}
}

func TestKeywordTableVarKwFallback(t *testing.T) {
	host := pytypes.NewHost()
	s := MustNew(host,
		Param{Name: "a", Kind: kind.PosOrKw},
		Param{Name: "rest", Kind: kind.VarKw},
	)

	cb, exact := s.Lookup("a")
	if cb == nil || !exact {
		t.Fatal("declared name must resolve exactly")
	}
	cb, exact = s.Lookup("other")
	if cb == nil || exact {
		t.Fatal("unknown name must fall back to **rest")
	}
	if !cb.Param.Kind.VarKw() {
		t.Errorf("fallback resolved %s, want the variadic-keyword formal", cb.Param)
	}
	if s.LookupExact("other") != nil {
		t.Error("LookupExact must not fall back")
	}
}

func TestHashStringDistributes(t *testing.T) {
	// Adjacent names must not collide under the default seed and prime for
	// any realistic table size.
	h1 := HashString("value", 0x811c9dc5, 1099511628211)
	h2 := HashString("values", 0x811c9dc5, 1099511628211)
	if h1 == h2 {
		t.Error("distinct names hashed equal")
	}
	if HashString("", 7, 3) != 7 {
		t.Error("empty string must hash to the seed")
	}
}

func TestBuildKeywordTableExhaustion(t *testing.T) {
	// Identical names collide under every seed, so the search must give up
	// with HashExhaustedError rather than loop. Duplicate names cannot be
	// produced through New, so drive the builder directly.
	cb := &Callback{}
	_, err := buildKeywordTable([]string{"same", "same"}, []*Callback{cb, cb})
	var exhausted *HashExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("buildKeywordTable returned %v, want HashExhaustedError", err)
	}
	if len(exhausted.Names) != 2 {
		t.Errorf("error names = %v", exhausted.Names)
	}
}

func TestSignatureReduced(t *testing.T) {
	host := pytypes.NewHost()
	s := MustNew(host,
		Param{Name: "a", Kind: kind.PosOrKw},
		Param{Name: "b", Kind: kind.PosOrKw | kind.Opt, Type: pytypes.IntType},
		Param{Name: "k", Kind: kind.KwOnly | kind.Opt},
	)
	r, err := s.Reduced()
	if err != nil {
		t.Fatalf("Reduced: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Reduced len = %d, want 2", r.Len())
	}
	if r.At(0).Name != "b" || r.At(0).Kind.Opt() {
		t.Errorf("reduced formal 0 = %s", r.At(0))
	}
	if r.At(0).Type != pytypes.IntType {
		t.Error("reduction dropped the type annotation")
	}
	if r.At(1).Name != "k" || !r.At(1).Kind.KwOnly() {
		t.Errorf("reduced formal 1 = %s", r.At(1))
	}
}

func TestSignatureCompatible(t *testing.T) {
	host := pytypes.NewHost()
	base := MustNew(host,
		Param{Name: "x", Kind: kind.PosOrKw, Type: pytypes.IntType},
		Param{Name: "args", Kind: kind.VarPos},
		Param{Name: "kwargs", Kind: kind.VarKw},
	)

	tests := []struct {
		name   string
		params []Param
		ok     bool
	}{
		{"same shape", []Param{
			{Name: "x", Kind: kind.PosOrKw, Type: pytypes.IntType},
			{Name: "args", Kind: kind.VarPos},
			{Name: "kwargs", Kind: kind.VarKw},
		}, true},
		{"subtype narrows", []Param{
			{Name: "x", Kind: kind.PosOrKw, Type: pytypes.BoolType},
			{Name: "args", Kind: kind.VarPos},
			{Name: "kwargs", Kind: kind.VarKw},
		}, true},
		{"extra absorbed by variadics", []Param{
			{Name: "x", Kind: kind.PosOrKw, Type: pytypes.IntType},
			{Name: "y", Kind: kind.PosOrKw},
			{Name: "k", Kind: kind.KwOnly},
		}, true},
		{"wrong name", []Param{
			{Name: "z", Kind: kind.PosOrKw, Type: pytypes.IntType},
		}, false},
		{"supertype widens", []Param{
			{Name: "x", Kind: kind.PosOrKw, Type: pytypes.FloatType},
		}, false},
		{"mode narrowed", []Param{
			{Name: "x", Kind: kind.PosOnly, Type: pytypes.IntType},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := MustNew(host, tt.params...)
			err := base.Compatible(cand)
			if tt.ok && err != nil {
				t.Errorf("Compatible: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Compatible accepted an incompatible candidate")
			}
		})
	}
}

func TestSignatureString(t *testing.T) {
	host := pytypes.NewHost()
	tests := []struct {
		params []Param
		want   string
	}{
		{nil, "()"},
		{[]Param{
			{Name: "p", Kind: kind.PosOnly},
			{Name: "x", Kind: kind.PosOrKw, Type: pytypes.IntType},
			{Name: "args", Kind: kind.VarPos},
			{Name: "k", Kind: kind.KwOnly | kind.Opt},
			{Name: "kwargs", Kind: kind.VarKw},
		}, "(p, /, x: Int, *args, k = ..., **kwargs)"},
		{[]Param{
			{Name: "a", Kind: kind.PosOrKw},
			{Name: "k", Kind: kind.KwOnly},
		}, "(a, *, k)"},
	}
	for _, tt := range tests {
		s := MustNew(host, tt.params...)
		if got := s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCallbackClosures(t *testing.T) {
	host := pytypes.NewHost()
	s := MustNew(host,
		Param{Name: "n", Kind: kind.PosOrKw, Type: pytypes.IntType},
	)
	cb := s.Callback(0)
	if cb == nil {
		t.Fatal("Callback(0) = nil")
	}
	if !cb.IsInstance(pytypes.Int(1)) {
		t.Error("int value rejected by int formal")
	}
	if cb.IsInstance(pytypes.Str("x")) {
		t.Error("str value accepted by int formal")
	}
	if !cb.IsSubtype(pytypes.BoolType) {
		t.Error("bool must be a subtype of int")
	}
	if cb.IsSubtype(pytypes.StrType) {
		t.Error("str must not be a subtype of int")
	}
	if cb.Mask != 1 {
		t.Errorf("Mask = %b, want 1", cb.Mask)
	}
}

func TestMaxArgsLimit(t *testing.T) {
	host := pytypes.NewHost()
	params := make([]Param, 65)
	for i := range params {
		params[i] = Param{Name: fmt.Sprintf("p%d", i), Kind: kind.PosOrKw}
	}
	if _, err := New(host, params...); err == nil {
		t.Fatal("New accepted more formals than the bitmask can address")
	}
	if _, err := New(host, params[:64]...); err != nil {
		t.Fatalf("New rejected 64 formals: %v", err)
	}
}
