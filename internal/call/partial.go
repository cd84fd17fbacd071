package call

import (
	"sort"

	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Partial is one pre-bound argument value, tagged with the formal index it
// targets and its position in the user-supplied binding order.
type Partial struct {
	Target int
	Origin int
	Name   string
	Value  types.Value
}

// Partials is the immutable container of pre-bound arguments, sorted
// ascending by target formal index and stable with respect to the original
// binding order within a target.
type Partials struct {
	signature *sig.Signature
	records   []Partial

	// user keeps the binding-order arguments so a later Bind can replay
	// them against the combined list.
	user []Arg
}

// NoPartials is the empty container for a signature.
func NoPartials(s *sig.Signature) *Partials {
	return &Partials{signature: s}
}

// NewPartials binds each pre-bound argument to a formal: a positional value
// targets the next unbound positional formal (or the variadic-positional
// slot once those are exhausted); a keyword value targets the formal with
// that name (or the variadic-keyword slot). Unpacks are not permitted in a
// partial binding.
func NewPartials(s *sig.Signature, args ...Arg) (*Partials, error) {
	p := &Partials{signature: s}
	if err := p.bind(args); err != nil {
		return nil, err
	}
	return p, nil
}

// Extend replays the existing binding followed by more arguments, producing
// a new container. Rebinding a formal that an earlier partial already
// satisfied is a conflicting value.
func (p *Partials) Extend(args ...Arg) (*Partials, error) {
	combined := make([]Arg, 0, len(p.user)+len(args))
	combined = append(combined, p.user...)
	combined = append(combined, args...)
	next := &Partials{signature: p.signature}
	if err := next.bind(combined); err != nil {
		return nil, err
	}
	return next, nil
}

func (p *Partials) bind(args []Arg) error {
	s := p.signature
	bound := make(map[int]bool) // non-variadic formals already targeted
	nextPos := 0

	for origin, a := range args {
		switch a.mode {
		case modePos:
			// Advance to the next unbound positional formal.
			for nextPos < s.PosCount() && bound[nextPos] {
				nextPos++
			}
			var target int
			if nextPos < s.PosCount() {
				target = nextPos
				bound[target] = true
				nextPos++
			} else if s.HasVarPos() {
				target = s.VarPosIndex()
			} else {
				return &ExtraPositionalError{Count: 1}
			}
			if err := p.check(target, "", a.value); err != nil {
				return err
			}
			p.records = append(p.records, Partial{
				Target: target, Origin: origin, Value: a.value,
			})
		case modeKw:
			cb, exact := s.Lookup(a.name)
			var target int
			switch {
			case exact && cb.Param.Kind.Kw():
				target = cb.Param.Index
				// Covers both a duplicate keyword partial and a name
				// already consumed by a positional partial.
				if bound[target] {
					return &ConflictingValueError{Name: a.name}
				}
				bound[target] = true
			case s.LookupExact(a.name) == nil && s.Contains(a.name):
				// Names a positional-only formal.
				return &ConflictingValueError{Name: a.name}
			case s.HasVarKw():
				target = s.VarKwIndex()
				for _, r := range p.records {
					if r.Target == target && r.Name == a.name {
						return &DuplicateArgumentError{Name: a.name}
					}
				}
			default:
				return &ExtraKeywordError{Name: a.name}
			}
			if err := p.check(target, a.name, a.value); err != nil {
				return err
			}
			p.records = append(p.records, Partial{
				Target: target, Origin: origin, Name: a.name, Value: a.value,
			})
		default:
			return &BadPackError{Reason: "unpacks cannot be bound as partials"}
		}
	}

	sort.SliceStable(p.records, func(i, j int) bool {
		return p.records[i].Target < p.records[j].Target
	})
	p.user = append([]Arg(nil), args...)
	return nil
}

func (p *Partials) check(target int, name string, v types.Value) error {
	cb := p.signature.Callback(target)
	if cb == nil || cb.IsInstance(v) {
		return nil
	}
	formal := p.signature.At(target)
	if name == "" {
		name = formal.Name
	}
	return &BadTypeError{
		Name:     name,
		Expected: typeNameOf(formal.Type),
		Got:      typeNameOf(p.signature.Contract().TypeOf(v)),
	}
}

func typeNameOf(w types.Witness) string {
	if w == nil {
		return "<any>"
	}
	return w.TypeName()
}

// Len reports the number of pre-bound values.
func (p *Partials) Len() int { return len(p.records) }

// Empty reports whether no arguments are bound.
func (p *Partials) Empty() bool { return len(p.records) == 0 }

// Records exposes the sorted records (read-only).
func (p *Partials) Records() []Partial { return p.records }

// Signature returns the formal list the partials bind into.
func (p *Partials) Signature() *sig.Signature { return p.signature }

// groupAt returns the consecutive records targeting formal index i,
// starting the scan at *cursor, and advances the cursor past them.
func (p *Partials) groupAt(i int, cursor *int) []Partial {
	start := *cursor
	for *cursor < len(p.records) && p.records[*cursor].Target == i {
		*cursor++
	}
	return p.records[start:*cursor]
}
