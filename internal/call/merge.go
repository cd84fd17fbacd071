package call

import (
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Sink receives resolved argument values in strict formal-declaration order.
// The native sink forwards them to a Go callee; the pack sink writes them
// into a vectorcall array for the foreign runtime.
type Sink interface {
	// Positional receives the value for a positionally-forwardable formal
	// (positional-only or positional-or-keyword).
	Positional(p *sig.Param, v types.Value) error

	// Keyword receives the value for a keyword-only formal.
	Keyword(p *sig.Param, v types.Value) error

	// VarPos receives the collected variadic-positional values.
	VarPos(p *sig.Param, vs []types.Value) error

	// VarKw receives the collected variadic-keyword entries, in insertion
	// order with no duplicate names.
	VarKw(p *sig.Param, pairs []KV) error
}

// Merge runs the three-way argument merge over a signature: pre-bound
// partials, captured defaults, and call-site arguments (possibly with one
// positional and one keyword unpack) are folded formal-by-formal into the
// sink. partials and defaults may be nil.
//
// The sink observes formals in declaration order regardless of the
// call-site order of keywords.
func Merge(s *sig.Signature, partials *Partials, defaults *Defaults, args []Arg, sink Sink) error {
	list, err := normalize(args)
	if err != nil {
		return err
	}
	return mergeList(s, partials, defaults, list, sink)
}

func mergeList(s *sig.Signature, partials *Partials, defaults *Defaults, list *argList, sink Sink) error {
	if partials == nil {
		partials = NoPartials(s)
	}
	contract := s.Contract()
	posIdx := 0
	cursor := 0

	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		group := partials.groupAt(i, &cursor)

		switch {
		case p.Kind.VarPos():
			vs := make([]types.Value, 0, len(group)+len(list.positional)-posIdx)
			for _, r := range group {
				vs = append(vs, r.Value)
			}
			cb := s.Callback(i)
			for ; posIdx < len(list.positional); posIdx++ {
				v := list.positional[posIdx]
				if !cb.IsInstance(v) {
					return &BadTypeError{
						Name:     p.Name,
						Expected: typeNameOf(p.Type),
						Got:      typeNameOf(contract.TypeOf(v)),
					}
				}
				vs = append(vs, v)
			}
			if err := sink.VarPos(p, vs); err != nil {
				return err
			}

		case p.Kind.VarKw():
			pairs := make([]KV, 0, len(group))
			seen := make(map[string]bool)
			for _, r := range group {
				if seen[r.Name] {
					return &DuplicateArgumentError{Name: r.Name}
				}
				seen[r.Name] = true
				pairs = append(pairs, KV{Name: r.Name, Value: r.Value})
			}
			cb := s.Callback(i)
			for _, e := range list.remainingKeywords() {
				if seen[e.name] {
					return &DuplicateArgumentError{Name: e.name}
				}
				seen[e.name] = true
				if !cb.IsInstance(e.value) {
					return &BadTypeError{
						Name:     e.name,
						Expected: typeNameOf(p.Type),
						Got:      typeNameOf(contract.TypeOf(e.value)),
					}
				}
				pairs = append(pairs, KV{Name: e.name, Value: e.value})
				e.consumed = true
			}
			if err := sink.VarKw(p, pairs); err != nil {
				return err
			}

		case len(group) > 0:
			// Partial construction guarantees a single record per
			// non-variadic formal.
			if p.Name != "" && list.findKeyword(p.Name) != nil {
				return &ConflictingValueError{Name: p.Name}
			}
			if err := emit(sink, p, group[0].Value); err != nil {
				return err
			}

		case p.Kind.PosOnly():
			// A keyword naming a positional-only formal always
			// conflicts, even when nothing else was supplied.
			if p.Name != "" && list.findKeyword(p.Name) != nil {
				return &ConflictingValueError{Name: p.Name}
			}
			if posIdx < len(list.positional) {
				v := list.positional[posIdx]
				posIdx++
				if err := checkAndEmit(s, sink, p, v); err != nil {
					return err
				}
				continue
			}
			if err := emitDefault(s, sink, defaults, p); err != nil {
				return err
			}

		case p.Kind.Pos() && p.Kind.Kw():
			if posIdx < len(list.positional) {
				if list.findKeyword(p.Name) != nil {
					return &ConflictingValueError{Name: p.Name}
				}
				v := list.positional[posIdx]
				posIdx++
				if err := checkAndEmit(s, sink, p, v); err != nil {
					return err
				}
				continue
			}
			if e := list.findKeyword(p.Name); e != nil {
				e.consumed = true
				if err := checkAndEmit(s, sink, p, e.value); err != nil {
					return err
				}
				continue
			}
			if err := emitDefault(s, sink, defaults, p); err != nil {
				return err
			}

		case p.Kind.KwOnly():
			if e := list.findKeyword(p.Name); e != nil {
				e.consumed = true
				if err := checkAndEmit(s, sink, p, e.value); err != nil {
					return err
				}
				continue
			}
			if err := emitDefault(s, sink, defaults, p); err != nil {
				return err
			}
		}
	}

	if posIdx < len(list.positional) {
		return &ExtraPositionalError{Count: len(list.positional) - posIdx}
	}
	if rest := list.remainingKeywords(); len(rest) > 0 {
		return &ExtraKeywordError{Name: rest[0].name}
	}
	return nil
}

// emit routes a resolved value to the sink without re-validating it
// (partials and defaults are validated at their construction).
func emit(sink Sink, p *sig.Param, v types.Value) error {
	if p.Kind.KwOnly() {
		return sink.Keyword(p, v)
	}
	return sink.Positional(p, v)
}

func checkAndEmit(s *sig.Signature, sink Sink, p *sig.Param, v types.Value) error {
	if cb := s.Callback(p.Index); cb != nil && !cb.IsInstance(v) {
		return &BadTypeError{
			Name:     p.Name,
			Expected: typeNameOf(p.Type),
			Got:      typeNameOf(s.Contract().TypeOf(v)),
		}
	}
	return emit(sink, p, v)
}

func emitDefault(s *sig.Signature, sink Sink, defaults *Defaults, p *sig.Param) error {
	if p.Kind.Opt() && defaults != nil {
		if v, ok := defaults.Get(p.Index); ok {
			return emit(sink, p, v)
		}
	}
	return &MissingArgumentError{Name: p.Name, Index: p.Index}
}
