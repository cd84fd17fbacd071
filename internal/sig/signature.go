package sig

import (
	"fmt"
	"strings"

	"github.com/funvibe/funcall/internal/config"
	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/types"
)

// MalformedError reports an ill-formed parameter list. It corresponds to the
// compile-time failures of a statically-checked host.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed signature: %s", e.Reason)
}

func malformed(format string, a ...interface{}) *MalformedError {
	return &MalformedError{Reason: fmt.Sprintf(format, a...)}
}

// Counts tallies formals by kind and optional-by-kind.
type Counts struct {
	PosOnly    int
	PosOrKw    int
	KwOnly     int
	OptPosOnly int
	OptPosOrKw int
	OptKwOnly  int
}

// Signature is an immutable descriptor of a formal parameter list. All
// derived data (counts, indices, required mask, keyword table, per-parameter
// callbacks) is computed once in New.
type Signature struct {
	contract types.Contract
	registry *types.Registry

	params    []Param
	callbacks []Callback
	kwTable   *keywordTable

	counts   Counts
	required uint64

	// Indices of the first formal of each kind; len(params) if absent.
	posOnlyIdx int
	posOrKwIdx int
	kwOnlyIdx  int
	varPosIdx  int
	varKwIdx   int
	optIdx     int
}

// New validates a parameter list and builds its descriptor. The contract
// supplies the host's type predicates and must not be nil.
func New(contract types.Contract, params ...Param) (*Signature, error) {
	if contract == nil {
		return nil, malformed("nil type contract")
	}
	n := len(params)
	if n > config.MaxArgs {
		return nil, malformed("%d formals exceed the maximum of %d", n, config.MaxArgs)
	}

	s := &Signature{
		contract:   contract,
		registry:   types.NewRegistry(),
		params:     make([]Param, n),
		posOnlyIdx: n,
		posOrKwIdx: n,
		kwOnlyIdx:  n,
		varPosIdx:  n,
		varKwIdx:   n,
		optIdx:     n,
	}
	copy(s.params, params)

	seen := make(map[string]int, n)
	lastRank := -1
	optSeen := [5]bool{}

	for i := range s.params {
		p := &s.params[i]
		p.Index = i

		if !p.Kind.Valid() {
			return nil, malformed("formal %d has invalid kind bits %04b", i, uint8(p.Kind))
		}
		if p.Name == "" && !p.Kind.PosOnly() {
			return nil, malformed("formal %d (%s) must be named", i, p.Kind)
		}
		if p.Name != "" {
			if prev, dup := seen[p.Name]; dup {
				return nil, malformed("duplicate parameter name %q at %d and %d", p.Name, prev, i)
			}
			seen[p.Name] = i
		}

		rank := p.Kind.Rank()
		if rank < lastRank {
			return nil, malformed(
				"formal %d (%s) out of order: %s may not follow %s",
				i, p.Name, p.Kind, s.params[i-1].Kind,
			)
		}
		if rank == lastRank && p.Kind.Variadic() {
			return nil, malformed("more than one %s parameter", p.Kind)
		}
		// An optional positional may not precede a required one of the
		// same kind.
		if p.Kind.Opt() {
			optSeen[rank] = true
		} else if rank < len(optSeen) && optSeen[rank] && p.Kind.Pos() {
			return nil, malformed(
				"required %s formal %q follows an optional one", p.Kind, p.Name,
			)
		}
		lastRank = rank

		switch rank {
		case 0:
			if s.posOnlyIdx == n {
				s.posOnlyIdx = i
			}
			s.counts.PosOnly++
			if p.Kind.Opt() {
				s.counts.OptPosOnly++
			}
		case 1:
			if s.posOrKwIdx == n {
				s.posOrKwIdx = i
			}
			s.counts.PosOrKw++
			if p.Kind.Opt() {
				s.counts.OptPosOrKw++
			}
		case 2:
			s.varPosIdx = i
		case 3:
			if s.kwOnlyIdx == n {
				s.kwOnlyIdx = i
			}
			s.counts.KwOnly++
			if p.Kind.Opt() {
				s.counts.OptKwOnly++
			}
		case 4:
			s.varKwIdx = i
		}

		if p.Kind.Opt() && s.optIdx == n {
			s.optIdx = i
		}
		if p.Required() {
			s.required |= p.OneHot()
		}
	}

	// Positional callback table, index-aligned with the formal list.
	s.callbacks = make([]Callback, n)
	for i := range s.params {
		s.callbacks[i] = newCallback(contract, &s.params[i])
	}

	// Perfect-hash table over the keyword-addressable names.
	var names []string
	var cbs []*Callback
	for i := range s.params {
		p := &s.params[i]
		if p.Name != "" && (p.Kind.Kw() || p.Kind.VarKw()) {
			names = append(names, p.Name)
			cbs = append(cbs, &s.callbacks[i])
		}
	}
	table, err := buildKeywordTable(names, cbs)
	if err != nil {
		return nil, err
	}
	if s.varKwIdx < n {
		table.fallback = &s.callbacks[s.varKwIdx]
	}
	s.kwTable = table

	// Pre-register the declared types so witness identities are stable.
	for i := range s.params {
		if s.params[i].Type != nil {
			s.registry.ID(s.params[i].Type)
		}
	}
	return s, nil
}

// MustNew is New for statically-known parameter lists (tests, builtins).
func MustNew(contract types.Contract, params ...Param) *Signature {
	s, err := New(contract, params...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Signature) Len() int                 { return len(s.params) }
func (s *Signature) Empty() bool              { return len(s.params) == 0 }
func (s *Signature) Required() uint64         { return s.required }
func (s *Signature) Counts() Counts           { return s.counts }
func (s *Signature) Contract() types.Contract { return s.contract }
func (s *Signature) Seed() uint64             { return s.kwTable.seed }
func (s *Signature) Prime() uint64            { return s.kwTable.prime }
func (s *Signature) TableSize() int           { return len(s.kwTable.slots) }

// At returns the formal at index i, or nil when out of range.
func (s *Signature) At(i int) *Param {
	if i < 0 || i >= len(s.params) {
		return nil
	}
	return &s.params[i]
}

// Callback returns the positional-table entry at index i.
func (s *Signature) Callback(i int) *Callback {
	if i < 0 || i >= len(s.callbacks) {
		return nil
	}
	return &s.callbacks[i]
}

// Lookup resolves a keyword name through the perfect-hash table. The second
// result is false when the resolution fell back to the variadic-keyword
// callback (or failed entirely, in which case the callback is nil).
func (s *Signature) Lookup(name string) (*Callback, bool) {
	return s.kwTable.lookup(name)
}

// LookupExact resolves a keyword name without the variadic fallback.
func (s *Signature) LookupExact(name string) *Callback {
	return s.kwTable.exact(name)
}

// Contains reports whether a formal with the given name exists.
func (s *Signature) Contains(name string) bool {
	return s.kwTable.exact(name) != nil || s.indexByAnyName(name) >= 0
}

// indexByAnyName also finds positional-only and variadic-positional names,
// which are not keyword-addressable and therefore absent from the hash
// table.
func (s *Signature) indexByAnyName(name string) int {
	if name == "" {
		return -1
	}
	for i := range s.params {
		if s.params[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Signature) HasVarPos() bool { return s.varPosIdx < len(s.params) }
func (s *Signature) HasVarKw() bool  { return s.varKwIdx < len(s.params) }

// VarPos and VarKw return the variadic formals, or nil.
func (s *Signature) VarPos() *Param {
	if !s.HasVarPos() {
		return nil
	}
	return &s.params[s.varPosIdx]
}

func (s *Signature) VarKw() *Param {
	if !s.HasVarKw() {
		return nil
	}
	return &s.params[s.varKwIdx]
}

// FirstKwOnly returns the index of the first keyword-only formal, or Len()
// if absent. Analogous accessors exist for the other kinds.
func (s *Signature) FirstKwOnly() int  { return s.kwOnlyIdx }
func (s *Signature) FirstPosOnly() int { return s.posOnlyIdx }
func (s *Signature) FirstPosOrKw() int { return s.posOrKwIdx }
func (s *Signature) FirstOpt() int     { return s.optIdx }
func (s *Signature) VarPosIndex() int  { return s.varPosIdx }
func (s *Signature) VarKwIndex() int   { return s.varKwIdx }

// PosCount is the number of non-variadic positional slots (positional-only
// plus positional-or-keyword).
func (s *Signature) PosCount() int {
	return s.counts.PosOnly + s.counts.PosOrKw
}

// OptCount is the number of optional formals.
func (s *Signature) OptCount() int {
	return s.counts.OptPosOnly + s.counts.OptPosOrKw + s.counts.OptKwOnly
}

// WitnessID returns the stable identity of a witness within this signature.
func (s *Signature) WitnessID(w types.Witness) uint64 {
	return s.registry.ID(w)
}

// Reduced builds the optional-only sub-signature through which a defaults
// container is initialized. Each optional formal keeps its name, type and
// binding modes but becomes required.
func (s *Signature) Reduced() (*Signature, error) {
	var params []Param
	for i := range s.params {
		p := s.params[i]
		if !p.Kind.Opt() {
			continue
		}
		p.Kind &^= kind.Opt
		params = append(params, Param{Name: p.Name, Type: p.Type, Kind: p.Kind})
	}
	return New(s.contract, params...)
}

// Compatible reports whether other can stand in for this signature: every
// formal of this list has a counterpart in other with the same name, an
// at-least-as-permissive kind, no strengthened requiredness, and a subtype
// declared type. Variadic formals absorb zero or more counterpart formals
// of compatible kind and subtype element type.
func (s *Signature) Compatible(other *Signature) error {
	j := 0
	for i := range s.params {
		p := &s.params[i]
		switch {
		case p.Kind.VarPos():
			for j < other.Len() {
				q := other.At(j)
				if !q.Kind.Pos() && !q.Kind.VarPos() {
					break
				}
				if !s.subtypeOK(q.Type, p.Type) {
					return malformed(
						"formal %q of %s is not a subtype of variadic element type %s",
						q.Name, typeName(q.Type), typeName(p.Type),
					)
				}
				j++
			}
		case p.Kind.VarKw():
			for j < other.Len() {
				q := other.At(j)
				if !q.Kind.Kw() && !q.Kind.VarKw() {
					break
				}
				if !s.subtypeOK(q.Type, p.Type) {
					return malformed(
						"formal %q of %s is not a subtype of variadic element type %s",
						q.Name, typeName(q.Type), typeName(p.Type),
					)
				}
				j++
			}
		default:
			if j >= other.Len() {
				return malformed("missing counterpart for formal %q", p.Name)
			}
			q := other.At(j)
			if p.Name != q.Name {
				return malformed("formal %d is %q, want %q", j, q.Name, p.Name)
			}
			if !p.Kind.CanWeakenTo(q.Kind) {
				return malformed(
					"formal %q kind %s cannot satisfy %s", p.Name, q.Kind, p.Kind,
				)
			}
			if !s.subtypeOK(q.Type, p.Type) {
				return malformed(
					"formal %q type %s is not a subtype of %s",
					p.Name, typeName(q.Type), typeName(p.Type),
				)
			}
			j++
		}
	}
	if j != other.Len() {
		return malformed("unabsorbed formal %q", other.At(j).Name)
	}
	return nil
}

func typeName(w types.Witness) string {
	if w == nil {
		return "<any>"
	}
	return w.TypeName()
}

func (s *Signature) subtypeOK(sub, super types.Witness) bool {
	if super == nil {
		return true
	}
	if sub == nil {
		return false
	}
	return s.contract.IsSubtype(sub, super)
}

// String renders the parameter list in foreign-runtime notation, including
// the positional-only divider.
func (s *Signature) String() string {
	parts := make([]string, 0, len(s.params)+2)
	sawKwSection := false
	for i := range s.params {
		p := &s.params[i]
		if s.counts.PosOnly > 0 && i == s.posOnlyIdx+s.counts.PosOnly {
			parts = append(parts, config.PosOnlyMarker)
		}
		if p.Kind.KwOnly() && !sawKwSection && !s.HasVarPos() {
			parts = append(parts, config.VarPosPrefix)
			sawKwSection = true
		}
		parts = append(parts, p.String())
	}
	if s.counts.PosOnly > 0 && s.counts.PosOnly == len(s.params) {
		parts = append(parts, config.PosOnlyMarker)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
