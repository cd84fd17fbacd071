package call

import (
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// ArgumentsOffset flags a packed call whose argument array has one writable
// slot before index 0, allowing a bound-method self prepend without
// reallocation.
const ArgumentsOffset uint64 = 1 << 63

// NargsMask extracts the positional count from a packed nargsf word.
const NargsMask uint64 = ^ArgumentsOffset

// Vector is a packed (array, nargsf, kwnames) call: nargs positional values
// followed by one value per keyword name. The engine always builds vectors
// with the reserved leading slot.
type Vector struct {
	contract types.Contract
	storage  []types.Value // storage[0] is the reserved slot
	names    []string
	nargs    int
	self     bool
}

// PackedInvocable is the foreign calling convention.
type PackedInvocable interface {
	InvokePacked(v *Vector) (types.Value, error)
}

// PackedFunc adapts a plain Go function to the foreign convention.
type PackedFunc func(v *Vector) (types.Value, error)

func (f PackedFunc) InvokePacked(v *Vector) (types.Value, error) { return f(v) }

// Pack runs the three-way merge and writes the resolved values into a fresh
// packed argument array instead of forwarding them to a native call. On any
// error, every value already written is released before the error is
// surfaced.
func Pack(s *sig.Signature, partials *Partials, defaults *Defaults, args ...Arg) (*Vector, error) {
	v := &Vector{
		contract: s.Contract(),
		storage:  make([]types.Value, 1, s.Len()+1),
	}
	sink := &packSink{vec: v}
	if err := Merge(s, partials, defaults, args, sink); err != nil {
		v.releaseAll()
		return nil, err
	}
	return v, nil
}

// Nargs is the number of positional values.
func (v *Vector) Nargs() int { return v.nargs }

// Nargsf encodes the positional count plus the reserved-offset flag.
func (v *Vector) Nargsf() uint64 { return uint64(v.nargs) | ArgumentsOffset }

// Args is the packed value array (positional values followed by keyword
// values). The reserved slot is included only once a receiver has been
// written into it.
func (v *Vector) Args() []types.Value {
	if v.self {
		return v.storage
	}
	return v.storage[1:]
}

// KwNames lists the keyword names parallel to the keyword tail of Args.
func (v *Vector) KwNames() []string { return v.names }

// PrependSelf writes a bound receiver into the reserved slot. The resulting
// array has nargs+1 positional values and shares storage with the original.
func (v *Vector) PrependSelf(self types.Value) *Vector {
	v.retain(self)
	v.storage[0] = self
	return &Vector{
		contract: v.contract,
		storage:  v.storage,
		names:    v.names,
		nargs:    v.nargs + 1,
		self:     true,
	}
}

// Release releases every retained value in the vector. Callers invoke it
// once the foreign call has completed.
func (v *Vector) Release() { v.releaseAll() }

func (v *Vector) retain(val types.Value) {
	if r, ok := v.contract.(types.Releaser); ok && val != nil {
		r.Retain(val)
	}
}

func (v *Vector) releaseAll() {
	r, ok := v.contract.(types.Releaser)
	if !ok {
		return
	}
	start := 1
	if v.self {
		start = 0
	}
	for _, val := range v.storage[start:] {
		if val != nil {
			r.Release(val)
		}
	}
}

// packSink writes merged values into the vector: positional values first,
// keyword-bound values appended after with their names recorded.
type packSink struct {
	vec *Vector
}

func (ps *packSink) push(v types.Value) {
	ps.vec.retain(v)
	ps.vec.storage = append(ps.vec.storage, v)
}

func (ps *packSink) Positional(p *sig.Param, v types.Value) error {
	ps.push(v)
	ps.vec.nargs++
	return nil
}

func (ps *packSink) Keyword(p *sig.Param, v types.Value) error {
	ps.push(v)
	ps.vec.names = append(ps.vec.names, p.Name)
	return nil
}

func (ps *packSink) VarPos(p *sig.Param, vs []types.Value) error {
	for _, v := range vs {
		ps.push(v)
		ps.vec.nargs++
	}
	return nil
}

func (ps *packSink) VarKw(p *sig.Param, pairs []KV) error {
	for _, kv := range pairs {
		ps.push(kv.Value)
		ps.vec.names = append(ps.vec.names, kv.Name)
	}
	return nil
}

// Unpack converts a foreign packed call back into call-site arguments for
// the merge: the first nargs values become positionals, the tail pairs with
// kwnames become keywords.
func Unpack(args []types.Value, nargsf uint64, kwnames []string) ([]Arg, error) {
	nargs := int(nargsf & NargsMask)
	if nargs < 0 || nargs+len(kwnames) > len(args) {
		return nil, &BadPackError{Reason: "argument array shorter than nargsf + kwnames"}
	}
	out := make([]Arg, 0, nargs+len(kwnames))
	for i := 0; i < nargs; i++ {
		out = append(out, Pos(args[i]))
	}
	for i, name := range kwnames {
		if name == "" {
			return nil, &BadPackError{Reason: "empty keyword name in packed call"}
		}
		out = append(out, Kw(name, args[nargs+i]))
	}
	return out, nil
}
