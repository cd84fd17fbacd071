package call

import (
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Defaults holds one pre-captured value per optional formal. It is
// constructed once with the function and immutable thereafter.
type Defaults struct {
	signature *sig.Signature
	byFormal  map[int]types.Value
}

// NoDefaults is the empty container for a signature without optional
// formals.
func NoDefaults(s *sig.Signature) *Defaults {
	return &Defaults{signature: s, byFormal: map[int]types.Value{}}
}

// NewDefaults captures default values by invoking the same merge algorithm
// on the reduced signature containing only the optional formals, which
// guarantees identical keyword/positional semantics as the function itself.
// Every optional formal must receive a value.
func NewDefaults(s *sig.Signature, args ...Arg) (*Defaults, error) {
	reduced, err := s.Reduced()
	if err != nil {
		return nil, err
	}
	collect := &defaultsSink{values: make([]types.Value, reduced.Len())}
	if err := Merge(reduced, nil, nil, args, collect); err != nil {
		return nil, err
	}

	d := &Defaults{
		signature: s,
		byFormal:  make(map[int]types.Value, reduced.Len()),
	}
	// The reduced formals follow the optional formals of s in order.
	slot := 0
	for i := 0; i < s.Len(); i++ {
		if s.At(i).Kind.Opt() {
			d.byFormal[i] = collect.values[slot]
			slot++
		}
	}
	return d, nil
}

// Shift re-indexes the container onto a trailing sub-signature, dropping
// the first offset formals. Used when a receiver formal is bound out of
// band and the remaining formals move down.
func (d *Defaults) Shift(s *sig.Signature, offset int) *Defaults {
	out := &Defaults{signature: s, byFormal: make(map[int]types.Value, len(d.byFormal))}
	for i, v := range d.byFormal {
		if i >= offset {
			out.byFormal[i-offset] = v
		}
	}
	return out
}

// Len reports how many defaults are captured.
func (d *Defaults) Len() int { return len(d.byFormal) }

// Get returns the default for the formal at index i.
func (d *Defaults) Get(i int) (types.Value, bool) {
	v, ok := d.byFormal[i]
	return v, ok
}

// ByName returns the default for the named formal.
func (d *Defaults) ByName(name string) (types.Value, bool) {
	if cb := d.signature.LookupExact(name); cb != nil {
		return d.Get(cb.Param.Index)
	}
	for i := 0; i < d.signature.Len(); i++ {
		if d.signature.At(i).Name == name {
			return d.Get(i)
		}
	}
	return nil, false
}

// defaultsSink records the values bound to the reduced signature's formals.
type defaultsSink struct {
	values []types.Value
}

func (c *defaultsSink) Positional(p *sig.Param, v types.Value) error {
	c.values[p.Index] = v
	return nil
}

func (c *defaultsSink) Keyword(p *sig.Param, v types.Value) error {
	c.values[p.Index] = v
	return nil
}

func (c *defaultsSink) VarPos(p *sig.Param, vs []types.Value) error {
	c.values[p.Index] = vs
	return nil
}

func (c *defaultsSink) VarKw(p *sig.Param, pairs []KV) error {
	c.values[p.Index] = pairs
	return nil
}
