// Package sig implements the signature descriptor: an immutable, validated
// model of a formal parameter list, with per-parameter callbacks, a required
// bitmask, and a perfect-hash keyword table computed once at construction.
package sig

import (
	"fmt"

	"github.com/funvibe/funcall/internal/config"
	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/types"
)

// Param is a single formal parameter anchored at a fixed index within its
// parameter list.
type Param struct {
	Name  string
	Type  types.Witness
	Kind  kind.Kind
	Index int
}

// OneHot is the parameter's position as a one-hot bitmask. Masks of
// processed arguments are progressively OR-ed together and compared against
// the signature's required mask.
func (p *Param) OneHot() uint64 {
	return uint64(1) << uint(p.Index)
}

// Required reports a non-optional, non-variadic formal.
func (p *Param) Required() bool {
	return !p.Kind.Opt() && !p.Kind.Variadic()
}

func (p *Param) String() string {
	name := p.Name
	switch {
	case p.Kind.VarPos():
		name = config.VarPosPrefix + name
	case p.Kind.VarKw():
		name = config.VarKwPrefix + name
	case name == "":
		name = fmt.Sprintf("<%d>", p.Index)
	}
	s := name
	if p.Type != nil {
		s += ": " + p.Type.TypeName()
	}
	if p.Kind.Opt() {
		s += " = " + config.DefaultEllipse
	}
	return s
}

// Callback bundles the type-membership and subtype tests for one formal,
// along with the bitmask locating it in the formal list. Lookups through the
// keyword and positional tables yield these.
type Callback struct {
	Param      *Param
	Mask       uint64
	IsInstance func(v types.Value) bool
	IsSubtype  func(w types.Witness) bool
}

func newCallback(c types.Contract, p *Param) Callback {
	return Callback{
		Param: p,
		Mask:  p.OneHot(),
		IsInstance: func(v types.Value) bool {
			if p.Type == nil {
				return true
			}
			return c.IsInstance(v, p.Type)
		},
		IsSubtype: func(w types.Witness) bool {
			if p.Type == nil {
				return true
			}
			return c.IsSubtype(w, p.Type)
		},
	}
}
