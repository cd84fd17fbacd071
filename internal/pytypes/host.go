package pytypes

import (
	"github.com/funvibe/funcall/internal/types"
)

// Host adapts the reference type system to the engine's witness contract.
// Values are *Object; anything else types as Any.
type Host struct {
	// Any is the witness reported for untagged values. Defaults to a
	// shared root type.
	Any *TCon
}

var anyType = &TCon{Name: "Any"}

// Builtin types shared by tests and the CLI. Bool is nominally a subtype of
// Int, matching the foreign runtime's convention.
var (
	IntType   = &TCon{Name: "Int"}
	FloatType = &TCon{Name: "Float"}
	StrType   = &TCon{Name: "Str"}
	NoneType  = &TCon{Name: "NoneType"}
	BoolType  = &TCon{Name: "Bool", Super: IntType}
)

// NewHost creates a host over the reference type system.
func NewHost() *Host {
	return &Host{Any: anyType}
}

func (h *Host) TypeOf(v types.Value) types.Witness {
	if obj, ok := v.(*Object); ok && obj.Type != nil {
		return obj.Type
	}
	return h.Any
}

func (h *Host) IsInstance(v types.Value, t types.Witness) bool {
	tt, ok := t.(Type)
	if !ok {
		return false
	}
	obj, ok := v.(*Object)
	if !ok {
		return UnwrapUnderlying(tt) == Type(h.Any)
	}
	return IsSubtype(obj.Type, tt)
}

func (h *Host) IsSubtype(sub, super types.Witness) bool {
	s, ok := sub.(Type)
	if !ok {
		return false
	}
	p, ok := super.(Type)
	if !ok {
		return false
	}
	return IsSubtype(s, p)
}

// Int, Float, Str, Bool and None build tagged builtin values.
func Int(v int64) *Object      { return New(IntType, v) }
func Float(v float64) *Object  { return New(FloatType, v) }
func Str(v string) *Object     { return New(StrType, v) }
func Bool(v bool) *Object      { return New(BoolType, v) }
func None() *Object            { return New(NoneType, nil) }
