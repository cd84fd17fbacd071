// Package pytypes implements a small reference type system satisfying the
// engine's witness contract: nominal constructors with single inheritance,
// parameterized applications, unions, and aliases. It stands in for the
// foreign runtime's type objects in tests, the CLI, and embedding hosts that
// don't bring their own.
package pytypes

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all types in the reference system.
type Type interface {
	TypeName() string
}

// TCon is a nominal type constructor (e.g. Int, Str, Derived).
type TCon struct {
	Name string

	// Super is the direct supertype, or nil for a root type.
	Super Type

	// Underlying marks an alias: the alias is interchangeable with its
	// underlying type for subtype purposes.
	Underlying Type
}

func (t *TCon) TypeName() string { return t.Name }

// TApp is a type application (e.g. Derived<Int>, List<Str>).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t *TApp) TypeName() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.TypeName()
	}
	return fmt.Sprintf("%s<%s>", t.Constructor.TypeName(), strings.Join(args, ", "))
}

// TUnion is a normalized union (flattened, deduplicated, sorted).
type TUnion struct {
	Types []Type
}

func (t *TUnion) TypeName() string {
	parts := make([]string, len(t.Types))
	for i, m := range t.Types {
		parts[i] = m.TypeName()
	}
	return strings.Join(parts, " | ")
}

// Union creates a normalized union type. Nested unions are flattened,
// duplicates removed; a single remaining member is returned directly.
func Union(members ...Type) Type {
	flat := []Type{}
	for _, m := range members {
		if u, ok := m.(*TUnion); ok {
			flat = append(flat, u.Types...)
		} else {
			flat = append(flat, m)
		}
	}
	seen := make(map[string]bool)
	unique := []Type{}
	for _, m := range flat {
		s := m.TypeName()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, m)
		}
	}
	if len(unique) == 1 {
		return unique[0]
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].TypeName() < unique[j].TypeName()
	})
	return &TUnion{Types: unique}
}

// UnwrapUnderlying recursively unwraps aliases until reaching a non-alias
// type. Returns the original type if it is not an alias.
func UnwrapUnderlying(t Type) Type {
	for {
		tCon, ok := t.(*TCon)
		if !ok || tCon.Underlying == nil {
			return t
		}
		t = tCon.Underlying
	}
}

// Object is a runtime value tagged with its reference type.
type Object struct {
	Type  Type
	Value any
}

func (o *Object) Inspect() string {
	return fmt.Sprintf("%v: %s", o.Value, o.Type.TypeName())
}

// New tags a value with a type.
func New(t Type, v any) *Object { return &Object{Type: t, Value: v} }
