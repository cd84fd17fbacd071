package pytypes

// IsSubtype reports whether sub is a (non-strict) subtype of super.
//
// Rules, checked in order:
//   - aliases are unwrapped on both sides
//   - every type is a subtype of itself
//   - a union is a subtype of T iff all its members are; T is a subtype of a
//     union iff it is a subtype of some member
//   - a TCon follows its Super chain
//   - a TApp is a subtype of its constructor (Derived<Int> <: Derived), and
//     of another TApp with a compatible constructor and pairwise-subtype
//     arguments
//   - a TApp is a subtype of a plain TCon that its constructor descends
//     from (Derived<Int> <: Int when Derived's Super is Int)
func IsSubtype(sub, super Type) bool {
	return isSubtype(sub, super, 0)
}

const maxDepth = 64

func isSubtype(sub, super Type, depth int) bool {
	if depth > maxDepth {
		return false
	}
	if sub == nil || super == nil {
		return false
	}
	sub = UnwrapUnderlying(sub)
	super = UnwrapUnderlying(super)

	if sub == super || sub.TypeName() == super.TypeName() {
		return true
	}

	if u, ok := sub.(*TUnion); ok {
		for _, m := range u.Types {
			if !isSubtype(m, super, depth+1) {
				return false
			}
		}
		return true
	}
	if u, ok := super.(*TUnion); ok {
		for _, m := range u.Types {
			if isSubtype(sub, m, depth+1) {
				return true
			}
		}
		return false
	}

	switch s := sub.(type) {
	case *TCon:
		if s.Super != nil {
			return isSubtype(s.Super, super, depth+1)
		}
		return false
	case *TApp:
		if app, ok := super.(*TApp); ok {
			if len(s.Args) != len(app.Args) {
				return false
			}
			if !isSubtype(s.Constructor, app.Constructor, depth+1) {
				return false
			}
			for i := range s.Args {
				if !isSubtype(s.Args[i], app.Args[i], depth+1) {
					return false
				}
			}
			return true
		}
		// Derived<Int> <: Derived, and transitively through Derived's supers.
		return isSubtype(s.Constructor, super, depth+1)
	}
	return false
}
