// Package kind defines the compact bitfield describing how a formal
// parameter may be bound: positionally, by keyword, variadically, and
// whether a default value exists for it.
package kind

// Kind is a bitfield over the Opt/Var/Pos/Kw flags.
//
// The relative ordering of the flag values is significant: it dictates the
// order in which edges are stored within overload tries, which must always
// be POS < OPT POS < VAR POS < KW < OPT KW < VAR KW for a stable traversal
// order.
type Kind uint8

const (
	Opt Kind = 1 << iota
	Var
	Pos
	Kw
)

// The legal combinations.
const (
	PosOnly  = Pos              // positional-only
	PosOrKw  = Pos | Kw         // positional-or-keyword
	KwOnly   = Kw               // keyword-only
	VarPos   = Var | Pos        // *args
	VarKw    = Var | Kw         // **kwargs
)

// PosOnly reports a strictly positional parameter (ignoring optionality).
func (k Kind) PosOnly() bool { return k&^Opt == Pos }

// Pos reports a parameter that can be bound positionally (not variadic).
func (k Kind) Pos() bool { return k&(Var|Pos) == Pos }

// VarPos reports a variadic-positional parameter (*args).
func (k Kind) VarPos() bool { return k&^Opt == Var|Pos }

// KwOnly reports a strictly keyword parameter (ignoring optionality).
func (k Kind) KwOnly() bool { return k&^Opt == Kw }

// Kw reports a parameter that can be bound by keyword (not variadic).
func (k Kind) Kw() bool { return k&(Var|Kw) == Kw }

// VarKw reports a variadic-keyword parameter (**kwargs).
func (k Kind) VarKw() bool { return k&^Opt == Var|Kw }

// Opt reports whether the parameter carries a default value.
func (k Kind) Opt() bool { return k&Opt != 0 }

// Variadic reports either variadic form.
func (k Kind) Variadic() bool { return k&Var != 0 }

// Valid reports whether the bit pattern is one of the legal combinations.
// Variadic parameters cannot additionally be optional.
func (k Kind) Valid() bool {
	switch k &^ Opt {
	case Pos, Pos | Kw, Kw:
		return true
	case Var | Pos, Var | Kw:
		return !k.Opt()
	}
	return false
}

// Rank orders kinds canonically within a parameter list:
// positional-only < positional-or-keyword < variadic-positional <
// keyword-only < variadic-keyword.
func (k Kind) Rank() int {
	switch {
	case k.PosOnly():
		return 0
	case k.Pos() && k.Kw():
		return 1
	case k.VarPos():
		return 2
	case k.KwOnly():
		return 3
	case k.VarKw():
		return 4
	}
	return 5
}

func (k Kind) String() string {
	var s string
	switch {
	case k.PosOnly():
		s = "positional-only"
	case k.Pos() && k.Kw():
		s = "positional-or-keyword"
	case k.KwOnly():
		s = "keyword-only"
	case k.VarPos():
		s = "variadic-positional"
	case k.VarKw():
		s = "variadic-keyword"
	default:
		s = "invalid"
	}
	if k.Opt() {
		s += " (optional)"
	}
	return s
}

// CanWeakenTo reports whether a parameter of kind k may be satisfied by a
// parameter of kind other in a compatible signature. Positional-only cannot
// be weakened to accept keywords, keyword-only cannot accept positionals,
// and an optional formal cannot become required.
func (k Kind) CanWeakenTo(other Kind) bool {
	if k.Variadic() != other.Variadic() {
		return false
	}
	if k.Variadic() {
		return k&^Opt == other&^Opt
	}
	// other must permit every binding mode k permits
	if k.Pos() && !other.Pos() {
		return false
	}
	if k.Kw() && !other.Kw() {
		return false
	}
	// an optional formal may not become required
	if k.Opt() && !other.Opt() {
		return false
	}
	return true
}
