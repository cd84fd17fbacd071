// Package call implements the three-way argument merge: pre-bound partials,
// captured defaults and call-site arguments (including unpack packs) are
// folded into a native invocation in formal order, or into a packed
// argument array for the foreign runtime.
package call

import "fmt"

// ErrorKind groups the argument-shape errors into the classes surfaced at
// the language boundary.
type ErrorKind int

const (
	// TypeErrorKind covers argument-shape violations: missing, extra,
	// duplicate, wrong type.
	TypeErrorKind ErrorKind = iota
	// ValueErrorKind covers malformed keys and containers.
	ValueErrorKind
	// MemoryErrorKind covers allocation failures in the packed path.
	MemoryErrorKind
)

// MissingArgumentError is raised when a required formal remains unbound
// after the merge.
type MissingArgumentError struct {
	Name  string
	Index int
}

func (e *MissingArgumentError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("missing required positional argument at index %d", e.Index)
	}
	return fmt.Sprintf("missing required argument: %q", e.Name)
}

func (e *MissingArgumentError) Kind() ErrorKind { return TypeErrorKind }

// ExtraPositionalError is raised when positional arguments remain after the
// formal list is exhausted and no variadic-positional absorbs them.
type ExtraPositionalError struct {
	Count int
}

func (e *ExtraPositionalError) Error() string {
	return fmt.Sprintf("%d extra positional argument(s)", e.Count)
}

func (e *ExtraPositionalError) Kind() ErrorKind { return TypeErrorKind }

// ExtraKeywordError is raised when a keyword matches no formal and no
// variadic-keyword absorbs it.
type ExtraKeywordError struct {
	Name string
}

func (e *ExtraKeywordError) Error() string {
	return fmt.Sprintf("unexpected keyword argument: %q", e.Name)
}

func (e *ExtraKeywordError) Kind() ErrorKind { return TypeErrorKind }

// ConflictingValueError is raised when the same formal is bound twice, e.g.
// a positional plus a keyword of the same name, or a keyword naming a
// positional-only formal.
type ConflictingValueError struct {
	Name string
}

func (e *ConflictingValueError) Error() string {
	return fmt.Sprintf("conflicting values for argument %q", e.Name)
}

func (e *ConflictingValueError) Kind() ErrorKind { return TypeErrorKind }

// DuplicateArgumentError is raised when a keyword unpack yields a name that
// is already present.
type DuplicateArgumentError struct {
	Name string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("duplicate argument %q in keyword unpack", e.Name)
}

func (e *DuplicateArgumentError) Kind() ErrorKind { return TypeErrorKind }

// BadTypeError is raised when a value fails the per-formal membership test.
type BadTypeError struct {
	Name     string
	Expected string
	Got      string
}

func (e *BadTypeError) Error() string {
	name := e.Name
	if name == "" {
		name = "<positional>"
	}
	return fmt.Sprintf("argument %q expects %s, got %s", name, e.Expected, e.Got)
}

func (e *BadTypeError) Kind() ErrorKind { return TypeErrorKind }

// BadPackError is raised when an argument list is malformed: more than one
// unpack of a category, or an unpack out of place.
type BadPackError struct {
	Reason string
}

func (e *BadPackError) Error() string {
	return fmt.Sprintf("malformed argument pack: %s", e.Reason)
}

func (e *BadPackError) Kind() ErrorKind { return ValueErrorKind }
