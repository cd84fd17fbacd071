// Package types defines the contract between the call engine and the host
// type system. The engine never hard-codes a runtime's notion of types;
// instead the hosting layer supplies witnesses and the two predicates below.
package types

import "sync"

// Value is an opaque runtime value flowing through the engine. The engine
// only ever inspects values through a Contract.
type Value = any

// Witness is an opaque, comparable handle for a runtime type. Two witnesses
// obtained from the same host must compare equal iff they denote the same
// type.
type Witness interface {
	// TypeName renders the type for diagnostics.
	TypeName() string
}

// Contract is the two-callback contract the hosting layer fills in.
type Contract interface {
	// TypeOf returns the witness for a value's runtime type.
	TypeOf(v Value) Witness

	// IsInstance reports whether v is a member of the type t denotes.
	IsInstance(v Value, t Witness) bool

	// IsSubtype reports whether sub is a (non-strict) subtype of super.
	IsSubtype(sub, super Witness) bool
}

// Releaser is an optional extension of Contract for hosts whose values are
// reference counted. The engine retains values it writes into a packed
// argument array and releases them on every exit path, including unwind.
type Releaser interface {
	Retain(v Value)
	Release(v Value)
}

// Registry assigns stable uint64 identities to witnesses so that hashes can
// incorporate a type without depending on host pointer layouts. Identities
// are monotonically increasing and never reused. Safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	ids  map[Witness]uint64
	next uint64
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[Witness]uint64), next: 1}
}

// ID returns the identity for w, assigning one on first sight.
func (r *Registry) ID(w Witness) uint64 {
	if w == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[w]; ok {
		return id
	}
	id := r.next
	r.next++
	r.ids[w] = id
	return id
}

// Len reports how many distinct witnesses have been seen.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
