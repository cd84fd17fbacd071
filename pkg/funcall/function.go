// Package funcall is the embedding API: Function values tie a signature,
// its defaults and partials, and an overload set into a single callable
// object, with both a native and a packed calling convention.
package funcall

import (
	"github.com/google/uuid"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/overload"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Function is a callable with a fixed signature. Binding produces a new
// Function that shares the original's overload set; overloads are themselves
// Functions registered against the base signature.
type Function struct {
	id       uuid.UUID
	name     string
	sig      *sig.Signature
	defaults *call.Defaults
	partials *call.Partials
	callee   call.Invocable
	trie     *overload.Trie
}

// Def creates a function. Trailing arguments initialize the defaults
// container: one value per optional formal, validated against the formal's
// declared type.
func Def(name string, s *sig.Signature, fn call.Func, defaultArgs ...call.Arg) (*Function, error) {
	d, err := call.NewDefaults(s, defaultArgs...)
	if err != nil {
		return nil, err
	}
	return &Function{
		id:       uuid.New(),
		name:     name,
		sig:      s,
		defaults: d,
		partials: call.NoPartials(s),
		callee:   fn,
		trie:     overload.NewTrie(s),
	}, nil
}

// MustDef is Def for statically-known definitions (tests, builtins).
func MustDef(name string, s *sig.Signature, fn call.Func, defaultArgs ...call.Arg) *Function {
	f, err := Def(name, s, fn, defaultArgs...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Function) ID() uuid.UUID            { return f.id }
func (f *Function) Name() string             { return f.name }
func (f *Function) Signature() *sig.Signature { return f.sig }
func (f *Function) Defaults() *call.Defaults { return f.defaults }
func (f *Function) Partials() *call.Partials { return f.partials }

// String renders the function the way its definition would read.
func (f *Function) String() string { return f.name + f.sig.String() }

// Bind returns a new function with the given arguments pre-applied. The
// result shares the receiver's defaults and overload set; the receiver is
// unchanged.
func (f *Function) Bind(args ...call.Arg) (*Function, error) {
	p, err := f.partials.Extend(args...)
	if err != nil {
		return nil, err
	}
	return &Function{
		id:       uuid.New(),
		name:     f.name,
		sig:      f.sig,
		defaults: f.defaults,
		partials: p,
		callee:   f.callee,
		trie:     f.trie,
	}, nil
}

// Call merges the partial prefix, the call-site arguments and the defaults,
// dispatches through the overload set when one matches, and invokes the
// winning callee natively.
func (f *Function) Call(args ...call.Arg) (types.Value, error) {
	if f.trie.Len() > 0 {
		impl, err := f.Resolve(args...)
		if err != nil {
			return nil, err
		}
		if impl != f {
			return call.Native(impl.sig, call.NoPartials(impl.sig), impl.defaults,
				impl.callee, f.withPartials(args)...)
		}
	}
	return call.Native(f.sig, f.partials, f.defaults, f.callee, args...)
}

// Pack runs the same merge as Call but produces a packed argument vector for
// a foreign-convention callee instead of invoking anything.
func (f *Function) Pack(args ...call.Arg) (*call.Vector, error) {
	return call.Pack(f.sig, f.partials, f.defaults, args...)
}

// Vectorcall is the packed entry point: a flat value array, a flagged
// positional count, and the keyword-name tail.
func (f *Function) Vectorcall(argv []types.Value, nargsf uint64, kwnames []string) (types.Value, error) {
	args, err := call.Unpack(argv, nargsf, kwnames)
	if err != nil {
		return nil, err
	}
	return f.Call(args...)
}

// Overload registers an alternative implementation reachable when the
// observed argument types match its signature more specifically than any
// earlier registration. The returned Function is the registration handle
// for Remove; it is also independently callable.
func (f *Function) Overload(s *sig.Signature, fn call.Func, defaultArgs ...call.Arg) (*Function, error) {
	impl, err := Def(f.name, s, fn, defaultArgs...)
	if err != nil {
		return nil, err
	}
	if err := f.trie.Insert(s, impl); err != nil {
		return nil, err
	}
	return impl, nil
}

// Remove unregisters a previously added overload.
func (f *Function) Remove(impl *Function) error {
	return f.trie.Remove(impl)
}

// Clear unregisters every overload.
func (f *Function) Clear() { f.trie.Clear() }

// Flush empties the overload resolution cache without touching the set.
func (f *Function) Flush() { f.trie.Flush() }

// Overloads lists the registered implementations in insertion order.
func (f *Function) Overloads() []*Function {
	entries := f.trie.Entries()
	out := make([]*Function, len(entries))
	for i, e := range entries {
		out[i] = e.Callee().(*Function)
	}
	return out
}

// Key reifies the overload key a call with these arguments would search
// with, including the partial prefix.
func (f *Function) Key(args ...call.Arg) (*overload.Key, error) {
	return overload.NewKey(f.sig, f.partials, args...)
}

// Resolve reports which implementation a call with these arguments would
// invoke: a registered overload, or the receiver itself when none matches.
func (f *Function) Resolve(args ...call.Arg) (*Function, error) {
	key, err := f.Key(args...)
	if err != nil {
		return nil, err
	}
	entry, err := f.trie.Resolve(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return f, nil
	}
	return entry.Callee().(*Function), nil
}

// withPartials replays the receiver's partial prefix as explicit call-site
// arguments so an overload with its own signature can absorb them.
func (f *Function) withPartials(args []call.Arg) []call.Arg {
	records := f.partials.Records()
	if len(records) == 0 {
		return args
	}
	out := make([]call.Arg, 0, len(records)+len(args))
	var kws []call.Arg
	for _, r := range records {
		if r.Name == "" {
			out = append(out, call.Pos(r.Value))
		} else {
			kws = append(kws, call.Kw(r.Name, r.Value))
		}
	}
	out = append(out, args...)
	return append(out, kws...)
}
