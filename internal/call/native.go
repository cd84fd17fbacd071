package call

import (
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Invocable is the native calling convention: the callee receives one
// resolved value per formal, in declaration order. Variadic-positional
// slots hold a []types.Value; variadic-keyword slots hold a []KV.
type Invocable interface {
	Invoke(args []types.Value) (types.Value, error)
}

// Func adapts a plain Go function to the native convention.
type Func func(args []types.Value) (types.Value, error)

func (f Func) Invoke(args []types.Value) (types.Value, error) { return f(args) }

// Native resolves the three-way merge into a direct invocation of a native
// callee.
func Native(s *sig.Signature, partials *Partials, defaults *Defaults, callee Invocable, args ...Arg) (types.Value, error) {
	out := make([]types.Value, s.Len())
	sink := &nativeSink{out: out}
	if err := Merge(s, partials, defaults, args, sink); err != nil {
		return nil, err
	}
	return callee.Invoke(out)
}

// nativeSink lays resolved values into a formal-indexed slice.
type nativeSink struct {
	out []types.Value
}

func (n *nativeSink) Positional(p *sig.Param, v types.Value) error {
	n.out[p.Index] = v
	return nil
}

func (n *nativeSink) Keyword(p *sig.Param, v types.Value) error {
	n.out[p.Index] = v
	return nil
}

func (n *nativeSink) VarPos(p *sig.Param, vs []types.Value) error {
	n.out[p.Index] = vs
	return nil
}

func (n *nativeSink) VarKw(p *sig.Param, pairs []KV) error {
	n.out[p.Index] = pairs
	return nil
}
