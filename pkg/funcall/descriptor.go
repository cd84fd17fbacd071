package funcall

import (
	"fmt"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// BoundMethod couples a function whose first formal is the receiver with a
// concrete receiver value. Native calls see the receiver as the leading
// positional argument; packed calls deliver it through the vector's
// reserved slot, so the merged argument array is never reallocated.
type BoundMethod struct {
	fn       *Function
	self     types.Value
	tail     *sig.Signature
	defaults *call.Defaults
}

// NewBoundMethod binds a receiver. The function must declare at least one
// formal for the receiver slot.
func NewBoundMethod(fn *Function, self types.Value) (*BoundMethod, error) {
	if fn.sig.Empty() {
		return nil, fmt.Errorf("bind %s: signature has no receiver formal", fn.Name())
	}
	tail, err := tailSignature(fn.sig)
	if err != nil {
		return nil, err
	}
	return &BoundMethod{
		fn:       fn,
		self:     self,
		tail:     tail,
		defaults: fn.defaults.Shift(tail, 1),
	}, nil
}

func (m *BoundMethod) Func() *Function   { return m.fn }
func (m *BoundMethod) Self() types.Value { return m.self }

// Call invokes the wrapped function with the receiver prepended.
func (m *BoundMethod) Call(args ...call.Arg) (types.Value, error) {
	return m.fn.Call(append([]call.Arg{call.Pos(m.self)}, args...)...)
}

// Pack merges the call-site arguments against the receiver-less tail of the
// signature and writes the receiver into the reserved slot afterwards.
func (m *BoundMethod) Pack(args ...call.Arg) (*call.Vector, error) {
	v, err := call.Pack(m.tail, call.NoPartials(m.tail), m.defaults, args...)
	if err != nil {
		return nil, err
	}
	return v.PrependSelf(m.self), nil
}

// Vectorcall is the packed entry point with the receiver applied.
func (m *BoundMethod) Vectorcall(argv []types.Value, nargsf uint64, kwnames []string) (types.Value, error) {
	args, err := call.Unpack(argv, nargsf, kwnames)
	if err != nil {
		return nil, err
	}
	return m.Call(args...)
}

// ClassMethod binds the owning type rather than an instance.
type ClassMethod struct {
	method *BoundMethod
}

// NewClassMethod binds a type witness as the receiver.
func NewClassMethod(fn *Function, cls types.Witness) (*ClassMethod, error) {
	m, err := NewBoundMethod(fn, cls)
	if err != nil {
		return nil, err
	}
	return &ClassMethod{method: m}, nil
}

func (c *ClassMethod) Call(args ...call.Arg) (types.Value, error) {
	return c.method.Call(args...)
}

func (c *ClassMethod) Pack(args ...call.Arg) (*call.Vector, error) {
	return c.method.Pack(args...)
}

// StaticMethod suppresses receiver binding entirely.
type StaticMethod struct {
	fn *Function
}

func NewStaticMethod(fn *Function) *StaticMethod { return &StaticMethod{fn: fn} }

func (s *StaticMethod) Call(args ...call.Arg) (types.Value, error) {
	return s.fn.Call(args...)
}

// Property pairs a getter with an optional setter, both receiver-first.
type Property struct {
	getter *Function
	setter *Function
}

func NewProperty(getter, setter *Function) *Property {
	return &Property{getter: getter, setter: setter}
}

// Get reads the property on a receiver.
func (p *Property) Get(self types.Value) (types.Value, error) {
	return p.getter.Call(call.Pos(self))
}

// Set writes the property, failing on read-only properties.
func (p *Property) Set(self, value types.Value) error {
	if p.setter == nil {
		return fmt.Errorf("property %s is read-only", p.getter.Name())
	}
	_, err := p.setter.Call(call.Pos(self), call.Pos(value))
	return err
}

// tailSignature rebuilds a signature without its leading formal.
func tailSignature(s *sig.Signature) (*sig.Signature, error) {
	params := make([]sig.Param, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		p := s.At(i)
		params = append(params, sig.Param{Name: p.Name, Kind: p.Kind, Type: p.Type})
	}
	return sig.New(s.Contract(), params...)
}
