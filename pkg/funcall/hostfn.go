package funcall

import (
	"fmt"
	"reflect"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/pytypes"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap adapts a plain Go function into a Function over the reference host.
// Each Go parameter becomes a positional-or-keyword formal annotated with
// the witness for its Go type; a variadic Go parameter becomes a
// variadic-positional formal. Parameter names default to arg0, arg1, …
// when not supplied.
func Wrap(host *pytypes.Host, name string, fn interface{}, paramNames ...string) (*Function, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrap %s: not a function", name)
	}
	t := v.Type()

	numIn := t.NumIn()
	params := make([]sig.Param, 0, numIn)
	for i := 0; i < numIn; i++ {
		pname := fmt.Sprintf("arg%d", i)
		if i < len(paramNames) {
			pname = paramNames[i]
		}
		in := t.In(i)
		k := kind.PosOrKw
		if t.IsVariadic() && i == numIn-1 {
			k = kind.VarPos
			in = in.Elem()
		}
		params = append(params, sig.Param{Name: pname, Kind: k, Type: witnessFor(in)})
	}
	s, err := sig.New(host, params...)
	if err != nil {
		return nil, err
	}

	numOut := t.NumOut()
	returnsErr := numOut > 0 && t.Out(numOut-1) == errType

	invoke := func(args []types.Value) (types.Value, error) {
		in, err := reflectArgs(t, args)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", name, err)
		}
		results := v.Call(in)
		if returnsErr {
			if e := results[numOut-1]; !e.IsNil() {
				return nil, e.Interface().(error)
			}
			results = results[:numOut-1]
		}
		switch len(results) {
		case 0:
			return pytypes.None(), nil
		case 1:
			return toObject(results[0].Interface()), nil
		default:
			out := make([]types.Value, len(results))
			for i, r := range results {
				out[i] = toObject(r.Interface())
			}
			return out, nil
		}
	}
	return Def(name, s, invoke)
}

// reflectArgs converts resolved call values back to the Go parameter types.
// The variadic-positional slot arrives as a []types.Value and is spread.
func reflectArgs(t reflect.Type, args []types.Value) ([]reflect.Value, error) {
	numIn := t.NumIn()
	in := make([]reflect.Value, 0, len(args))
	for i, raw := range args {
		if t.IsVariadic() && i == numIn-1 {
			elem := t.In(i).Elem()
			vs, _ := raw.([]types.Value)
			for j, v := range vs {
				rv, err := fromValue(v, elem)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i+j, err)
				}
				in = append(in, rv)
			}
			continue
		}
		rv, err := fromValue(raw, t.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, rv)
	}
	return in, nil
}

// witnessFor maps a Go type to a reference-host witness. Types without a
// builtin counterpart stay unannotated and flow through untouched.
func witnessFor(t reflect.Type) types.Witness {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return pytypes.IntType
	case reflect.Float32, reflect.Float64:
		return pytypes.FloatType
	case reflect.String:
		return pytypes.StrType
	case reflect.Bool:
		return pytypes.BoolType
	default:
		return nil
	}
}

// toObject converts a Go value to a reference-host object. Values that are
// already objects pass through.
func toObject(val interface{}) types.Value {
	if val == nil {
		return pytypes.None()
	}
	if obj, ok := val.(*pytypes.Object); ok {
		return obj
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return pytypes.Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return pytypes.Int(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return pytypes.Float(v.Float())
	case reflect.String:
		return pytypes.Str(v.String())
	case reflect.Bool:
		return pytypes.Bool(v.Bool())
	default:
		return val
	}
}

// fromValue converts a reference-host object (or raw value) to the Go
// parameter type.
func fromValue(val types.Value, target reflect.Type) (reflect.Value, error) {
	if obj, ok := val.(*pytypes.Object); ok {
		val = obj.Value
		if obj.Type == pytypes.NoneType {
			val = nil
		}
	}
	if val == nil {
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("nil value for %s parameter", target)
	}
	v := reflect.ValueOf(val)
	if v.Type().AssignableTo(target) {
		return v, nil
	}
	if v.Type().ConvertibleTo(target) {
		return v.Convert(target), nil
	}
	return reflect.Value{}, &call.BadTypeError{
		Expected: target.String(),
		Got:      v.Type().String(),
	}
}
