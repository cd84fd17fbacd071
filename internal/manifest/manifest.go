// Package manifest loads signature descriptor files. A funcall.yaml declares
// functions as formal parameter lists — names, binding kinds, type
// annotations and default values — from which runtime signatures are built.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/pytypes"
	"github.com/funvibe/funcall/internal/sig"
)

// Manifest is the top-level funcall.yaml structure.
type Manifest struct {
	Functions []FuncSpec `yaml:"functions"`
}

// FuncSpec declares one function: its base parameter list and optional
// overload parameter lists registered against it.
type FuncSpec struct {
	Name   string      `yaml:"name"`
	Params []ParamSpec `yaml:"params,omitempty"`

	// Overloads are alternative parameter lists, each of which must be
	// compatible with the base list.
	Overloads [][]ParamSpec `yaml:"overloads,omitempty"`
}

// ParamSpec declares one formal parameter.
type ParamSpec struct {
	// Name may be omitted only for positional-only formals.
	Name string `yaml:"name,omitempty"`

	// Kind selects the binding mode. Defaults to positional-or-keyword.
	// One of: positional-only, positional-or-keyword, keyword-only,
	// variadic-positional, variadic-keyword.
	Kind string `yaml:"kind,omitempty"`

	// Type names a builtin annotation: int, float, str, bool, none.
	// Empty means unannotated.
	Type string `yaml:"type,omitempty"`

	// Default marks the formal optional and captures its default value.
	Default yaml.Node `yaml:"default,omitempty"`
}

var kindNames = map[string]kind.Kind{
	"":                      kind.PosOrKw,
	"positional-or-keyword": kind.PosOrKw,
	"positional-only":       kind.PosOnly,
	"keyword-only":          kind.KwOnly,
	"variadic-positional":   kind.VarPos,
	"variadic-keyword":      kind.VarKw,
}

var typeNames = map[string]*pytypes.TCon{
	"int":   pytypes.IntType,
	"float": pytypes.FloatType,
	"str":   pytypes.StrType,
	"bool":  pytypes.BoolType,
	"none":  pytypes.NoneType,
}

// Load reads and parses a funcall.yaml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest content from bytes. The path argument is used only
// for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// Find searches for funcall.yaml starting from dir and walking up to parent
// directories. Returns an empty string when none is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{"funcall.yaml", "funcall.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (m *Manifest) validate(path string) error {
	if len(m.Functions) == 0 {
		return fmt.Errorf("%s: no functions defined", path)
	}
	seen := make(map[string]bool)
	for i, fn := range m.Functions {
		if fn.Name == "" {
			return fmt.Errorf("%s: functions[%d]: name is required", path, i)
		}
		if seen[fn.Name] {
			return fmt.Errorf("%s: functions[%d]: duplicate function %q", path, i, fn.Name)
		}
		seen[fn.Name] = true
		if err := validateParams(path, fn.Name, fn.Params); err != nil {
			return err
		}
		for j, ov := range fn.Overloads {
			if err := validateParams(path, fmt.Sprintf("%s overload %d", fn.Name, j), ov); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateParams(path, owner string, params []ParamSpec) error {
	for i, p := range params {
		if _, ok := kindNames[strings.ToLower(p.Kind)]; !ok {
			return fmt.Errorf("%s: %s params[%d]: unknown kind %q", path, owner, i, p.Kind)
		}
		if p.Type != "" {
			if _, ok := typeNames[strings.ToLower(p.Type)]; !ok {
				return fmt.Errorf("%s: %s params[%d]: unknown type %q", path, owner, i, p.Type)
			}
		}
	}
	return nil
}

// Function finds a declared function by name.
func (m *Manifest) Function(name string) (*FuncSpec, bool) {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i], true
		}
	}
	return nil, false
}

// Signature builds the runtime signature for the base parameter list.
func (f *FuncSpec) Signature(host *pytypes.Host) (*sig.Signature, error) {
	return buildSignature(host, f.Params)
}

// OverloadSignatures builds one signature per declared overload list.
func (f *FuncSpec) OverloadSignatures(host *pytypes.Host) ([]*sig.Signature, error) {
	out := make([]*sig.Signature, 0, len(f.Overloads))
	for i, ov := range f.Overloads {
		s, err := buildSignature(host, ov)
		if err != nil {
			return nil, fmt.Errorf("overload %d of %s: %w", i, f.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// DefaultArgs converts the declared default values into the keyword
// arguments a defaults container is initialized with.
func (f *FuncSpec) DefaultArgs() ([]call.Arg, error) {
	var args []call.Arg
	for i, p := range f.Params {
		if p.Default.IsZero() {
			continue
		}
		v, err := decodeValue(&f.Params[i].Default)
		if err != nil {
			return nil, fmt.Errorf("default for %s param %d: %w", f.Name, i, err)
		}
		if p.Name == "" {
			args = append(args, call.Pos(v))
			continue
		}
		args = append(args, call.Kw(p.Name, v))
	}
	return args, nil
}

func buildSignature(host *pytypes.Host, specs []ParamSpec) (*sig.Signature, error) {
	params := make([]sig.Param, 0, len(specs))
	for _, p := range specs {
		k := kindNames[strings.ToLower(p.Kind)]
		if !p.Default.IsZero() {
			k |= kind.Opt
		}
		param := sig.Param{Name: p.Name, Kind: k}
		if p.Type != "" {
			param.Type = typeNames[strings.ToLower(p.Type)]
		}
		params = append(params, param)
	}
	return sig.New(host, params...)
}

// decodeValue converts a yaml scalar into a tagged reference-host object.
func decodeValue(node *yaml.Node) (*pytypes.Object, error) {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case nil:
		return pytypes.None(), nil
	case bool:
		return pytypes.Bool(v), nil
	case int:
		return pytypes.Int(int64(v)), nil
	case int64:
		return pytypes.Int(v), nil
	case float64:
		return pytypes.Float(v), nil
	case string:
		return pytypes.Str(v), nil
	default:
		return nil, fmt.Errorf("unsupported default value %v (%T)", raw, raw)
	}
}
