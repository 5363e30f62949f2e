package harness

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/scenariotools/internal/tst"
)

// NilType is the type name of an untyped nil context value.
const NilType = "nil"

// Registry maps the names used in scenario files to Go types, callables and
// fixtures.
//
// Types decode scenario values: a value of type "quantity" is decoded into a
// fresh value of the registered Go type, so types implementing
// yaml.Unmarshaler can accept symbolic names. Callables are step functions
// run through tst. Fixtures are constructed once per run and placed at the
// end of the root context.
type Registry struct {
	types    map[string]reflect.Type
	calls    map[string]any
	fixtures map[string]func() any
	order    []string // fixture registration order
}

// CallInfo describes a registered callable.
type CallInfo struct {
	Name  string
	Shape tst.Shape
}

// TypeInfo describes a registered value type.
type TypeInfo struct {
	Name   string
	GoType string
}

// NewRegistry creates a registry holding the builtin scalar types
// int, int64, string, bool and float64.
func NewRegistry() *Registry {
	r := &Registry{
		types:    make(map[string]reflect.Type),
		calls:    make(map[string]any),
		fixtures: make(map[string]func() any),
	}
	r.types["int"] = reflect.TypeOf((*int)(nil)).Elem()
	r.types["int64"] = reflect.TypeOf((*int64)(nil)).Elem()
	r.types["string"] = reflect.TypeOf((*string)(nil)).Elem()
	r.types["bool"] = reflect.TypeOf((*bool)(nil)).Elem()
	r.types["float64"] = reflect.TypeOf((*float64)(nil)).Elem()
	return r
}

// RegisterType registers the type of sample under name.
func (r *Registry) RegisterType(name string, sample any) error {
	if name == "" || name == NilType {
		return fmt.Errorf("invalid type name %q", name)
	}
	if sample == nil {
		return fmt.Errorf("type %s: sample must not be nil", name)
	}
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("type %s already registered", name)
	}
	r.types[name] = reflect.TypeOf(sample)
	return nil
}

// RegisterCall registers fn under name. fn must be a callable tst accepts.
func (r *Registry) RegisterCall(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("callable name is required")
	}
	if _, ok := r.calls[name]; ok {
		return fmt.Errorf("callable %s already registered", name)
	}
	if _, err := tst.Inspect(fn); err != nil {
		return fmt.Errorf("callable %s: %w", name, err)
	}
	r.calls[name] = fn
	return nil
}

// RegisterFixture registers a constructor for a value every run starts with.
func (r *Registry) RegisterFixture(name string, fn func() any) error {
	if name == "" || fn == nil {
		return fmt.Errorf("invalid fixture %q", name)
	}
	if _, ok := r.fixtures[name]; ok {
		return fmt.Errorf("fixture %s already registered", name)
	}
	r.fixtures[name] = fn
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the callable registered under name.
func (r *Registry) Lookup(name string) (any, bool) {
	fn, ok := r.calls[name]
	return fn, ok
}

// Calls lists the registered callables sorted by name.
func (r *Registry) Calls() []CallInfo {
	out := make([]CallInfo, 0, len(r.calls))
	for name, fn := range r.calls {
		shape, _ := tst.Inspect(fn) // checked at registration
		out = append(out, CallInfo{Name: name, Shape: shape})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Types lists the registered types sorted by name.
func (r *Registry) Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.types))
	for name, t := range r.types {
		out = append(out, TypeInfo{Name: name, GoType: t.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Fixtures lists fixture names in registration order.
func (r *Registry) Fixtures() []string {
	return append([]string(nil), r.order...)
}

// Decode converts one scenario value to its registered Go type.
func (r *Registry) Decode(v TypedValue) (any, error) {
	if v.Type == NilType {
		return nil, nil
	}
	t, ok := r.types[v.Type]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", v.Type)
	}
	ptr := reflect.New(t)
	if err := v.Value.Decode(ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode %s at line %d: %w", v.Type, v.Value.Line, err)
	}
	return ptr.Elem().Interface(), nil
}

// DecodeAll decodes values in order.
func (r *Registry) DecodeAll(values []TypedValue) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		d, err := r.Decode(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// NewContext builds a root context: values first, then one fresh value per
// fixture in registration order.
func (r *Registry) NewContext(values []TypedValue) (*tst.Context, error) {
	decoded, err := r.DecodeAll(values)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	for _, name := range r.order {
		decoded = append(decoded, r.fixtures[name]())
	}
	return tst.NewContext(decoded...), nil
}

// Check reports every callable and type a scenario names that the registry
// does not know. Values are decoded too, so malformed values are reported
// before anything runs.
func (r *Registry) Check(s *Scenario) error {
	var errs []error
	checkValues := func(at string, values []TypedValue) {
		for i, v := range values {
			if _, err := r.Decode(v); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", at, i, err))
			}
		}
	}

	checkValues("context", s.Context)
	var walk func(path string, steps []Step)
	walk = func(path string, steps []Step) {
		for i, step := range steps {
			at := fmt.Sprintf("%s[%d]", path, i)
			if _, ok := r.calls[step.Call]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown call %q", at, step.Call))
			}
			checkValues(at+".with", step.With)
			walk(at+".steps", step.Steps)
		}
	}
	walk("steps", s.Steps)

	for i, a := range s.Assertions {
		if a.Type == AssertMatchPriority {
			if _, ok := tst.ParsePriority(a.Priority); !ok {
				errs = append(errs, fmt.Errorf("assertions[%d]: unknown priority %q", i, a.Priority))
			}
		}
	}
	return errors.Join(errs...)
}
