package tst

import (
	"reflect"
	"strings"
)

// Shape describes how a callable takes its arguments from a context.
type Shape struct {
	// Fixed lists the leading parameters, each matched by type.
	//
	// A nil entry is positional: the k-th positional parameter takes the
	// type of the k-th context element and is then matched by that type.
	Fixed []reflect.Type

	// CatchAll reports whether the whole context, in order, follows the
	// fixed parameters.
	CatchAll bool

	// Elem is the element type of a catch-all tail. It is nil for declared
	// callables, whose tail accepts anything.
	Elem reflect.Type
}

// String renders the shape like a parameter list, e.g. "(int, _, ...any)".
func (s Shape) String() string {
	parts := make([]string, 0, len(s.Fixed)+1)
	for _, t := range s.Fixed {
		if t == nil {
			parts = append(parts, "_")
			continue
		}
		parts = append(parts, typeString(t))
	}
	if s.CatchAll {
		elem := "any"
		if s.Elem != nil {
			elem = typeString(s.Elem)
		}
		parts = append(parts, "..."+elem)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Generic reports whether the callable takes nothing but the whole context.
func (s Shape) Generic() bool {
	return s.CatchAll && len(s.Fixed) == 0
}

// Callable is a function object that declares its own shape instead of
// having it read from a func type.
//
// Invoke receives the matched fixed arguments followed, when the shape has
// a catch-all, by every context element.
type Callable interface {
	Shape() Shape
	Invoke(args []any) ([]any, error)
}

// Declare wraps fn as a Callable with the given shape.
func Declare(shape Shape, fn func(args []any) ([]any, error)) Callable {
	return &declared{shape: shape, fn: fn}
}

type declared struct {
	shape Shape
	fn    func(args []any) ([]any, error)
}

func (d *declared) Shape() Shape                      { return d.shape }
func (d *declared) Invoke(args []any) ([]any, error) { return d.fn(args) }

// Inspect classifies f and returns its shape.
//
// Supported callables:
//   - func values: parameters are the fixed part, a variadic tail is the
//     catch-all. func(...any) is fully generic.
//   - Callable implementations: the declared shape.
//
// Anything else fails with UNSUPPORTED_CALLABLE.
func Inspect(f any) (Shape, error) {
	if f == nil {
		return Shape{}, newUnsupportedError("nil", "nil is not callable")
	}
	if c, ok := f.(Callable); ok {
		return c.Shape(), nil
	}

	t := reflect.TypeOf(f)
	if t.Kind() != reflect.Func {
		return Shape{}, newUnsupportedError(typeString(t), "%s is neither a func nor a Callable", typeString(t))
	}
	if reflect.ValueOf(f).IsNil() {
		return Shape{}, newUnsupportedError(typeString(t), "nil func is not callable")
	}

	n := t.NumIn()
	shape := Shape{}
	if t.IsVariadic() {
		shape.CatchAll = true
		shape.Elem = t.In(n - 1).Elem()
		n--
	}
	shape.Fixed = make([]reflect.Type, n)
	for i := 0; i < n; i++ {
		shape.Fixed[i] = t.In(i)
	}
	return shape, nil
}

// resolveFixed replaces positional entries with the types of leading
// context elements. It fails when the context is too short.
func resolveFixed(callable string, shape Shape, c *Context) ([]reflect.Type, error) {
	fixed := make([]reflect.Type, len(shape.Fixed))
	types := c.Types()
	positional := 0
	for i, t := range shape.Fixed {
		if t != nil {
			fixed[i] = t
			continue
		}
		if positional >= len(types) {
			return nil, newUnsupportedError(callable,
				"positional parameter %d needs context element %d, context has %d", i, positional, len(types))
		}
		fixed[i] = types[positional]
		positional++
	}
	return fixed, nil
}
