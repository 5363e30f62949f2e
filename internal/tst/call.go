package tst

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Binding is a callable whose parameters have been resolved against a
// context but not yet extracted. Creating a Binding is the validation pass:
// every MATCH_NOT_FOUND and UNSUPPORTED_CALLABLE is reported by Bind, before
// anything runs.
type Binding struct {
	name     string
	fn       reflect.Value // set for func values
	callable Callable      // set for declared callables
	shape    Shape
	ctx      *Context
	params   []param
}

// param is the resolved plan for one fixed parameter.
type param struct {
	sel  Selection
	self bool // receives the context itself
	none bool // positional parameter bound to an untyped nil element
}

// Bind resolves f's parameters against c.
//
// Each fixed parameter is matched independently against the full context
// followed by an untyped nil, so the same element may serve several
// parameters and nilable parameters fall back to nil. A *Context parameter
// receives c itself. A catch-all tail will receive every element of c, in
// order.
func Bind(f any, c *Context) (*Binding, error) {
	shape, err := Inspect(f)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = NewContext()
	}

	b := &Binding{
		name:  typeString(reflect.TypeOf(f)),
		shape: shape,
		ctx:   c,
	}
	if cl, ok := f.(Callable); ok {
		b.callable = cl
	} else {
		b.fn = reflect.ValueOf(f)
	}

	fixed, err := resolveFixed(b.name, shape, c)
	if err != nil {
		return nil, err
	}

	b.params = make([]param, len(fixed))
	for i, t := range fixed {
		switch {
		case t == nil:
			b.params[i] = param{none: true, sel: Selection{Index: -1, Priority: PriorityCustom}}
		case t == contextType:
			b.params[i] = param{self: true, sel: Selection{Target: t, Index: -1, Priority: PriorityExact}}
		default:
			sel, err := matchWithNil(c, t)
			if err != nil {
				var te *Error
				if errors.As(err, &te) {
					te.Callable = b.name
					te.Param = i
				}
				return nil, err
			}
			b.params[i] = param{sel: sel}
		}
	}

	if shape.CatchAll && shape.Elem != nil {
		if err := checkCatchAll(b.name, len(fixed), shape.Elem, c); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// checkCatchAll verifies every context element can be passed as elem.
func checkCatchAll(callable string, pos int, elem reflect.Type, c *Context) error {
	for i, t := range c.Types() {
		if t == nil && nilable(elem) {
			continue
		}
		if t != nil && t.AssignableTo(elem) {
			continue
		}
		return &Error{
			Code: ErrCodeMatchNotFound,
			Message: fmt.Sprintf("context element %d (%s) cannot be passed to ...%s",
				i, typeString(t), typeString(elem)),
			Target:   typeString(elem),
			Callable: callable,
			Param:    pos,
			Context:  c.String(),
		}
	}
	return nil
}

// Shape returns the callable's shape.
func (b *Binding) Shape() Shape { return b.shape }

// Name returns the callable's type name.
func (b *Binding) Name() string { return b.name }

// Context returns the context the binding was resolved against.
func (b *Binding) Context() *Context { return b.ctx }

// Selections returns the selection made for each fixed parameter.
func (b *Binding) Selections() []Selection {
	out := make([]Selection, len(b.params))
	for i, p := range b.params {
		out[i] = p.sel
	}
	return out
}

// Invoke extracts the selected arguments and calls the callable once.
//
// Arguments are extracted at this point, so values written through pointers
// by earlier callables are seen. If extraction fails (a nil pointer on the
// way to the selected value) the callable is not called.
//
// A trailing error result is returned as the error; the other results are
// returned in order.
func (b *Binding) Invoke() ([]any, error) {
	args := make([]reflect.Value, 0, len(b.params)+b.ctx.Len())
	for i, p := range b.params {
		switch {
		case p.self:
			args = append(args, reflect.ValueOf(b.ctx))
		case p.none:
			args = append(args, reflect.Value{})
		default:
			v, err := p.sel.extract(b.ctx)
			if err != nil {
				var te *Error
				if errors.As(err, &te) {
					te.Callable = b.name
					te.Param = i
				}
				return nil, err
			}
			args = append(args, v)
		}
	}

	if b.callable != nil {
		return b.invokeDeclared(args)
	}
	return b.invokeFunc(args)
}

func (b *Binding) invokeDeclared(fixed []reflect.Value) ([]any, error) {
	args := make([]any, 0, len(fixed)+b.ctx.Len())
	for _, v := range fixed {
		if !v.IsValid() {
			args = append(args, nil)
			continue
		}
		args = append(args, v.Interface())
	}
	if b.shape.CatchAll {
		args = append(args, b.ctx.Values()...)
	}
	return b.callable.Invoke(args)
}

func (b *Binding) invokeFunc(args []reflect.Value) ([]any, error) {
	ft := b.fn.Type()
	for i, v := range args {
		if !v.IsValid() {
			args[i] = reflect.Zero(ft.In(i))
		}
	}
	if b.shape.CatchAll {
		for _, slot := range b.ctx.slots {
			if !slot.IsValid() {
				slot = reflect.Zero(b.shape.Elem)
			}
			args = append(args, slot)
		}
	}

	outs := b.fn.Call(args)

	var err error
	if n := len(outs); n > 0 && ft.Out(n-1) == errorType {
		if e := outs[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		outs = outs[:n-1]
	}
	results := make([]any, len(outs))
	for i, o := range outs {
		results[i] = o.Interface()
	}
	return results, err
}

// Call binds f against c and invokes it.
func Call(f any, c *Context) ([]any, error) {
	b, err := Bind(f, c)
	if err != nil {
		return nil, err
	}
	return b.Invoke()
}

// CallAs calls f and returns its first result as R.
// A callable without results, or whose first result is not an R, yields
// the zero R.
func CallAs[R any](f any, c *Context) (R, error) {
	var zero R
	results, err := Call(f, c)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, nil
	}
	r, _ := results[0].(R)
	return r, nil
}
