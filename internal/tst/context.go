package tst

import (
	"reflect"
	"strings"
)

// contextType is the parameter type that receives the context itself.
var contextType = reflect.TypeOf((**Context)(nil)).Elem()

// Context is an ordered pool of heterogeneous values used as the argument
// source for matching and dispatch.
//
// Each value is copied into an addressable slot owned by the context, so a
// callable asking for *T can be handed the address of a by-value T element
// and every later callable sees the modification. Pointer elements keep
// pointing at the caller's objects.
//
// Order matters only for tie-breaking. Types need not be unique.
type Context struct {
	slots []reflect.Value
}

// NewContext creates a context holding values in order.
// An untyped nil is kept as a nil element.
func NewContext(values ...any) *Context {
	return &Context{slots: newSlots(values)}
}

func newSlots(values []any) []reflect.Value {
	slots := make([]reflect.Value, len(values))
	for i, v := range values {
		if v == nil {
			continue // zero reflect.Value marks an untyped nil
		}
		rv := reflect.ValueOf(v)
		slot := reflect.New(rv.Type()).Elem()
		slot.Set(rv)
		slots[i] = slot
	}
	return slots
}

// With returns a child context with values placed ahead of the receiver's
// elements. The child shares the receiver's slots, so writes through
// pointers obtained from either are visible to both.
func (c *Context) With(values ...any) *Context {
	if len(values) == 0 {
		return c
	}
	slots := newSlots(values)
	slots = append(slots, c.slots...)
	return &Context{slots: slots}
}

// Len returns the number of elements.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.slots)
}

// Get returns the element at index, 0-based.
// Pointer elements come back as the same pointer; by-value elements as a copy.
func (c *Context) Get(index int) (any, error) {
	if index < 0 || index >= c.Len() {
		return nil, newIndexError(index, c)
	}
	return c.valueAt(index), nil
}

// Get returns the index-th of values.
// It is the one-shot form of NewContext(values...).Get(index).
func Get(index int, values ...any) (any, error) {
	return NewContext(values...).Get(index)
}

// Values returns the elements in order.
func (c *Context) Values() []any {
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.valueAt(i)
	}
	return out
}

// Types returns the element types in order. Untyped nil elements are nil.
func (c *Context) Types() []reflect.Type {
	if c == nil {
		return nil
	}
	out := make([]reflect.Type, len(c.slots))
	for i, slot := range c.slots {
		if slot.IsValid() {
			out[i] = slot.Type()
		}
	}
	return out
}

// String describes the element types, e.g. "(int, *riskdata.TestData, nil)".
func (c *Context) String() string {
	names := make([]string, c.Len())
	for i, t := range c.Types() {
		names[i] = typeString(t)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func (c *Context) valueAt(i int) any {
	slot := c.slots[i]
	if !slot.IsValid() {
		return nil
	}
	return slot.Interface()
}
