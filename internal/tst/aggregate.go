package tst

import (
	"errors"
	"fmt"
)

// Builder is a scenario step that takes its arguments from a context.
// Builders are callables themselves: the *Context parameter receives the
// caller's context, so builders nest inside Aggregate and ForEach.
type Builder func(c *Context) error

// Run invokes the builder with a fresh context holding values.
func (b Builder) Run(values ...any) error {
	return b(NewContext(values...))
}

// Invoker applies callables to a captured context.
type Invoker func(fs ...any) error

// ForEach captures values as a context and returns an Invoker applying
// each callable to it in turn.
func ForEach(values ...any) Invoker {
	return NewContext(values...).ForEach
}

// ForEach calls every f against c, in order. Results are discarded.
//
// All callables are bound before the first one runs, so a match failure in
// any of them leaves every callable uninvoked. The first error returned by
// a callable stops the sequence.
func (c *Context) ForEach(fs ...any) error {
	bindings := make([]*Binding, len(fs))
	for i, f := range fs {
		b, err := Bind(f, c)
		if err != nil {
			return fmt.Errorf("callable %d: %w", i, err)
		}
		bindings[i] = b
	}
	for i, b := range bindings {
		if _, err := b.Invoke(); err != nil {
			return fmt.Errorf("callable %d (%s): %w", i, b.Name(), err)
		}
	}
	return nil
}

// Aggregate combines callables into one Builder that applies each of them,
// in order, to the context it is invoked with.
//
// Shapes are inspected here, at composition time. If any callable is not
// supported the returned Builder fails with that error before invoking
// anything.
func Aggregate(fs ...any) Builder {
	if err := Validate(fs...); err != nil {
		return func(*Context) error { return err }
	}
	return func(c *Context) error {
		return c.ForEach(fs...)
	}
}

// Validate reports every callable among fs whose shape cannot be classified.
func Validate(fs ...any) error {
	var errs []error
	for i, f := range fs {
		if _, err := Inspect(f); err != nil {
			errs = append(errs, fmt.Errorf("callable %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
