package tst

import (
	"reflect"
)

// Selection records which context element was chosen for a requested type.
type Selection struct {
	// Target is the requested type.
	Target reflect.Type

	// Index is the position of the chosen element, or -1 for the nil
	// fallback and for the context itself.
	Index int

	// Priority is the tier the element matched at.
	Priority Priority

	cast cast
}

// Match returns the best context element for T.
//
// Candidates are ranked by Priority; ties go to the earliest element. The
// element is returned as-is (or by address, embedded field, or pointee copy,
// depending on its tier). No conversion Go would not apply on assignment is
// ever made.
func Match[T any](c *Context) (T, error) {
	var zero T
	v, _, err := MatchValue(c, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T) // nil interface values come back as the zero T
	return out, nil
}

// MatchValue is the reflective form of Match.
// The returned value always has exactly the target type.
func MatchValue(c *Context, target reflect.Type) (reflect.Value, Selection, error) {
	sel, err := MatchType(c, target)
	if err != nil {
		return reflect.Value{}, sel, err
	}
	v, err := sel.extract(c)
	if err != nil {
		return reflect.Value{}, sel, err
	}
	return v, sel, nil
}

// MatchType selects the element for target without extracting it.
// Scanning is a single pass: the highest tier wins and the lowest index wins
// within a tier.
func MatchType(c *Context, target reflect.Type) (Selection, error) {
	best := Selection{Target: target, Index: -1}
	for i, t := range c.Types() {
		k := classify(target, t)
		if k.priority > best.Priority {
			best = Selection{Target: target, Index: i, Priority: k.priority, cast: k}
		}
	}
	if best.Priority == PriorityNone {
		return best, newMatchError(typeString(target), c)
	}
	return best, nil
}

// matchWithNil is MatchType over the context followed by an untyped nil,
// the lookup used for fixed parameters of a call.
func matchWithNil(c *Context, target reflect.Type) (Selection, error) {
	sel, err := MatchType(c, target)
	if err == nil {
		return sel, nil
	}
	if k := classify(target, nil); k.priority != PriorityNone {
		return Selection{Target: target, Index: -1, Priority: k.priority, cast: k}, nil
	}
	return sel, err
}

// extract produces the argument for a selection made against c.
func (s Selection) extract(c *Context) (reflect.Value, error) {
	var slot reflect.Value
	if s.Index >= 0 {
		slot = c.slots[s.Index]
	}
	v, err := s.cast.apply(s.Target, slot)
	if err != nil {
		return reflect.Value{}, &Error{
			Code:    ErrCodeMatchNotFound,
			Message: err.Error(),
			Target:  typeString(s.Target),
			Param:   -1,
			Context: c.String(),
		}
	}
	if v.Type() != s.Target {
		out := reflect.New(s.Target).Elem()
		out.Set(v)
		v = out
	}
	return v, nil
}

// TargetName returns the requested type's name, e.g. "*riskdata.TestData".
func (s Selection) TargetName() string { return typeString(s.Target) }
