package tst

import (
	"fmt"
	"reflect"
)

// Priority ranks how well a context element satisfies a requested type.
// Higher is better; PriorityNone excludes the element.
type Priority int

const (
	// PriorityNone means the element cannot serve the type at all.
	PriorityNone Priority = iota

	// PriorityCustom is the untyped nil fallback for nilable types.
	PriorityCustom

	// PriorityValue builds a new value by copying the target of a pointer element.
	PriorityValue

	// PriorityPointer takes the address of an embedded field, or of an element
	// whose pointer (but not value) satisfies the requested interface.
	PriorityPointer

	// PriorityReference binds without changing identity: interface
	// satisfaction, identical underlying types, or a promoted embedded field.
	PriorityReference

	// PriorityExactPointer takes the address of an element of the exact pointee type.
	PriorityExactPointer

	// PriorityExact means the element's type is the requested type.
	PriorityExact
)

var priorityNames = [...]string{
	PriorityNone:         "none",
	PriorityCustom:       "custom",
	PriorityValue:        "value",
	PriorityPointer:      "pointer",
	PriorityReference:    "reference",
	PriorityExactPointer: "exact_pointer",
	PriorityExact:        "exact",
}

// String returns the tier name used in traces and scenario files.
func (p Priority) String() string {
	if p < 0 || int(p) >= len(priorityNames) {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority maps a tier name back to its Priority.
func ParsePriority(name string) (Priority, bool) {
	for p, n := range priorityNames {
		if n == name {
			return Priority(p), true
		}
	}
	return PriorityNone, false
}

// castKind says how a matched element is turned into an argument.
type castKind int

const (
	castNone castKind = iota
	castIdentity
	castAddr
	castEmbed
	castEmbedAddr
	castDeref
	castNil
)

// cast is the outcome of classifying one candidate type against a target.
type cast struct {
	priority Priority
	kind     castKind
	path     []int // embedded field index path for castEmbed and castEmbedAddr
}

// Classify returns the priority of a candidate type for a target type.
// A nil candidate stands for an untyped nil element.
//
// The classification depends on types only. A pointer element that turns
// out to be nil when the value is extracted fails at that point.
func Classify(target, candidate reflect.Type) Priority {
	return classify(target, candidate).priority
}

func classify(target, candidate reflect.Type) cast {
	if target == nil {
		return cast{}
	}
	if candidate == nil {
		if nilable(target) {
			return cast{priority: PriorityCustom, kind: castNil}
		}
		return cast{}
	}

	if candidate == target {
		return cast{priority: PriorityExact, kind: castIdentity}
	}
	if target.Kind() == reflect.Pointer && target.Elem() == candidate {
		return cast{priority: PriorityExactPointer, kind: castAddr}
	}
	if candidate.AssignableTo(target) {
		return cast{priority: PriorityReference, kind: castIdentity}
	}
	if path, ok := embeddedPath(candidate, target); ok {
		return cast{priority: PriorityReference, kind: castEmbed, path: path}
	}

	if target.Kind() == reflect.Pointer {
		if path, ok := embeddedPath(candidate, target.Elem()); ok {
			return cast{priority: PriorityPointer, kind: castEmbedAddr, path: path}
		}
	}
	if target.Kind() == reflect.Interface && candidate.Kind() != reflect.Pointer &&
		reflect.PointerTo(candidate).Implements(target) {
		return cast{priority: PriorityPointer, kind: castAddr}
	}

	if candidate.Kind() == reflect.Pointer && candidate.Elem().AssignableTo(target) {
		return cast{priority: PriorityValue, kind: castDeref}
	}

	return cast{}
}

// nilable reports whether the zero value of t is nil.
func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// embeddedPath finds the field of type want promoted through embedded
// (anonymous) struct fields of from, or of *from's struct. It follows Go's
// promotion rule: the shallowest depth wins and two hits at that depth are
// ambiguous, which counts as not found.
func embeddedPath(from, want reflect.Type) ([]int, bool) {
	if from.Kind() == reflect.Pointer {
		from = from.Elem()
	}
	if from.Kind() != reflect.Struct {
		return nil, false
	}

	type node struct {
		t    reflect.Type
		path []int
	}
	level := []node{{t: from}}
	visited := map[reflect.Type]bool{from: true}

	for len(level) > 0 {
		var found []int
		hits := 0
		var next []node
		for _, n := range level {
			for i := 0; i < n.t.NumField(); i++ {
				f := n.t.Field(i)
				if !f.Anonymous || !f.IsExported() {
					continue
				}
				path := append(append([]int(nil), n.path...), i)
				if f.Type == want {
					hits++
					found = path
					continue
				}
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct && !visited[ft] {
					visited[ft] = true
					next = append(next, node{t: ft, path: path})
				}
			}
		}
		if hits == 1 {
			return found, true
		}
		if hits > 1 {
			return nil, false
		}
		level = next
	}
	return nil, false
}

// apply turns a matched slot into a value assignable to target.
// slot is the zero Value for an untyped nil element.
func (k cast) apply(target reflect.Type, slot reflect.Value) (reflect.Value, error) {
	switch k.kind {
	case castIdentity:
		if slot.Type() == target {
			return slot, nil
		}
		out := reflect.New(target).Elem()
		out.Set(slot)
		return out, nil
	case castAddr:
		return slot.Addr(), nil
	case castEmbed:
		f, err := fieldByPath(slot, k.path)
		if err != nil {
			return reflect.Value{}, err
		}
		return f, nil
	case castEmbedAddr:
		f, err := fieldByPath(slot, k.path)
		if err != nil {
			return reflect.Value{}, err
		}
		return f.Addr(), nil
	case castDeref:
		if slot.IsNil() {
			return reflect.Value{}, fmt.Errorf("cannot copy through nil %s", slot.Type())
		}
		elem := slot.Elem()
		out := reflect.New(target).Elem()
		out.Set(elem)
		return out, nil
	case castNil:
		return reflect.Zero(target), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not usable as %s", typeString(slot.Type()), typeString(target))
}

// fieldByPath walks an embedded field path, following pointers.
// Unlike reflect.Value.FieldByIndex it reports nil embedded pointers as errors.
func fieldByPath(v reflect.Value, path []int) (reflect.Value, error) {
	for _, i := range path {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("nil %s on embedded field path", v.Type())
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, nil
}
