package tst

import "reflect"

// TypeName returns a readable name for T, e.g. "*riskdata.Account" or
// "func(int, ...interface {}) error".
//
// Names come from reflect and are stable for a given build. They carry the
// package name, not the import path, so two packages with the same name
// can produce the same string.
func TypeName[T any]() string {
	return typeString(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeNameOf returns the name of v's dynamic type, or "nil" for an untyped nil.
func TypeNameOf(v any) string {
	return typeString(reflect.TypeOf(v))
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
