package trace

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the values a trace can hold.
// There is no float and no null: both break byte-stable encoding.
type Value interface {
	traceValue()
}

// String is a string value.
type String string

func (String) traceValue() {}

// Int is an integer value.
type Int int64

func (Int) traceValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) traceValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) traceValue() {}

// Object is a string-keyed map of values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) traceValue() {}

// SortedKeys returns keys in canonical order (UTF-16 code units), which
// differs from Go's byte order for characters outside the BMP.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
