package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for v.
//
// Differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats and null are errors
//
// v may be a Value or a plain string, int, int64, bool, []any or
// map[string]any built from those.
func MarshalCanonical(v any) ([]byte, error) {
	val, err := ToValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encode(&buf, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToValue converts plain Go data to a Value, rejecting anything that has no
// canonical form.
func ToValue(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case bool:
		return Bool(val), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
}

// Unmarshal decodes canonical JSON back into a Value.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return fromJSON(raw)
}

func fromJSON(v any) (Value, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are forbidden in canonical JSON: %s", val)
		}
		return Int(n), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	}
	return ToValue(v)
}

func encode(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case String:
		return encodeString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := encode(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

// encodeString writes s NFC normalized, escaping only quote, backslash and
// control characters. U+2028 and U+2029 are written literally.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// emits back into literal characters. An escape preceded by an odd number
// of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') && trailingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func trailingBackslashes(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\\'; i-- {
		n++
	}
	return n
}

// Tracer is implemented by values that choose their own trace rendering.
type Tracer interface {
	TraceValue() Value
}

// Describe renders any value for a trace. Unlike ToValue it never fails:
// floats become their shortest decimal string, nil becomes "<nil>", maps
// with integer keys become objects keyed by the decimal key, and values
// without a structural rendering fall back to fmt's %v. A pointer or map
// reached again while rendering itself becomes "<cycle>", and unsigned
// integers above math.MaxInt64 become decimal strings.
func Describe(v any) Value {
	return describe(v, map[visitKey]bool{})
}

// describe renders v; onPath holds the pointers and maps being rendered
// above it.
func describe(v any, onPath map[visitKey]bool) Value {
	if v == nil {
		return String("<nil>")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return String("<nil>")
	}

	switch val := v.(type) {
	case Tracer:
		return val.TraceValue()
	case Value:
		return val
	case error:
		return String(val.Error())
	case fmt.Stringer:
		return String(val.String())
	}

	switch rv.Kind() {
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return String(strconv.FormatUint(u, 10))
		}
		return Int(int64(u))
	case reflect.Float32:
		return String(strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	case reflect.Float64:
		return String(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.Pointer:
		return visit(rv, onPath, func() Value {
			return describe(rv.Elem().Interface(), onPath)
		})
	case reflect.Slice, reflect.Array:
		arr := make(Array, rv.Len())
		for i := range arr {
			arr[i] = describe(rv.Index(i).Interface(), onPath)
		}
		return arr
	case reflect.Map:
		var key func(reflect.Value) string
		switch rv.Type().Key().Kind() {
		case reflect.String:
			key = reflect.Value.String
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			key = func(k reflect.Value) string { return strconv.FormatInt(k.Int(), 10) }
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			key = func(k reflect.Value) string { return strconv.FormatUint(k.Uint(), 10) }
		default:
			return String(fmt.Sprintf("%v", v))
		}
		return visit(rv, onPath, func() Value {
			obj := make(Object, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				obj[key(iter.Key())] = describe(iter.Value().Interface(), onPath)
			}
			return obj
		})
	case reflect.Struct:
		obj := Object{}
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if !f.IsExported() {
				continue
			}
			obj[f.Name] = describe(rv.Field(i).Interface(), onPath)
		}
		return obj
	}
	return String(fmt.Sprintf("%v", v))
}

// visit renders a pointer or map with render, or "<cycle>" when rv is
// already being rendered further up.
func visit(rv reflect.Value, onPath map[visitKey]bool, render func() Value) Value {
	k := visitKey{addr: rv.Pointer(), typ: rv.Type()}
	if onPath[k] {
		return String("<cycle>")
	}
	onPath[k] = true
	defer delete(onPath, k)
	return render()
}

// visitKey tells apart a struct and its first field, which share an address.
type visitKey struct {
	addr uintptr
	typ  reflect.Type
}
