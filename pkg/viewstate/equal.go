package viewstate

import (
	"math"
	"reflect"
)

// Equal reports whether a and b are the same value. Maps compare by key set
// and values, lists compare element-wise in order, and numbers compare by
// value across numeric kinds. Typed slices and maps (e.g. []string) are
// compared by their elements, so an extracted []string equals the []any a
// decoder produces for it.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bl, ok := asList(b)
		if !ok || len(av) != len(bl) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bl[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bm, ok := asMap(b)
		if !ok || len(av) != len(bm) {
			return false
		}
		for k, x := range av {
			y, ok := bm[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	}

	if al, ok := asList(a); ok {
		return Equal(al, b)
	}
	if am, ok := asMap(a); ok {
		return Equal(am, b)
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// asList views slices of any element type as []any.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMap views string-keyed maps of any value type as map[string]any.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if vs, ok := v.(ViewState); ok {
		return vs, true
	}
	if dt, ok := v.(DefaultsTable); ok {
		return dt, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Truthy reports whether v would be considered set by a JavaScript-style
// truthiness check: nil, false, "", 0 and NaN are falsy, everything else
// (including empty lists and maps) is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return false
	}
	return true
}

// Empty reports whether v holds nothing: nil, an empty string, list or map.
// Numbers and booleans carry no entries and are empty too.
func Empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return true
}
