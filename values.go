package modelbind

import "reflect"

// AsStringMap normalizes a raw decoded value into a string-keyed mapping.
// It accepts the shapes a transport hand-off can produce: map[string]any and
// *Map.
func AsStringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case *Map:
		if t == nil {
			return nil, false
		}
		out := make(map[string]any, t.Len())
		t.Range(func(k string, val any) bool {
			out[k] = val
			return true
		})
		return out, true
	}
	return nil, false
}

// AsSlice normalizes a raw decoded value into []any. Typed slices are
// unpacked via reflection so that collaborator results ([]Instance and the
// like) pass through the same sequence-handling paths as decoded JSON
// arrays.
func AsSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []Instance:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = it
		}
		return out, true
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
