package automaton

import (
	"fmt"
	"reflect"
	"strconv"
)

// Identical reports whether a and b are the same state.
//
// Values of different dynamic types are never identical, so 0, "0", int64(0)
// and 0.0 are four distinct states. Comparable values use ==. Maps, slices
// and funcs compare by reference: two maps with equal contents are distinct
// unless they are the same map. Values Go cannot compare at all (structs or
// arrays holding maps or slices) are never identical, not even to themselves.
func Identical(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int:
		y, ok := b.(int)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}

// StateToString renders a state for diagnostics and error messages.
func StateToString(state any) string {
	switch v := state.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}

	rv := reflect.ValueOf(state)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "nil"
	}
	if s, ok := state.(fmt.Stringer); ok {
		return s.String()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(state)
	case reflect.Map, reflect.Slice, reflect.Array:
		return "Array"
	}
	return rv.Type().String()
}

func containsState[S any](states []S, s S) bool {
	for _, candidate := range states {
		if Identical(candidate, s) {
			return true
		}
	}
	return false
}
