package form

import "reflect"

// IsEmpty reports whether a required value is missing. nil, "", empty
// slices, arrays and maps, and nil pointers or interfaces are empty. Booleans
// and numbers never are, so false and 0 satisfy a required field. Pointers
// are followed.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch typed := v.(type) {
	case bool:
		return false
	case string:
		return typed == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
