package tether

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// truthy reports whether v counts as present: nil, zero values and pointers
// to zero values are falsy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return err != nil || f != 0
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return !rv.IsZero()
}

// positive reports whether an identifying key marks a persisted record.
// Numeric keys must be greater than zero; other keys must be truthy.
func positive(v any) bool {
	if !truthy(v) {
		return false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return err == nil && f > 0
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() > 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() > 0
	}
	return true
}

// formatValue renders a scalar for URLs and form fields.
func formatValue(v any) string {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprint(rv.Interface())
}

// assign stores v in dst, converting where the conversion is lossless.
// Anything else is re-decoded through JSON so nested maps bind to structs.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}

	src := reflect.ValueOf(v)
	dt := dst.Type()

	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}

	// T into *T
	if dt.Kind() == reflect.Pointer {
		elem := reflect.New(dt.Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if n, ok := v.(json.Number); ok && isNumber(dt.Kind()) {
		return assignNumber(dst, n)
	}

	if ok, err := convertNumber(dst, src); ok {
		return err
	}

	if src.Kind() == reflect.String && dt.Kind() == reflect.String {
		dst.SetString(src.String())
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	out := reflect.New(dt)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return err
	}
	dst.Set(out.Elem())
	return nil
}

// assignNumber binds a decoded JSON number. Unsigned destinations parse
// the full uint64 range; floats are the last resort.
func assignNumber(dst reflect.Value, n json.Number) error {
	if isUint(dst.Kind()) {
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return assign(dst, u)
		}
	}
	if i, err := n.Int64(); err == nil {
		return assign(dst, i)
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	return assign(dst, f)
}

// convertNumber handles numeric to numeric conversion. The first result is
// false when either side is not numeric. Sources are range checked before
// conversion so out of range values fail instead of wrapping.
func convertNumber(dst, src reflect.Value) (bool, error) {
	if !isNumber(src.Kind()) || !isNumber(dst.Kind()) {
		return false, nil
	}

	switch {
	case isUint(dst.Kind()):
		var n uint64
		switch {
		case isFloat(src.Kind()):
			f := src.Float()
			if f < 0 || f != math.Trunc(f) {
				return true, fmt.Errorf("%v is not an unsigned integer", f)
			}
			if f >= math.MaxUint64+1 {
				return true, fmt.Errorf("%v overflows %s", f, dst.Type())
			}
			n = uint64(f)
		case isUint(src.Kind()):
			n = src.Uint()
		default:
			if src.Int() < 0 {
				return true, fmt.Errorf("%v is negative", src.Int())
			}
			n = uint64(src.Int())
		}
		if dst.OverflowUint(n) {
			return true, fmt.Errorf("%v overflows %s", n, dst.Type())
		}
		dst.SetUint(n)
	case isFloat(dst.Kind()):
		var f float64
		switch {
		case isFloat(src.Kind()):
			f = src.Float()
		case isUint(src.Kind()):
			f = float64(src.Uint())
		default:
			f = float64(src.Int())
		}
		if dst.OverflowFloat(f) {
			return true, fmt.Errorf("%v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
	default:
		var n int64
		switch {
		case isFloat(src.Kind()):
			f := src.Float()
			if f != math.Trunc(f) {
				return true, fmt.Errorf("%v is not an integer", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64+1 {
				return true, fmt.Errorf("%v overflows %s", f, dst.Type())
			}
			n = int64(f)
		case isUint(src.Kind()):
			u := src.Uint()
			if u > math.MaxInt64 {
				return true, fmt.Errorf("%v overflows %s", u, dst.Type())
			}
			n = int64(u)
		default:
			n = src.Int()
		}
		if dst.OverflowInt(n) {
			return true, fmt.Errorf("%v overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	}
	return true, nil
}

func isNumber(k reflect.Kind) bool {
	return isFloat(k) || isUint(k) || (k >= reflect.Int && k <= reflect.Int64)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}
