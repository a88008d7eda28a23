package executor

import (
	"cmp"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// compareValues orders two non-null values. ok is false when the values cannot be ordered.
func compareValues(a, b reflect.Value) (int, bool) {
	switch {
	case a.Type() == timeType && b.Type() == timeType:
		return a.Interface().(time.Time).Compare(b.Interface().(time.Time)), true
	case a.Type() == decimalType || b.Type() == decimalType:
		x, okA := asDecimal(a)
		y, okB := asDecimal(b)
		if !okA || !okB {
			return 0, false
		}
		return x.Cmp(y), true
	}

	switch {
	case isInt(a) && isInt(b):
		return cmp.Compare(a.Int(), b.Int()), true
	case isUint(a) && isUint(b):
		return cmp.Compare(a.Uint(), b.Uint()), true
	case isNumber(a) && isNumber(b):
		return cmp.Compare(asFloat(a), asFloat(b)), true
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return strings.Compare(a.String(), b.String()), true
	case a.Kind() == reflect.Bool && b.Kind() == reflect.Bool:
		x, y := a.Bool(), b.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// equalValues reports whether two non-null values are equal.
func equalValues(a, b reflect.Value) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func asFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	}
	return v.Float()
}

func asDecimal(v reflect.Value) (decimal.Decimal, bool) {
	switch {
	case v.Type() == decimalType:
		return v.Interface().(decimal.Decimal), true
	case isInt(v):
		return decimal.NewFromInt(v.Int()), true
	case isUint(v):
		return decimal.NewFromUint64(v.Uint()), true
	case isNumber(v):
		return decimal.NewFromFloat(v.Float()), true
	}
	return decimal.Decimal{}, false
}

// isEmptyValue reports whether v is null or a zero length string, slice, array or map.
func isEmptyValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	}
	return false
}
