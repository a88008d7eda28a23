package metadata

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	decimalType  = reflect.TypeOf(decimal.Decimal{})
)

// TypeInfo classifies the declared type of a property.
type TypeInfo struct {
	// Type is the declared type with pointers removed.
	Type reflect.Type
}

// TypeOf creates the TypeInfo of t, dereferencing pointer types.
func TypeOf(t reflect.Type) TypeInfo {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return TypeInfo{Type: t}
}

// IsCollection reports whether the type is a slice. Byte slices count as scalar values.
func (ti TypeInfo) IsCollection() bool {
	return ti.Type != nil && ti.Type.Kind() == reflect.Slice && ti.Type.Elem().Kind() != reflect.Uint8
}

// IsArray reports whether the type is a fixed size array. Byte arrays such as
// uuid.UUID count as scalar values.
func (ti TypeInfo) IsArray() bool {
	return ti.Type != nil && ti.Type.Kind() == reflect.Array && ti.Type.Elem().Kind() != reflect.Uint8
}

// IsString reports whether the type has a string kind.
func (ti TypeInfo) IsString() bool {
	return ti.Type != nil && ti.Type.Kind() == reflect.String
}

// IsNumericOrTemporal reports whether the type is ordered: numbers, decimals, times and durations.
func (ti TypeInfo) IsNumericOrTemporal() bool {
	if ti.Type == nil {
		return false
	}
	switch ti.Type {
	case timeType, durationType, decimalType:
		return true
	}
	switch ti.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ElementType returns the element type of collections and arrays, or the type itself.
func (ti TypeInfo) ElementType() reflect.Type {
	if ti.IsCollection() || ti.IsArray() {
		return ti.Type.Elem()
	}
	return ti.Type
}
