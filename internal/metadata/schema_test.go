package metadata

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	s := NewSchema("Product")
	Declare[int](s, "id")
	Declare[string](s, "name")
	s.Property("tags", reflect.TypeOf([]string{}))

	assert.Equal(t, "Product", s.Name())
	assert.Equal(t, []string{"id", "name", "tags"}, s.Properties())
	assert.True(t, s.Has("name"))
	assert.False(t, s.Has("price"))

	p, ok := s.Lookup("tags")
	require.True(t, ok)
	assert.Equal(t, "tags", p.Name)
	assert.True(t, p.Type.IsCollection())

	Declare[float64](s, "id")
	p, _ = s.Lookup("id")
	assert.Equal(t, reflect.TypeOf(float64(0)), p.Type.Type)
}

func TestSchemaPanicsOnInvalidDeclaration(t *testing.T) {
	s := NewSchema("Product")
	assert.Panics(t, func() { s.Property("", reflect.TypeOf(0)) })
	assert.Panics(t, func() { s.Property("id", nil) })
}

func TestTypeInfo(t *testing.T) {
	type status string
	type point struct{ X, Y int }

	tests := []struct {
		name       string
		typ        reflect.Type
		collection bool
		array      bool
		str        bool
		numeric    bool
	}{
		{"string", reflect.TypeOf(""), false, false, true, false},
		{"named string", reflect.TypeOf(status("")), false, false, true, false},
		{"string pointer", reflect.TypeOf(new(string)), false, false, true, false},
		{"int", reflect.TypeOf(0), false, false, false, true},
		{"uint8", reflect.TypeOf(uint8(0)), false, false, false, true},
		{"float32", reflect.TypeOf(float32(0)), false, false, false, true},
		{"time", reflect.TypeOf(time.Time{}), false, false, false, true},
		{"time pointer", reflect.TypeOf(&time.Time{}), false, false, false, true},
		{"duration", reflect.TypeOf(time.Second), false, false, false, true},
		{"decimal", reflect.TypeOf(decimal.Decimal{}), false, false, false, true},
		{"slice", reflect.TypeOf([]int{}), true, false, false, false},
		{"bytes", reflect.TypeOf([]byte{}), false, false, false, false},
		{"array", reflect.TypeOf([2]string{}), false, true, false, false},
		{"byte array", reflect.TypeOf([4]byte{}), false, false, false, false},
		{"uuid", reflect.TypeOf(uuid.UUID{}), false, false, false, false},
		{"struct", reflect.TypeOf(point{}), false, false, false, false},
		{"bool", reflect.TypeOf(true), false, false, false, false},
		{"unknown", nil, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := TypeOf(tt.typ)
			assert.Equal(t, tt.collection, ti.IsCollection())
			assert.Equal(t, tt.array, ti.IsArray())
			assert.Equal(t, tt.str, ti.IsString())
			assert.Equal(t, tt.numeric, ti.IsNumericOrTemporal())
		})
	}
}

func TestTypeInfoElementType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(0), TypeOf(reflect.TypeOf([]int{})).ElementType())
	assert.Equal(t, reflect.TypeOf(""), TypeOf(reflect.TypeOf([3]string{})).ElementType())
	assert.Equal(t, reflect.TypeOf(0), TypeOf(reflect.TypeOf(0)).ElementType())
	assert.Equal(t, reflect.TypeOf(uuid.UUID{}), TypeOf(reflect.TypeOf(uuid.UUID{})).ElementType())
}
