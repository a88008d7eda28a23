package query

import (
	"reflect"

	"github.com/nlstn/go-eql/internal/convert"
)

var stringType = reflect.TypeOf("")

// FunctionHandler evaluates named EQL functions such as today().
type FunctionHandler interface {
	// Accepts reports whether the handler can produce a value of the expected type
	// for the function. A nil expected type means the target type is unknown.
	Accepts(name string, expected reflect.Type) bool
	Apply(name string, args []EQType, expected reflect.Type, converter *TypeConverter) (any, error)
}

// TypeConverter turns EQType values into values of an expected Go type.
type TypeConverter struct {
	conversion *convert.Service
	handlers   []FunctionHandler
}

// NewTypeConverter creates a converter; a nil conversion service uses the built-in converters.
func NewTypeConverter(conversion *convert.Service, handlers ...FunctionHandler) *TypeConverter {
	if conversion == nil {
		conversion = convert.NewDefault()
	}
	return &TypeConverter{conversion: conversion, handlers: handlers}
}

// untyped reports whether the expected type carries no information.
func untyped(expected reflect.Type) bool {
	return expected == nil || (expected.Kind() == reflect.Interface && expected.NumMethod() == 0)
}

// Convert converts a single value. The first matching rule wins:
// assignable values are returned, registered converters are applied,
// bare values and string literals are converted from their text,
// groups are converted element-wise and functions are evaluated by a handler.
// Anything else is returned unchanged.
func (c *TypeConverter) Convert(expected reflect.Type, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if untyped(expected) {
		return c.convertUntyped(expected, value)
	}

	source := reflect.TypeOf(value)
	if source.AssignableTo(expected) {
		return value, nil
	}
	if expected != stringType && c.conversion.CanConvert(source, expected) {
		return c.conversion.Convert(value, expected)
	}

	switch v := value.(type) {
	case EQValue:
		if v.IsNull() {
			return nil, nil
		}
		return c.Convert(expected, v.Value)
	case EQString:
		if expected == stringType {
			return v.Value, nil
		}
		return c.Convert(expected, v.Value)
	case EQGroup:
		return c.convertGroup(expected, v)
	case EQFunction:
		return c.applyFunction(expected, v)
	}
	// no converter applies: text stays text
	return value, nil
}

// convertUntyped resolves values whose target type is unknown into plain Go values.
func (c *TypeConverter) convertUntyped(expected reflect.Type, value any) (any, error) {
	switch v := value.(type) {
	case EQValue:
		if v.IsNull() {
			return nil, nil
		}
		return v.Value, nil
	case EQString:
		return v.Value, nil
	case EQGroup:
		return c.convertGroup(expected, v)
	case EQFunction:
		return c.applyFunction(expected, v)
	}
	return value, nil
}

func (c *TypeConverter) convertGroup(expected reflect.Type, g EQGroup) ([]any, error) {
	out := make([]any, 0, len(g.Values))
	for _, item := range g.Values {
		converted, err := c.Convert(expected, item)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func (c *TypeConverter) applyFunction(expected reflect.Type, fn EQFunction) (any, error) {
	for _, h := range c.handlers {
		if h.Accepts(fn.Name, expected) {
			return h.Apply(fn.Name, fn.Args, expected, c)
		}
	}
	return nil, errIllegalFunction(fn.String())
}

// ConvertAll converts values against the element type of expected when it is a
// slice or array. With expandGroups, converted groups are spliced into the result
// instead of being nested.
func (c *TypeConverter) ConvertAll(expected reflect.Type, expandGroups bool, values ...any) ([]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	elem := expected
	if expected != nil && (expected.Kind() == reflect.Slice || expected.Kind() == reflect.Array) &&
		expected.Elem().Kind() != reflect.Uint8 {
		elem = expected.Elem()
	}

	out := make([]any, 0, len(values))
	for _, v := range values {
		converted, err := c.Convert(elem, v)
		if err != nil {
			return nil, err
		}
		if items, ok := converted.([]any); ok && expandGroups {
			out = append(out, items...)
			continue
		}
		out = append(out, converted)
	}
	return out, nil
}
