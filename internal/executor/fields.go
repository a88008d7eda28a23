package executor

import (
	"reflect"
	"strings"
	"sync"
)

// fieldIndexes caches property name to field index lookups per struct type.
var fieldIndexes sync.Map // reflect.Type -> map[string][]int

// structFields returns the property lookup of a struct type. Fields are
// registered under their eql tag, their name and their lower-cased name.
func structFields(t reflect.Type) map[string][]int {
	if cached, ok := fieldIndexes.Load(t); ok {
		return cached.(map[string][]int)
	}

	fields := make(map[string][]int)
	lower := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tag, ok := f.Tag.Lookup("eql"); ok {
			if tag == "-" {
				continue
			}
			fields[tag] = f.Index
		}
		if _, ok := fields[f.Name]; !ok {
			fields[f.Name] = f.Index
		}
		if _, ok := lower[strings.ToLower(f.Name)]; !ok {
			lower[strings.ToLower(f.Name)] = f.Index
		}
	}
	for name, index := range lower {
		if _, ok := fields[name]; !ok {
			fields[name] = index
		}
	}

	actual, _ := fieldIndexes.LoadOrStore(t, fields)
	return actual.(map[string][]int)
}

func lookupField(t reflect.Type, property string) ([]int, bool) {
	fields := structFields(t)
	if index, ok := fields[property]; ok {
		return index, true
	}
	index, ok := fields[strings.ToLower(property)]
	return index, ok
}

// propertyValue resolves property on entity. Entities are structs, pointers to
// structs or maps keyed by string. The returned value is invalid when the
// property is null. ok is false when the property does not exist.
func propertyValue(entity reflect.Value, property string) (reflect.Value, bool) {
	entity = indirect(entity)
	if !entity.IsValid() {
		return reflect.Value{}, true
	}

	switch entity.Kind() {
	case reflect.Map:
		if entity.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		v := entity.MapIndex(reflect.ValueOf(property).Convert(entity.Type().Key()))
		return indirect(v), true
	case reflect.Struct:
		index, ok := lookupField(entity.Type(), property)
		if !ok {
			return reflect.Value{}, false
		}
		v, err := entity.FieldByIndexErr(index)
		if err != nil {
			// nil embedded pointer
			return reflect.Value{}, true
		}
		return indirect(v), true
	}
	return reflect.Value{}, false
}

// propertyType returns the declared type of property on entity type t with pointers removed.
// Map entities report a nil type.
func propertyType(t reflect.Type, property string) (reflect.Type, bool) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map:
		return nil, t.Key().Kind() == reflect.String
	case reflect.Struct:
		index, ok := lookupField(t, property)
		if !ok {
			return nil, false
		}
		ft := t.FieldByIndex(index).Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		return ft, true
	}
	return nil, false
}

// indirect follows pointers and interfaces. A nil pointer or interface yields an invalid value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
