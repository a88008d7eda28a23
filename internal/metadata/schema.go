package metadata

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// PropertyMetadata describes a queryable property.
type PropertyMetadata struct {
	Name string
	Type TypeInfo
}

// Schema holds the explicitly declared properties of an entity.
// Properties are declared by name and type; entities are never inspected.
// A Schema is safe for concurrent reads once it is no longer modified.
type Schema struct {
	mu         sync.RWMutex
	name       string
	properties map[string]PropertyMetadata
}

// NewSchema creates an empty schema for the named entity.
func NewSchema(name string) *Schema {
	return &Schema{
		name:       name,
		properties: make(map[string]PropertyMetadata),
	}
}

// Name returns the entity name of the schema.
func (s *Schema) Name() string {
	return s.name
}

// Property declares a property with its Go type. Declaring a name twice replaces the type.
func (s *Schema) Property(name string, t reflect.Type) *Schema {
	if name == "" {
		panic("metadata: property name must not be empty")
	}
	if t == nil {
		panic(fmt.Sprintf("metadata: property %q has nil type", name))
	}
	s.mu.Lock()
	s.properties[name] = PropertyMetadata{Name: name, Type: TypeOf(t)}
	s.mu.Unlock()
	return s
}

// Declare declares a property of type T on s.
func Declare[T any](s *Schema, name string) *Schema {
	return s.Property(name, reflect.TypeOf((*T)(nil)).Elem())
}

// Lookup returns the metadata of a property.
func (s *Schema) Lookup(name string) (PropertyMetadata, bool) {
	s.mu.RLock()
	p, ok := s.properties[name]
	s.mu.RUnlock()
	return p, ok
}

// Has reports whether the property is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Properties returns the declared property names in lexical order.
func (s *Schema) Properties() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.properties))
	for n := range s.properties {
		names = append(names, n)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}
