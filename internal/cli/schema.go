package cli

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nlstn/go-eql"
)

// ErrUnknownType is returned for property types missing from the type table.
var ErrUnknownType = errors.New("unknown property type")

// schemaFile is the YAML layout of a schema:
//
//	entity: Person
//	properties:
//	  name: string
//	  age: int
//	  tags: "[]string"
type schemaFile struct {
	Entity     string            `yaml:"entity"`
	Properties map[string]string `yaml:"properties"`
}

var propertyTypes = map[string]reflect.Type{
	"string":   reflect.TypeOf(""),
	"bool":     reflect.TypeOf(false),
	"int":      reflect.TypeOf(0),
	"int32":    reflect.TypeOf(int32(0)),
	"int64":    reflect.TypeOf(int64(0)),
	"uint":     reflect.TypeOf(uint(0)),
	"float32":  reflect.TypeOf(float32(0)),
	"float64":  reflect.TypeOf(float64(0)),
	"decimal":  reflect.TypeOf(decimal.Decimal{}),
	"time":     reflect.TypeOf(time.Time{}),
	"duration": reflect.TypeOf(time.Duration(0)),
	"uuid":     reflect.TypeOf(uuid.UUID{}),
}

// LoadSchemaFile reads a YAML schema from path.
func LoadSchemaFile(path string) (*eql.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema. A type prefixed with "[]" declares a
// collection and one prefixed with "*" a nullable property.
func ParseSchema(data []byte) (*eql.Schema, error) {
	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if f.Entity == "" {
		return nil, errors.New("decode schema: entity name is required")
	}

	schema := eql.NewSchema(f.Entity)
	for name, typeName := range f.Properties {
		if name == "" {
			return nil, errors.New("decode schema: property name must not be empty")
		}
		t, err := resolveType(typeName)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		schema.Property(name, t)
	}
	return schema, nil
}

func resolveType(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, "[]"):
		elem, err := resolveType(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "*"):
		elem, err := resolveType(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	}
	if t, ok := propertyTypes[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}
