package query

import (
	"github.com/nlstn/go-eql/internal/metadata"
)

// MetadataProvider answers which properties, operators and values a query may use.
type MetadataProvider interface {
	IsValidProperty(name string) bool
	IsValidOperatorForProperty(op Operator, name string) bool
	IsValidValueForPropertyAndOperator(value any, name string, op Operator) bool
	PropertyType(name string) (metadata.TypeInfo, bool)
}

// PermissiveMetadataProvider accepts every property, operator and value.
// Property types are unknown, so values are left as parsed.
type PermissiveMetadataProvider struct{}

func (PermissiveMetadataProvider) IsValidProperty(string) bool { return true }

func (PermissiveMetadataProvider) IsValidOperatorForProperty(Operator, string) bool { return true }

func (PermissiveMetadataProvider) IsValidValueForPropertyAndOperator(any, string, Operator) bool {
	return true
}

func (PermissiveMetadataProvider) PropertyType(string) (metadata.TypeInfo, bool) {
	return metadata.TypeInfo{}, true
}

var (
	nullOperators = []Operator{IS_NULL, IS_NOT_NULL, IS_EMPTY, IS_NOT_EMPTY}

	stringOperators     = operatorSet(EQ, NEQ, IN, NOT_IN, LIKE, NOT_LIKE, LIKE_IC, NOT_LIKE_IC)
	numericOperators    = operatorSet(EQ, NEQ, IN, NOT_IN, GT, GE, LT, LE)
	collectionOperators = operatorSet(CONTAINS, NOT_CONTAINS)
	entityOperators     = operatorSet(EQ, NEQ, IN, NOT_IN)
)

func operatorSet(ops ...Operator) map[Operator]struct{} {
	set := make(map[Operator]struct{}, len(ops)+len(nullOperators))
	for _, op := range append(ops, nullOperators...) {
		set[op] = struct{}{}
	}
	return set
}

// SchemaMetadataProvider validates queries against the declared properties of a schema.
type SchemaMetadataProvider struct {
	schema *metadata.Schema
}

// NewSchemaMetadataProvider creates a provider for the given schema.
func NewSchemaMetadataProvider(schema *metadata.Schema) *SchemaMetadataProvider {
	return &SchemaMetadataProvider{schema: schema}
}

func (p *SchemaMetadataProvider) IsValidProperty(name string) bool {
	return p.schema.Has(name)
}

func (p *SchemaMetadataProvider) PropertyType(name string) (metadata.TypeInfo, bool) {
	prop, ok := p.schema.Lookup(name)
	if !ok {
		return metadata.TypeInfo{}, false
	}
	return prop.Type, true
}

// IsValidOperatorForProperty checks op against the operator family of the property type.
func (p *SchemaMetadataProvider) IsValidOperatorForProperty(op Operator, name string) bool {
	ti, ok := p.PropertyType(name)
	if !ok {
		return false
	}
	_, valid := operatorFamily(ti)[op]
	return valid
}

func operatorFamily(ti metadata.TypeInfo) map[Operator]struct{} {
	switch {
	case ti.IsString():
		return stringOperators
	case ti.IsNumericOrTemporal():
		return numericOperators
	case ti.IsCollection(), ti.IsArray():
		return collectionOperators
	default:
		return entityOperators
	}
}

// IsValidValueForPropertyAndOperator checks the shape of a raw value:
// groups are reserved for IN and NOT IN, which in turn need a group or a function.
func (p *SchemaMetadataProvider) IsValidValueForPropertyAndOperator(value any, name string, op Operator) bool {
	if !p.IsValidProperty(name) {
		return false
	}
	_, isGroup := value.(EQGroup)
	_, isFunction := value.(EQFunction)
	if op == IN || op == NOT_IN {
		return isGroup || isFunction
	}
	return !isGroup
}
