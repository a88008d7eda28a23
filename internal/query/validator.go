package query

// Validate checks every condition of a raw query against the provider, depth first.
// The first violation is returned; positions, when given, locate the failing condition.
func Validate(q *Query, provider MetadataProvider, positions Positions) error {
	if q == nil {
		return nil
	}
	if provider == nil {
		provider = PermissiveMetadataProvider{}
	}
	for _, e := range q.Expressions {
		switch n := e.(type) {
		case *Condition:
			if err := validateCondition(n, provider, positionOf(positions, n)); err != nil {
				return err
			}
		case *Query:
			if err := Validate(n, provider, positions); err != nil {
				return err
			}
		}
	}
	for _, o := range q.Sort {
		if !provider.IsValidProperty(o.Property) {
			return errIllegalField(o.Property, NoPosition)
		}
	}
	return nil
}

func positionOf(positions Positions, c *Condition) int {
	if pos, ok := positions[c]; ok {
		return pos
	}
	return NoPosition
}

func validateCondition(c *Condition, provider MetadataProvider, pos int) error {
	if !provider.IsValidProperty(c.Property) {
		return errIllegalField(c.Property, pos)
	}
	if !provider.IsValidOperatorForProperty(c.Operator, c.Property) {
		return errIllegalOperator(c.Operator.Token(), pos).withContext(c.String(), pos)
	}
	for _, arg := range c.Arguments {
		if !provider.IsValidValueForPropertyAndOperator(arg, c.Property, c.Operator) {
			return errIllegalValue(objectAsString(arg), c.Property, c.Operator, pos).withContext(c.String(), pos)
		}
	}
	return nil
}
