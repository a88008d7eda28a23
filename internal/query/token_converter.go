package query

import (
	"strings"
)

// keywords may neither be used as field names nor as values.
var keywords = map[string]struct{}{
	"!=": {}, "<>": {}, "=": {}, ">": {}, ">=": {}, "<": {}, "<=": {},
	"contains": {}, "and": {}, "or": {}, "not": {}, "in": {}, "like": {}, "ilike": {}, "is": {},
}

func isKeyword(text string) bool {
	_, ok := keywords[strings.ToLower(text)]
	return ok
}

func isReserved(text string, allowGroup bool) bool {
	switch text {
	case groupOpen:
		return !allowGroup
	case groupClose, separator:
		return true
	}
	return isKeyword(text)
}

// Positions maps the conditions of a raw query to the position of their field token.
type Positions map[*Condition]int

// tokenQueue is an index cursor over the tokens of one statement.
type tokenQueue struct {
	tokens []Token
	cursor int
}

func (q *tokenQueue) peek() (Token, bool) {
	if q.cursor >= len(q.tokens) {
		return Token{}, false
	}
	return q.tokens[q.cursor], true
}

func (q *tokenQueue) pop() (Token, bool) {
	tok, ok := q.peek()
	if ok {
		q.cursor++
	}
	return tok, ok
}

// lastPopped returns the most recently consumed token.
func (q *tokenQueue) lastPopped() (Token, bool) {
	if q.cursor == 0 {
		return Token{}, false
	}
	return q.tokens[q.cursor-1], true
}

// processedSince joins the tokens consumed from index start on.
func (q *tokenQueue) processedSince(start int) string {
	parts := make([]string, 0, q.cursor-start)
	for _, t := range q.tokens[start:q.cursor] {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// tokenConverter builds a raw query from tokens.
type tokenConverter struct {
	queue     tokenQueue
	positions Positions
}

// ParseRaw tokenizes and converts an EQL statement into a raw, untranslated query.
func ParseRaw(input string) (*Query, error) {
	q, _, err := ConvertTokensWithPositions(Tokenize(input))
	return q, err
}

// ConvertTokens converts tokens into a raw query.
func ConvertTokens(tokens []Token) (*Query, error) {
	q, _, err := ConvertTokensWithPositions(tokens)
	return q, err
}

// ConvertTokensWithPositions converts tokens into a raw query and also returns
// the field position of every condition, used to position validation errors.
func ConvertTokensWithPositions(tokens []Token) (*Query, Positions, error) {
	c := &tokenConverter{
		queue:     tokenQueue{tokens: tokens},
		positions: make(Positions),
	}
	q, err := c.buildQuery(false)
	if err != nil {
		return nil, nil, err
	}
	return q, c.positions, nil
}

func (c *tokenConverter) buildQuery(inGroup bool) (*Query, error) {
	query := All()
	operandSet := false
	expectingAndOr := false
	expectingNext := inGroup
	inOrderBy := false

	for {
		tok, ok := c.queue.pop()
		if !ok {
			break
		}

		if inOrderBy {
			switch {
			case expectingNext:
				order, err := c.buildOrderSpecifier(tok)
				if err != nil {
					return nil, err
				}
				query.Sort = append(query.Sort, order)
				expectingNext = false
			case tok.Text == separator:
				expectingNext = true
			default:
				return nil, errIllegalToken(tok)
			}
			continue
		}

		switch {
		case tok.Text == groupOpen && !expectingAndOr:
			sub, err := c.buildQuery(true)
			if err != nil {
				return nil, err
			}
			query.Add(sub)
			expectingAndOr = true
			expectingNext = false

		case tok.Text == groupClose:
			if !inGroup {
				return nil, errIllegalToken(tok)
			}
			if expectingNext {
				return nil, c.missingFieldBefore(c.queue.cursor - 1)
			}
			return query, nil

		case expectingAndOr && (strings.EqualFold(tok.Text, "and") || strings.EqualFold(tok.Text, "or")):
			op := AND
			if strings.EqualFold(tok.Text, "or") {
				op = OR
			}
			if operandSet && op != query.Operand {
				return nil, errIllegalKeyword(tok)
			}
			query.Operand = op
			operandSet = true
			expectingAndOr = false
			expectingNext = true

		default:
			if !inGroup && strings.EqualFold(tok.Text, "order") {
				if next, ok := c.queue.peek(); ok && strings.EqualFold(next.Text, "by") {
					if expectingNext {
						return nil, c.missingFieldBefore(c.queue.cursor - 1)
					}
					c.queue.pop()
					inOrderBy = true
					expectingNext = true
					continue
				}
			}
			if expectingAndOr {
				return nil, errMissingKeyword(tok)
			}
			cond, err := c.buildCondition(tok)
			if err != nil {
				return nil, err
			}
			query.Add(cond)
			expectingAndOr = true
			expectingNext = false
		}
	}

	last, hasLast := c.queue.lastPopped()
	if expectingNext && hasLast {
		return nil, errMissingField(last.NextPosition()).withContext(last.Text, last.Position)
	}
	if inGroup {
		return nil, errMissingToken(groupClose, last)
	}
	return query, nil
}

// missingFieldBefore reports a missing field right after the token preceding index.
func (c *tokenConverter) missingFieldBefore(index int) *ParseError {
	if index == 0 {
		return errMissingField(0)
	}
	prev := c.queue.tokens[index-1]
	return errMissingField(prev.NextPosition()).withContext(prev.Text, prev.Position)
}

func (c *tokenConverter) buildOrderSpecifier(field Token) (Order, error) {
	if isReserved(field.Text, false) || field.Text == groupOpen {
		return Order{}, errIllegalField(field.Text, field.Position)
	}
	dirTok, ok := c.queue.pop()
	if !ok {
		return Order{}, errMissingOrderDirection(field)
	}
	dir, ok := ParseDirection(dirTok.Text)
	if !ok {
		return Order{}, errIllegalOrderDirection(field.Text, dirTok)
	}
	return Order{Property: field.Text, Direction: dir}, nil
}

func (c *tokenConverter) buildCondition(field Token) (*Condition, error) {
	start := c.queue.cursor - 1
	cond, err := c.parseCondition(field)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.withContext(c.queue.processedSince(start), c.queue.tokens[start].Position)
		}
		return nil, err
	}
	c.positions[cond] = field.Position
	return cond, nil
}

func (c *tokenConverter) parseCondition(field Token) (*Condition, error) {
	if isReserved(field.Text, false) || field.Text == groupOpen {
		return nil, errIllegalField(field.Text, field.Position)
	}

	opTok, ok := c.queue.pop()
	if !ok {
		return nil, errMissingOperator(field)
	}
	opText := opTok.Text
	for {
		next, ok := c.queue.peek()
		if !ok || !isKeyword(next.Text) {
			break
		}
		c.queue.pop()
		opText += " " + next.Text
	}
	op, ok := OperatorForToken(opText)
	if !ok || op.IsLogical() {
		return nil, errIllegalOperator(opText, opTok.Position)
	}

	last, _ := c.queue.lastPopped()
	expectedPosition := last.NextPosition()

	value, err := c.retrieveValue(true)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errMissingValue(op.Render(field.Text, EmptyValue), expectedPosition)
	}

	if op == IS_NULL || op == IS_NOT_NULL {
		v, isValue := value.(EQValue)
		switch {
		case isValue && v.IsNull():
		case isValue && strings.EqualFold(v.Value, "empty"):
			if op == IS_NULL {
				op = IS_EMPTY
			} else {
				op = IS_NOT_EMPTY
			}
		default:
			return nil, errIllegalIsValue(field.Text, expectedPosition)
		}
		return NewCondition(field.Text, op), nil
	}
	return NewCondition(field.Text, op, value), nil
}

// retrieveValue reads the next value. It returns nil when no token is left.
func (c *tokenConverter) retrieveValue(allowGroup bool) (EQType, error) {
	tok, ok := c.queue.pop()
	if !ok {
		return nil, nil
	}
	if isReserved(tok.Text, allowGroup) {
		return nil, errIllegalToken(tok)
	}
	if tok.Text == groupOpen {
		return c.removeCurrentGroup()
	}

	literal, isLiteral, err := stringLiteral(tok)
	if err != nil {
		return nil, err
	}
	if isLiteral {
		return literal, nil
	}

	if next, ok := c.queue.peek(); ok && next.Text == groupOpen {
		return c.buildFunction(tok)
	}
	return NewEQValue(tok.Text), nil
}

// removeCurrentGroup reads the values of a group whose opening parenthesis was consumed.
func (c *tokenConverter) removeCurrentGroup() (EQType, error) {
	var values []EQType
	expectingNext := true

	for {
		tok, ok := c.queue.peek()
		if !ok {
			break
		}
		if !expectingNext {
			c.queue.pop()
			switch tok.Text {
			case groupClose:
				return NewEQGroup(values...), nil
			case separator:
				expectingNext = true
				continue
			default:
				return nil, errIllegalToken(tok)
			}
		}
		value, err := c.retrieveValue(false)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		expectingNext = false
	}

	last, _ := c.queue.lastPopped()
	if expectingNext {
		return nil, errMissingValue(last.Text, last.NextPosition())
	}
	return nil, errMissingToken(groupClose, last)
}

func (c *tokenConverter) buildFunction(name Token) (EQType, error) {
	c.queue.pop() // (
	if next, ok := c.queue.peek(); ok && next.Text == groupClose {
		c.queue.pop()
		return NewEQFunction(name.Text), nil
	}
	args, err := c.removeCurrentGroup()
	if err != nil {
		return nil, err
	}
	return NewEQFunction(name.Text, args.(EQGroup).Values...), nil
}

// stringLiteral unquotes tok when it is a string literal. A literal without
// its closing quote is reported as a missing token.
func stringLiteral(tok Token) (EQString, bool, error) {
	text := tok.Text
	if text == "" || !isStringLiteralChar(text[0]) {
		return EQString{}, false, nil
	}
	quote := text[0]
	if len(text) < 2 || text[len(text)-1] != quote || escapedAt(text, len(text)-1) {
		return EQString{}, false, errMissingToken(string(quote), tok)
	}
	return EQString{Value: unescapeLiteral(text[1 : len(text)-1])}, true, nil
}

// escapedAt reports whether the character at i is preceded by an odd number of backslashes.
func escapedAt(text string, i int) bool {
	n := 0
	for j := i - 1; j > 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
