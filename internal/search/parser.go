package search

type parser struct {
	tokens []token
	pos    int
}

// parse builds a Query from a token stream using recursive descent. Commas
// join values into a single condition (implicit OR within the condition);
// OR/AND set the combinator flag of the condition that follows them.
func parse(tokens []token) (*Query, error) {
	p := &parser{tokens: tokens}
	query, err := p.parseQuery(false)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEnd {
		return nil, &SyntaxError{Pos: p.peek().pos, Message: "unexpected " + p.peek().String()}
	}
	return query, nil
}

func (p *parser) parseQuery(nested bool) (*Query, error) {
	query := &Query{}

	for {
		tok := p.peek()
		if tok.kind == tokenEnd {
			break
		}
		if tok.kind == tokenCloseBracket {
			if nested {
				break
			}
			return nil, &SyntaxError{Pos: tok.pos, Message: "unbalanced closing bracket"}
		}

		condition, err := p.parseCondition(len(query.Conditions) == 0)
		if err != nil {
			return nil, err
		}
		query.Conditions = append(query.Conditions, condition)
	}

	if len(query.Conditions) == 0 {
		return nil, &SyntaxError{Pos: p.peek().pos, Message: "empty query"}
	}
	return query, nil
}

func (p *parser) parseCondition(first bool) (Condition, error) {
	condition := Condition{}

	switch p.peek().kind {
	case tokenOr:
		if first {
			return condition, &SyntaxError{Pos: p.peek().pos, Message: "query cannot start with OR"}
		}
		condition.Or = true
		p.next()
	case tokenAnd:
		if first {
			return condition, &SyntaxError{Pos: p.peek().pos, Message: "query cannot start with AND"}
		}
		p.next()
	}

	if p.peek().kind == tokenNot {
		condition.Not = true
		p.next()
	}

	switch tok := p.peek(); tok.kind {
	case tokenOpenBracket:
		p.next()
		sub, err := p.parseQuery(true)
		if err != nil {
			return condition, err
		}
		if p.peek().kind != tokenCloseBracket {
			return condition, &SyntaxError{Pos: p.peek().pos, Message: "missing closing bracket"}
		}
		p.next()
		condition.Kind = ConditionQuery
		condition.Sub = sub
		return condition, nil
	case tokenQualifier:
		p.next()
		values, err := p.parseValues()
		if err != nil {
			return condition, err
		}
		condition.Kind = ConditionQualifier
		condition.Qualifier = tok.value
		condition.Values = values
		return condition, nil
	case tokenText:
		values, err := p.parseValues()
		if err != nil {
			return condition, err
		}
		condition.Kind = ConditionText
		condition.Values = values
		return condition, nil
	default:
		return condition, &SyntaxError{Pos: tok.pos, Message: "unexpected " + tok.String()}
	}
}

func (p *parser) parseValues() ([]string, error) {
	tok := p.peek()
	if tok.kind != tokenText {
		return nil, &SyntaxError{Pos: tok.pos, Message: "expected a value, got " + tok.String()}
	}
	values := []string{tok.value}
	p.next()

	for p.peek().kind == tokenComma {
		p.next()
		tok = p.peek()
		if tok.kind != tokenText {
			return nil, &SyntaxError{Pos: tok.pos, Message: "expected a value after comma, got " + tok.String()}
		}
		values = append(values, tok.value)
		p.next()
	}
	return values, nil
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{kind: tokenEnd}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.peek()
	p.pos++
	return tok
}
