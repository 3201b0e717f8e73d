// Package search implements the ticket search query language: a lexer and
// parser for the user-facing grammar, and a builder that compiles the parsed
// query into a where clause with bound parameters.
package search

// ConditionKind discriminates the three condition variants.
type ConditionKind int

const (
	// ConditionText matches free text or #id tokens against the ticket.
	ConditionText ConditionKind = iota
	// ConditionQualifier restricts a named ticket attribute (name:value).
	ConditionQualifier
	// ConditionQuery nests a parenthesized sub-query.
	ConditionQuery
)

// Condition is one node of a parsed query. It is immutable once built.
//
// Or describes how the condition joins with everything accumulated to its
// left (false = AND, the default). The first condition's combinator is
// irrelevant since nothing precedes it.
type Condition struct {
	Kind      ConditionKind
	Not       bool
	Or        bool
	Qualifier string
	Values    []string
	Sub       *Query
}

// And reports whether the condition joins with AND.
func (c Condition) And() bool {
	return !c.Or
}

// Query is an ordered sequence of conditions produced by the parser.
type Query struct {
	Conditions []Condition
}

// Parse tokenizes and parses the given search string.
func Parse(input string) (*Query, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	return parse(tokens)
}
