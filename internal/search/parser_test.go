package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleTextCondition(t *testing.T) {
	query, err := Parse("emails")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 1)

	cond := query.Conditions[0]
	assert.Equal(t, ConditionText, cond.Kind)
	assert.Equal(t, []string{"emails"}, cond.Values)
	assert.False(t, cond.Not)
	assert.True(t, cond.And())
}

func TestParseQualifierWithValues(t *testing.T) {
	query, err := Parse("status:new,pending")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 1)

	cond := query.Conditions[0]
	assert.Equal(t, ConditionQualifier, cond.Kind)
	assert.Equal(t, "status", cond.Qualifier)
	assert.Equal(t, []string{"new", "pending"}, cond.Values)
}

func TestParseCombinators(t *testing.T) {
	query, err := Parse("urgency:high OR impact:high priority:low")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 3)

	assert.True(t, query.Conditions[0].And())
	assert.True(t, query.Conditions[1].Or)
	// Adjacency means AND.
	assert.True(t, query.Conditions[2].And())
}

func TestParseExplicitAnd(t *testing.T) {
	query, err := Parse("a AND b")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 2)
	assert.True(t, query.Conditions[1].And())
}

func TestParseNegation(t *testing.T) {
	query, err := Parse("-status:closed -emails")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 2)
	assert.True(t, query.Conditions[0].Not)
	assert.True(t, query.Conditions[1].Not)
}

func TestParseNestedQuery(t *testing.T) {
	query, err := Parse("status:open (urgency:high OR impact:high)")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 2)

	sub := query.Conditions[1]
	assert.Equal(t, ConditionQuery, sub.Kind)
	require.NotNil(t, sub.Sub)
	require.Len(t, sub.Sub.Conditions, 2)
	assert.True(t, sub.Sub.Conditions[1].Or)
}

func TestParseNegatedGroup(t *testing.T) {
	query, err := Parse("-(status:closed OR status:resolved)")
	require.NoError(t, err)
	require.Len(t, query.Conditions, 1)
	assert.Equal(t, ConditionQuery, query.Conditions[0].Kind)
	assert.True(t, query.Conditions[0].Not)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty query", input: ""},
		{name: "blank query", input: "   "},
		{name: "starts with OR", input: "OR status:open"},
		{name: "starts with AND", input: "AND status:open"},
		{name: "unbalanced closing bracket", input: "status:open)"},
		{name: "missing closing bracket", input: "(status:open"},
		{name: "qualifier without value", input: "status:"},
		{name: "dangling comma", input: "status:open,"},
		{name: "empty group", input: "()"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr, "input %q", tc.input)
		})
	}
}
