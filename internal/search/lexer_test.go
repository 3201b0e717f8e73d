package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenKind
	}{
		{
			name:  "free text words",
			input: "emails not received",
			want:  []tokenKind{tokenText, tokenText, tokenText, tokenEnd},
		},
		{
			name:  "qualifier with value",
			input: "status:open",
			want:  []tokenKind{tokenQualifier, tokenText, tokenEnd},
		},
		{
			name:  "comma separated values",
			input: "status:new,pending",
			want:  []tokenKind{tokenQualifier, tokenText, tokenComma, tokenText, tokenEnd},
		},
		{
			name:  "negated qualifier",
			input: "-assignee:@me",
			want:  []tokenKind{tokenNot, tokenQualifier, tokenText, tokenEnd},
		},
		{
			name:  "brackets and or",
			input: "(urgency:high OR impact:high)",
			want:  []tokenKind{tokenOpenBracket, tokenQualifier, tokenText, tokenOr, tokenQualifier, tokenText, tokenCloseBracket, tokenEnd},
		},
		{
			name:  "lowercase or keyword",
			input: "a or b",
			want:  []tokenKind{tokenText, tokenOr, tokenText, tokenEnd},
		},
		{
			name:  "and keyword",
			input: "a AND b",
			want:  []tokenKind{tokenText, tokenAnd, tokenText, tokenEnd},
		},
		{
			name:  "quoted string stays one token",
			input: `"hello world"`,
			want:  []tokenKind{tokenText, tokenEnd},
		},
		{
			name:  "quoted keyword is plain text",
			input: `"OR"`,
			want:  []tokenKind{tokenText, tokenEnd},
		},
		{
			name:  "id literal",
			input: "#42",
			want:  []tokenKind{tokenText, tokenEnd},
		},
		{
			name:  "empty input yields only end",
			input: "   ",
			want:  []tokenKind{tokenEnd},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := tokenize(tc.input)
			require.NoError(t, err)

			kinds := make([]tokenKind, len(tokens))
			for i, tok := range tokens {
				kinds[i] = tok.kind
			}
			assert.Equal(t, tc.want, kinds)
		})
	}
}

func TestTokenizeQuotedValues(t *testing.T) {
	tokens, err := tokenize(`label:"my label"`)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, tokenQualifier, tokens[0].kind)
	assert.Equal(t, "label", tokens[0].value)
	assert.Equal(t, tokenText, tokens[1].kind)
	assert.Equal(t, "my label", tokens[1].value)
}

func TestTokenizeUnclosedQuote(t *testing.T) {
	_, err := tokenize(`status:"open`)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, syntaxErr.Error(), "unclosed quote")
}

func TestTokenizeDashInsideWord(t *testing.T) {
	tokens, err := tokenize("e-mail")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, tokenText, tokens[0].kind)
	assert.Equal(t, "e-mail", tokens[0].value)
}
