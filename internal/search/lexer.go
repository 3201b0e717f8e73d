package search

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEnd tokenKind = iota
	tokenText
	tokenQualifier
	tokenComma
	tokenOpenBracket
	tokenCloseBracket
	tokenOr
	tokenAnd
	tokenNot
)

type token struct {
	kind  tokenKind
	value string
	pos   int
}

func (t token) String() string {
	switch t.kind {
	case tokenEnd:
		return "end of query"
	case tokenQualifier:
		return fmt.Sprintf("qualifier %q", t.value)
	case tokenText:
		return fmt.Sprintf("%q", t.value)
	default:
		return fmt.Sprintf("%q", t.value)
	}
}

// SyntaxError reports an invalid search string.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
}

// tokenize splits the search string into tokens. Unquoted OR/AND words act
// as combinators; a leading dash negates the following token; a word
// immediately followed by a colon names a qualifier.
func tokenize(input string) ([]token, error) {
	runes := []rune(input)
	tokens := []token{}
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenOpenBracket, value: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenCloseBracket, value: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokenComma, value: ",", pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokenNot, value: "-", pos: i})
			i++
		case r == '"':
			value, next, err := scanQuoted(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenText, value: value, pos: i})
			i = next
		default:
			word, next := scanWord(runes, i)
			if next < len(runes) && runes[next] == ':' {
				tokens = append(tokens, token{kind: tokenQualifier, value: word, pos: i})
				i = next + 1
				continue
			}
			switch strings.ToUpper(word) {
			case "OR":
				tokens = append(tokens, token{kind: tokenOr, value: word, pos: i})
			case "AND":
				tokens = append(tokens, token{kind: tokenAnd, value: word, pos: i})
			default:
				tokens = append(tokens, token{kind: tokenText, value: word, pos: i})
			}
			i = next
		}
	}

	tokens = append(tokens, token{kind: tokenEnd, pos: len(runes)})
	return tokens, nil
}

func scanQuoted(runes []rune, start int) (string, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(runes) {
		if runes[i] == '"' {
			return sb.String(), i + 1, nil
		}
		sb.WriteRune(runes[i])
		i++
	}
	return "", 0, &SyntaxError{Pos: start, Message: "unclosed quote"}
}

func scanWord(runes []rune, start int) (string, int) {
	i := start
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' || r == ':' || r == '"' {
			break
		}
		i++
	}
	return string(runes[start:i]), i
}
