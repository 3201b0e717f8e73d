package repository

import (
	"fmt"
	"regexp"
	"strings"
)

var namedParamPattern = regexp.MustCompile(`:q\d+p\d+`)

// bindNamed rewrites the compiler's :qXpY named parameters into positional
// pgx placeholders. Slice values are expanded into one placeholder per
// element, which makes IN (:name) lists work without driver support for
// array membership.
func bindNamed(where string, params map[string]any) (string, []any, error) {
	args := []any{}
	var missing error

	bound := namedParamPattern.ReplaceAllStringFunc(where, func(match string) string {
		name := match[1:]
		value, ok := params[name]
		if !ok {
			missing = fmt.Errorf("missing parameter %q", name)
			return match
		}

		if values, ok := value.([]any); ok {
			placeholders := make([]string, len(values))
			for i, v := range values {
				args = append(args, v)
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			return strings.Join(placeholders, ",")
		}

		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	})

	if missing != nil {
		return "", nil, missing
	}
	return bound, args, nil
}
