package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/spf13/cast"
)

// patternFuncs implements the LIKE family. Grounded on the reference
// implementation's lsql/tree.py `like`/`rlike`, with `like` escaping the
// pattern and turning `%`/`_` into `.*`/`.`, anchored at both ends so it
// matches standard SQL LIKE semantics (a bare `%` substring search, not a
// suffix search). Applied to a list-typed value (e.g. the `lines` column),
// a pattern matches if any element matches; applied to a scalar, it
// matches the whole value.
var patternFuncs = map[string]Func{
	"like":       likeFunc(false),
	"ilike":      likeFunc(true),
	"rlike":      rlikeFunc(false),
	"rilike":     rlikeFunc(true),
	"like_regex": rlikeFunc(false),
	"contains":   containsFunc(false),
	"icontains":  containsFunc(true),
}

func likeFunc(caseInsensitive bool) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, arityError("like", 2, args)
		}
		if value.IsNull(args[0]) || value.IsNull(args[1]) {
			return value.NullValue, nil
		}
		pattern, err := cast.ToStringE(args[1])
		if err != nil {
			return nil, err
		}
		rePattern := sqlPatternToRegex(pattern)
		return matchAnchored(args[0], rePattern, caseInsensitive)
	}
}

func rlikeFunc(caseInsensitive bool) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, arityError("rlike", 2, args)
		}
		if value.IsNull(args[0]) || value.IsNull(args[1]) {
			return value.NullValue, nil
		}
		pattern, err := cast.ToStringE(args[1])
		if err != nil {
			return nil, err
		}
		return matchAnchored(args[0], pattern, caseInsensitive)
	}
}

// sqlPatternToRegex escapes pattern as a literal regex, then reintroduces
// `%` (any run of characters) and `_` (any single character) as `.*`/`.`.
func sqlPatternToRegex(pattern string) string {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `%`, `.*`)
	escaped = strings.ReplaceAll(escaped, `_`, `.`)
	return escaped
}

// matchAnchored compiles rePattern anchored at both ends (DOTALL, so `.`
// spans newlines in multi-line `text`/`lines` values), and applies it to
// every element of a list-typed value or to a scalar's own string form.
func matchAnchored(v value.Value, rePattern string, caseInsensitive bool) (value.Value, error) {
	prefix := "(?s)"
	if caseInsensitive {
		prefix = "(?is)"
	}
	re, err := regexp.Compile("^" + prefix + "(?:" + rePattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if list, ok := v.(value.List); ok {
		for _, elem := range list {
			s, err := cast.ToStringE(elem)
			if err != nil {
				continue
			}
			if re.MatchString(s) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	return value.Bool(re.MatchString(s)), nil
}

func containsFunc(caseInsensitive bool) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, arityError("contains", 2, args)
		}
		if value.IsNull(args[0]) || value.IsNull(args[1]) {
			return value.NullValue, nil
		}
		needle, err := cast.ToStringE(args[1])
		if err != nil {
			return nil, err
		}
		if caseInsensitive {
			needle = strings.ToLower(needle)
		}
		if list, ok := args[0].(value.List); ok {
			for _, elem := range list {
				s, err := cast.ToStringE(elem)
				if err != nil {
					continue
				}
				if caseInsensitive {
					s = strings.ToLower(s)
				}
				if strings.Contains(s, needle) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		}
		s, err := cast.ToStringE(args[0])
		if err != nil {
			return nil, err
		}
		if caseInsensitive {
			s = strings.ToLower(s)
		}
		return value.Bool(strings.Contains(s, needle)), nil
	}
}
