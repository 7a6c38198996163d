// Package lexer turns query source text into a token stream.
//
// Rule order mirrors the reference tokenizer this package is grounded on:
// keywords, identifiers, operators (longest match), single-quoted strings,
// number literals, whitespace, then single-character specials. Specials are
// tried after numbers so that ".2" lexes as a number rather than "." then
// "2".
package lexer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alexandershov/lsql/internal/log"
	"github.com/alexandershov/lsql/token"
)

var lexLog = log.ForStage("lexer")

// Error is returned when no rule matches at the current position.
type Error struct {
	Pos     token.Pos
	Excerpt string
}

func (e *Error) Error() string {
	return fmt.Sprintf("can't tokenize at %s: %q", e.Pos, e.Excerpt)
}

// SuffixError is returned when a number literal carries a suffix that is
// not in the known size/time suffix table.
type SuffixError struct {
	Suffix string
	Span   token.Span
}

func (e *SuffixError) Error() string {
	return fmt.Sprintf("unknown literal suffix %q at %s (known: %s)", e.Suffix, e.Span, strings.Join(e.KnownSuffixes(), ", "))
}

// KnownSuffixes returns the recognized size/time suffixes, sorted.
func (e *SuffixError) KnownSuffixes() []string {
	out := make([]string, 0, len(literalSuffixes))
	for k := range literalSuffixes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// unit -> multiplier, merged size and time suffixes. Matching is
// case-insensitive; keys here are already lowercase.
var literalSuffixes = map[string]float64{
	"k": 1024, "kb": 1024,
	"m": 1024 * 1024, "mb": 1024 * 1024,
	"g": 1024 * 1024 * 1024, "gb": 1024 * 1024 * 1024,

	"minute": 60, "minutes": 60,
	"hour": 3600, "hours": 3600,
	"day": 86400, "days": 86400,
	"week": 86400 * 7, "weeks": 86400 * 7,
	"month": 86400 * 30, "months": 86400 * 30,
	"year": 86400 * 365, "years": 86400 * 365,
}

var (
	nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	wsRe   = regexp.MustCompile(`^[ \t\r\n]+`)
	strRe  = regexp.MustCompile(`^'(([^']|'')*)'`)

	// Three shapes, in this order, mirroring the reference grammar:
	// [int].float[e[+-]exp][suffix] ; int.[e[+-]exp][suffix] ; int[e[+-]exp][suffix]
	numRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?P<int>[0-9]*)\.(?P<float>[0-9]+)(?:e(?P<exp>[+-]?[0-9]+))?(?P<suffix>[A-Za-z]+)?`),
		regexp.MustCompile(`(?i)^(?P<int>[0-9]+)\.(?P<float>)(?:e(?P<exp>[+-]?[0-9]+))?(?P<suffix>[A-Za-z]+)?`),
		regexp.MustCompile(`(?i)^(?P<int>[0-9]+)(?P<float>)(?:e(?P<exp>[+-]?[0-9]+))?(?P<suffix>[A-Za-z]+)?`),
	}
)

// operators, longest spelling first -- Go's RE2 engine forbids the
// negative-lookahead trick the reference tokenizer uses to stop "<>" being
// split into "<" then ">", so this package does the equivalent with an
// explicit longest-match table instead of a lookahead-guarded regex.
type operatorRule struct {
	text string
	kind token.Kind
}

var operatorRules = func() []operatorRule {
	rules := []operatorRule{
		{"||", token.Concat},
		{"<>", token.Ne},
		{"!=", token.Ne},
		{"<=", token.Lte},
		{">=", token.Gte},
		{"/", token.Div},
		{"=", token.Eq},
		{">", token.Gt},
		{"<", token.Lt},
		{"-", token.Minus},
		{"%", token.Modulo},
		{"*", token.Mul},
		{"+", token.Plus},
		{"^", token.Power},
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].text) > len(rules[j].text)
	})
	return rules
}()

var specials = map[byte]token.Kind{
	')': token.RParen,
	',': token.Comma,
	'(': token.LParen,
	'.': token.Period,
}

// Lexer tokenizes one query string. Instances are obtained from a sync.Pool
// via Get/Put so repeated command invocations don't re-allocate rule state.
type Lexer struct {
	src     string
	pos     int // byte offset
	line    int
	lineOff int // byte offset of the start of the current line

	peeked    *token.Item
	peekedErr error
	done      bool
}

var pool = sync.Pool{New: func() interface{} { return &Lexer{} }}

// Get returns a Lexer ready to tokenize src, either fresh or recycled from
// the pool.
func Get(src string) *Lexer {
	l := pool.Get().(*Lexer)
	l.Reset(src)
	return l
}

// Put returns l to the pool for reuse. l must not be used afterward.
func Put(l *Lexer) {
	pool.Put(l)
}

// Reset reconfigures l to tokenize a new source string.
func (l *Lexer) Reset(src string) {
	l.src = src
	l.pos = 0
	l.line = 1
	l.lineOff = 0
	l.peeked = nil
	l.peekedErr = nil
	l.done = false
}

func (l *Lexer) posAt(byteOffset int) token.Pos {
	col := 1 + utf8.RuneCountInString(l.src[l.lineOff:byteOffset])
	return token.Pos{Offset: utf8.RuneCountInString(l.src[:byteOffset]), Line: l.line, Column: col}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (token.Item, error) {
	if l.peeked == nil && l.peekedErr == nil {
		it, err := l.scan()
		l.peeked = &it
		l.peekedErr = err
	}
	if l.peekedErr != nil {
		return token.Item{}, l.peekedErr
	}
	return *l.peeked, nil
}

// Next consumes and returns the next non-whitespace token, or EndQuery once
// the input is exhausted.
func (l *Lexer) Next() (token.Item, error) {
	if l.peeked != nil || l.peekedErr != nil {
		it, err := *l.peeked, l.peekedErr
		l.peeked, l.peekedErr = nil, nil
		return it, err
	}
	return l.scan()
}

// scan finds the next emittable (non-whitespace) token, advancing l.pos.
func (l *Lexer) scan() (token.Item, error) {
	for {
		if l.done {
			p := l.posAt(l.pos)
			return token.Item{Kind: token.EndQuery, Text: "", Span: token.Span{Start: p, End: p}}, nil
		}
		if l.pos >= len(l.src) {
			l.done = true
			p := l.posAt(l.pos)
			return token.Item{Kind: token.EndQuery, Text: "", Span: token.Span{Start: p, End: p}}, nil
		}
		it, n, err := l.matchOne()
		if err != nil {
			return token.Item{}, err
		}
		l.advance(n)
		if it.Kind == wsKind {
			continue
		}
		return it, nil
	}
}

// wsKind is a private sentinel kind used only inside matchOne/scan to signal
// "whitespace, keep scanning"; it never escapes this package.
const wsKind token.Kind = -1

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.src[l.pos+i] == '\n' {
			l.line++
			l.lineOff = l.pos + i + 1
		}
	}
	l.pos += n
}

func (l *Lexer) matchOne() (token.Item, int, error) {
	rest := l.src[l.pos:]
	start := l.posAt(l.pos)

	// 1. keywords (word-boundary, case-insensitive) and 2. identifiers
	// share one regex: a bare word is either a reserved keyword (folded to
	// lowercase) or a plain identifier.
	if loc := nameRe.FindStringIndex(rest); loc != nil {
		word := rest[loc[0]:loc[1]]
		end := l.posAt(l.pos + loc[1])
		if kind, ok := token.Keywords[strings.ToLower(word)]; ok {
			lexLog.Debugf("matched keyword %q at %s", word, start)
			return token.Item{Kind: kind, Text: word, Span: token.Span{Start: start, End: end}}, loc[1], nil
		}
		lexLog.Debugf("matched name %q at %s", word, start)
		return token.Item{Kind: token.Name, Text: word, Span: token.Span{Start: start, End: end}}, loc[1], nil
	}

	// 3. operators, longest match.
	for _, rule := range operatorRules {
		if strings.HasPrefix(rest, rule.text) {
			end := l.posAt(l.pos + len(rule.text))
			return token.Item{Kind: rule.kind, Text: rule.text, Span: token.Span{Start: start, End: end}}, len(rule.text), nil
		}
	}

	// 4. single-quoted strings, '' is an embedded quote.
	if loc := strRe.FindStringSubmatchIndex(rest); loc != nil {
		raw := rest[loc[2]:loc[3]]
		unescaped := strings.ReplaceAll(raw, "''", "'")
		end := l.posAt(l.pos + loc[1])
		return token.Item{Kind: token.String, Text: rest[loc[0]:loc[1]], Span: token.Span{Start: start, End: end}, Literal: unescaped}, loc[1], nil
	}

	// 5. number literals.
	for _, re := range numRes {
		m := re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		names := re.SubexpNames()
		var intPart, floatPart, expPart, suffix string
		for i, name := range names {
			switch name {
			case "int":
				intPart = m[i]
			case "float":
				floatPart = m[i]
			case "exp":
				expPart = m[i]
			case "suffix":
				suffix = m[i]
			}
		}
		if intPart == "" && floatPart == "" {
			continue
		}
		matched := m[0]
		end := l.posAt(l.pos + len(matched))
		span := token.Span{Start: start, End: end}
		lit, err := parseNumber(intPart, floatPart, expPart, suffix, span)
		if err != nil {
			return token.Item{}, 0, err
		}
		return token.Item{Kind: token.Number, Text: matched, Span: span, Literal: lit}, len(matched), nil
	}

	// 6. whitespace.
	if loc := wsRe.FindStringIndex(rest); loc != nil {
		return token.Item{Kind: wsKind}, loc[1], nil
	}

	// 7. specials -- after numbers, so ".2" is a number not "." then "2".
	if kind, ok := specials[rest[0]]; ok {
		end := l.posAt(l.pos + 1)
		return token.Item{Kind: kind, Text: rest[0:1], Span: token.Span{Start: start, End: end}}, 1, nil
	}

	excerpt := rest
	if len(excerpt) > 20 {
		excerpt = excerpt[:20]
	}
	return token.Item{}, 0, &Error{Pos: start, Excerpt: excerpt}
}

// TokenizeAll runs a Lexer to completion and returns every token including
// the trailing EndQuery sentinel. The parser consumes its input this way,
// rather than streaming token-by-token, mirroring the reference parser's
// own list-of-tokens-plus-index design.
func TokenizeAll(src string) ([]token.Item, error) {
	l := Get(src)
	defer Put(l)
	var items []token.Item
	for {
		it, err := l.Next()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		if it.Kind == token.EndQuery {
			return items, nil
		}
	}
}

func parseNumber(intPart, floatPart, expPart, suffix string, span token.Span) (interface{}, error) {
	var result float64
	isFloat := floatPart != ""
	if intPart != "" {
		n, _ := strconv.ParseFloat(intPart, 64)
		result = n
	}
	if floatPart != "" {
		f, _ := strconv.ParseFloat("0."+floatPart, 64)
		result += f
	}
	if expPart != "" {
		exp, _ := strconv.ParseFloat(expPart, 64)
		result *= pow10(exp)
	}
	if suffix != "" {
		mult, ok := literalSuffixes[strings.ToLower(suffix)]
		if !ok {
			return nil, &SuffixError{Suffix: suffix, Span: span}
		}
		result *= mult
		if mult != float64(int64(mult)) {
			isFloat = true
		}
	}
	if !isFloat && result == float64(int64(result)) {
		return int64(result), nil
	}
	return result, nil
}

func pow10(exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0; i < int(exp); i++ {
		result *= 10
	}
	if neg {
		return 1 / result
	}
	return result
}
