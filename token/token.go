// Package token defines the lexical token kinds of the query language and
// the positions/spans attached to them.
package token

import "fmt"

// Kind discriminates the lexical category of a token.
type Kind int

const (
	// EndQuery is the sentinel that terminates every token stream. Its
	// right binding power is always 0.
	EndQuery Kind = iota

	// Keywords, in the closed reserved set.
	And
	As
	Asc
	Between
	By
	Case
	Contains
	Count
	Delete
	Desc
	Drop
	Else
	End
	Exists
	From
	Group
	Having
	Icontains
	Ilike
	In
	Is
	Isnull
	Join
	Left
	Like
	LikeRegex
	Limit
	Not
	Notnull
	Null
	Offset
	Or
	Order
	Outer
	Rilike
	Rlike
	Select
	Then
	Update
	Where

	// Literals and identifiers.
	Name
	Number
	String

	// Operators, longest match.
	Concat // ||
	Div    // /
	Eq     // =
	Gt     // >
	Gte    // >=
	Lt     // <
	Lte    // <=
	Minus  // -
	Modulo // %
	Mul    // *
	Ne     // <> or !=
	Plus   // +
	Power  // ^

	// Specials.
	LParen
	RParen
	Comma
	Period
)

var kindNames = map[Kind]string{
	EndQuery:  "end of query",
	And:       "AND", As: "AS", Asc: "ASC", Between: "BETWEEN", By: "BY",
	Case: "CASE", Contains: "CONTAINS", Count: "COUNT", Delete: "DELETE",
	Desc: "DESC", Drop: "DROP", Else: "ELSE", End: "END", Exists: "EXISTS",
	From: "FROM", Group: "GROUP", Having: "HAVING", Icontains: "ICONTAINS",
	Ilike: "ILIKE", In: "IN", Is: "IS", Isnull: "ISNULL", Join: "JOIN",
	Left: "LEFT", Like: "LIKE", LikeRegex: "LIKE_REGEX", Limit: "LIMIT",
	Not: "NOT", Notnull: "NOTNULL", Null: "NULL", Offset: "OFFSET", Or: "OR",
	Order: "ORDER", Outer: "OUTER", Rilike: "RILIKE", Rlike: "RLIKE",
	Select: "SELECT", Then: "THEN", Update: "UPDATE", Where: "WHERE",
	Name: "name", Number: "number", String: "string",
	Concat: "||", Div: "/", Eq: "=", Gt: ">", Gte: ">=", Lt: "<", Lte: "<=",
	Minus: "-", Modulo: "%", Mul: "*", Ne: "<>", Plus: "+", Power: "^",
	LParen: "(", RParen: ")", Comma: ",", Period: ".",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is one of the reserved keyword kinds.
func (k Kind) IsKeyword() bool {
	return k >= And && k <= Where
}

// Pos is a position in the source string, in rune offsets.
type Pos struct {
	Offset int // rune offset from the start of input
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) of source positions.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Item is one emitted token: its kind, the original substring, its span,
// and -- for Number/String tokens -- the parsed literal value.
type Item struct {
	Kind Kind
	Text string
	Span Span

	// Literal carries the pre-parsed value for Number tokens (int64 or
	// float64) and the unescaped contents for String tokens (string).
	// Nil for every other kind.
	Literal interface{}
}

func (it Item) String() string {
	return fmt.Sprintf("%s(%q)@%s", it.Kind, it.Text, it.Span)
}
