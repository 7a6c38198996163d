package token

// Keywords maps the lowercase spelling of every reserved keyword to its
// Kind. Lookup by a lexer must first fold the candidate word to lowercase.
var Keywords = map[string]Kind{
	"and":        And,
	"as":         As,
	"asc":        Asc,
	"between":    Between,
	"by":         By,
	"case":       Case,
	"contains":   Contains,
	"count":      Count,
	"delete":     Delete,
	"desc":       Desc,
	"drop":       Drop,
	"else":       Else,
	"end":        End,
	"exists":     Exists,
	"from":       From,
	"group":      Group,
	"having":     Having,
	"icontains":  Icontains,
	"ilike":      Ilike,
	"in":         In,
	"is":         Is,
	"isnull":     Isnull,
	"join":       Join,
	"left":       Left,
	"like":       Like,
	"like_regex": LikeRegex,
	"limit":      Limit,
	"not":        Not,
	"notnull":    Notnull,
	"null":       Null,
	"offset":     Offset,
	"or":         Or,
	"order":      Order,
	"outer":      Outer,
	"rilike":     Rilike,
	"rlike":      Rlike,
	"select":     Select,
	"then":       Then,
	"update":     Update,
	"where":      Where,
}

// Unimplemented is the subset of keywords that lex successfully but are not
// executable: using one in prefix/infix position raises a parse error
// naming it as reserved-but-unsupported, rather than "unexpected token".
// Join/DML/CASE/subquery support is out of scope for this grammar; AS
// (column aliasing) is reserved but deliberately unimplemented, matching
// the reference parser's own AsToken. IS/ISNULL/NOTNULL/NOT are NOT in
// this set -- they're implemented (see parser.notPrefix/notInfix/isInfix/postfixCheck).
var Unimplemented = map[Kind]bool{
	Delete: true,
	Update: true,
	Drop:   true,
	Join:   true,
	Left:   true,
	Outer:  true,
	Case:   true,
	Else:   true,
	Then:   true,
	End:    true,
	Exists: true,
	As:     true,
}
