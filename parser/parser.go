// Package parser implements a Pratt (operator-precedence) parser over the
// token stream produced by package lexer, building the unified ast.Node
// tree. Each token kind that can appear in expression position carries up
// to three roles -- prefix (it starts an expression), infix (it continues
// one, given an already-parsed left operand), and clause (it starts a
// top-level query clause) -- matching the reference parser's per-token
// prefix/suffix/clause dispatch, here collapsed into one dispatch table
// keyed by token.Kind instead of one Go type per keyword.
package parser

import (
	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/log"
	"github.com/alexandershov/lsql/lexer"
	"github.com/alexandershov/lsql/token"
)

var parseLog = log.ForStage("parser")

// Binding power bands, matching the precedence table this grammar is
// specified against, coarsest (loosest) to tightest. Multiplied by 100 to
// leave room for right-associative adjustments without colliding bands.
const (
	bpTerminator = 0
	bpOr         = 100
	bpAnd        = 200
	bpNot        = 250 // NOT <expr>, and NOT IN/BETWEEN/LIKE-family as a unit
	bpEquality   = 300
	bpOrdering   = 400
	bpTextMatch  = 500
	bpBetween    = 600
	bpIn         = 700
	bpConcat     = 800
	bpAdditive   = 900
	bpMultiplic  = 1000
	bpPower      = 1100
	bpCall       = 1200
	bpUnary      = 100000 // prefix +/-: above every infix lbp, a call's "(" included, so binds only to the immediate primary
)

type prefixFn func(p *Parser, tok token.Item) (*ast.Node, error)
type infixFn func(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error)
type clauseFn func(p *Parser, tok token.Item) (*ast.Node, error)

type rule struct {
	prefix prefixFn
	infix  infixFn
	clause clauseFn
	lbp    int // binding power checked by the Pratt loop to decide whether to continue
	rbp    int // binding power passed to the recursive parse of the right operand
}

// binaryOpFunc parses a standard `left <op> expr(rbp)` infix, producing a
// call to the builtin operator function named fn.
func binaryOpFunc(fn string, rbp int) infixFn {
	return func(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
		right, err := p.expr(rbp)
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(fn, []*ast.Node{left, right}, spanOf(left, right)), nil
	}
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.EndQuery: {lbp: bpTerminator},
		token.RParen:   {lbp: bpTerminator},
		token.Comma:    {lbp: bpTerminator},
		token.From:     {lbp: bpTerminator, clause: fromClause},
		token.Where:    {lbp: bpTerminator, clause: whereClause},
		token.Group:    {lbp: bpTerminator, clause: groupClause},
		token.Having:   {lbp: bpTerminator, clause: havingClause},
		token.Order:    {lbp: bpTerminator, clause: orderClause},
		token.Limit:    {lbp: bpTerminator, clause: limitClause},
		token.Offset:   {lbp: bpTerminator, clause: offsetClause},
		token.By:       {lbp: bpTerminator},
		token.Asc:      {lbp: bpTerminator},
		token.Desc:     {lbp: bpTerminator},
		token.And:      {lbp: bpAnd, rbp: bpAnd, infix: andInfix},

		token.Select: {clause: selectClause},

		token.Null:   {prefix: nullPrefix},
		token.Number: {prefix: numberPrefix},
		token.String: {prefix: stringPrefix},
		token.Name:   {prefix: namePrefix},
		token.LParen: {prefix: groupPrefix, lbp: bpCall, infix: callInfix},
		token.Count:  {prefix: countPrefix},

		token.Minus: {prefix: unaryMinusPrefix, lbp: bpAdditive, rbp: bpAdditive, infix: binaryOpFunc("-", bpAdditive)},
		token.Plus:  {prefix: unaryPlusPrefix, lbp: bpAdditive, rbp: bpAdditive, infix: binaryOpFunc("+", bpAdditive)},

		token.Concat: {lbp: bpConcat, rbp: bpConcat, infix: binaryOpFunc("||", bpConcat)},
		token.Div:    {lbp: bpMultiplic, rbp: bpMultiplic, infix: binaryOpFunc("/", bpMultiplic)},
		token.Mul:    {lbp: bpMultiplic, rbp: bpMultiplic, infix: binaryOpFunc("*", bpMultiplic)},
		token.Modulo: {lbp: bpMultiplic, rbp: bpMultiplic, infix: binaryOpFunc("%", bpMultiplic)},
		token.Power:  {lbp: bpPower, rbp: bpPower - 1, infix: binaryOpFunc("^", bpPower-1)}, // right-assoc

		token.Eq: {lbp: bpEquality, rbp: bpEquality, infix: binaryOpFunc("=", bpEquality)},
		token.Ne: {lbp: bpConcat, rbp: bpConcat, infix: binaryOpFunc("<>", bpConcat)},
		token.Lt:  {lbp: bpOrdering, rbp: bpOrdering, infix: binaryOpFunc("<", bpOrdering)},
		token.Lte: {lbp: bpConcat, rbp: bpConcat, infix: binaryOpFunc("<=", bpConcat)},
		token.Gt:  {lbp: bpOrdering, rbp: bpOrdering, infix: binaryOpFunc(">", bpOrdering)},
		token.Gte: {lbp: bpConcat, rbp: bpConcat, infix: binaryOpFunc(">=", bpConcat)},

		token.Like:      {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("like", bpTextMatch)},
		token.Ilike:     {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("ilike", bpTextMatch)},
		token.Rlike:     {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("rlike", bpTextMatch)},
		token.Rilike:    {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("rilike", bpTextMatch)},
		token.LikeRegex: {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("like_regex", bpTextMatch)},
		token.Contains:  {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("contains", bpTextMatch)},
		token.Icontains: {lbp: bpTextMatch, rbp: bpTextMatch, infix: binaryOpFunc("icontains", bpTextMatch)},

		token.Between: {lbp: bpBetween, rbp: bpBetween, infix: betweenInfix},
		token.In:      {lbp: bpIn, rbp: bpIn, infix: inInfix},

		token.Isnull:  {lbp: bpEquality, rbp: bpEquality, infix: postfixCheck("isnull")},
		token.Notnull: {lbp: bpEquality, rbp: bpEquality, infix: postfixCheck("notnull")},
		token.Is:      {lbp: bpEquality, rbp: bpEquality, infix: isInfix},

		token.Not: {prefix: notPrefix, lbp: bpNot, rbp: bpNot, infix: notInfix},
		token.Or:  {lbp: bpOr, rbp: bpOr, infix: orInfix},
	}
}

func andInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	right, err := p.expr(bpAnd)
	if err != nil {
		return nil, err
	}
	return ast.NewAnd(left, right, spanOf(left, right)), nil
}

func orInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	right, err := p.expr(bpOr)
	if err != nil {
		return nil, err
	}
	return ast.NewOr(left, right, spanOf(left, right)), nil
}

func spanOf(a, b *ast.Node) token.Span {
	if a == nil {
		return b.Span
	}
	return token.Span{Start: a.Span.Start, End: b.Span.End}
}

// Parser drives a fixed slice of tokens with a single cursor, mirroring
// the reference parser's list-of-tokens-plus-index design rather than
// streaming from the lexer directly -- several productions (BETWEEN ...
// AND, ORDER BY lists, parenthesized argument lists) need to look several
// tokens ahead and backtrack-free re-derive their span.
type Parser struct {
	tokens []token.Item
	index  int
}

// New builds a Parser over a pre-tokenized stream (see lexer.TokenizeAll).
func New(tokens []token.Item) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses src into a Query node in one call.
func Parse(src string) (*ast.Node, error) {
	tokens, err := lexer.TokenizeAll(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseQuery()
}

func (p *Parser) token() token.Item {
	if p.index >= len(p.tokens) {
		return token.Item{Kind: token.EndQuery}
	}
	return p.tokens[p.index]
}

func (p *Parser) advance() token.Item {
	tok := p.token()
	if p.index < len(p.tokens) {
		p.index++
	}
	return tok
}

func (p *Parser) expect(kind token.Kind) (token.Item, error) {
	tok := p.token()
	if tok.Kind != kind {
		return token.Item{}, errorf(tok, "expected %s, got %s", kind, tok.Kind)
	}
	return p.advance(), nil
}

func (p *Parser) skip(kind token.Kind) bool {
	if p.token().Kind == kind {
		p.advance()
		return true
	}
	return false
}

// expr is the core Pratt loop: parse a prefix production, then keep
// folding in infix productions whose lbp exceeds minBP.
func (p *Parser) expr(minBP int) (*ast.Node, error) {
	tok := p.advance()
	r, ok := rules[tok.Kind]
	if !ok || r.prefix == nil {
		if tok.Kind.IsKeyword() && tokenUnimplemented(tok.Kind) {
			return nil, errorf(tok, "%s is a reserved keyword not supported by this grammar", tok.Kind)
		}
		return nil, errorf(tok, "unexpected token %s", tok.Kind)
	}
	left, err := r.prefix(p, tok)
	if err != nil {
		return nil, err
	}
	for {
		nt := p.token()
		nr, ok := rules[nt.Kind]
		if !ok || nr.infix == nil || nr.lbp <= minBP {
			break
		}
		p.advance()
		left, err = nr.infix(p, left, nt)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func tokenUnimplemented(k token.Kind) bool { return token.Unimplemented[k] }

// delimitedExprs parses a comma-separated list of expr(0)s.
func (p *Parser) delimitedExprs() ([]*ast.Node, error) {
	var out []*ast.Node
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.skip(token.Comma) {
			return out, nil
		}
	}
}
