package parser

import (
	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/token"
)

func nullPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	return ast.NewNull(tok.Span), nil
}

func numberPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	switch n := tok.Literal.(type) {
	case int64:
		return ast.NewValue(value.Int(n), tok.Span), nil
	case float64:
		return ast.NewValue(value.Float(n), tok.Span), nil
	default:
		return nil, errorf(tok, "malformed number literal")
	}
}

func stringPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	s, _ := tok.Literal.(string)
	return ast.NewValue(value.NewStr(s), tok.Span), nil
}

func namePrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	return ast.NewName(tok.Text, tok.Span), nil
}

// groupPrefix parses a parenthesized grouped expression: "(" expr ")".
// Function calls are handled separately by callInfix, triggered only when
// "(" follows an already-parsed Name.
func groupPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	if p.token().Kind == token.RParen {
		return nil, errorf(p.token(), "empty parenthesized expression")
	}
	inner, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	inner.Span = token.Span{Start: tok.Span.Start, End: closeTok.Span.End}
	return inner, nil
}

// callInfix turns "(" immediately after a Name into a function call. It is
// also reached after a parenthesized group if that group's value happens
// to be a bare Name -- in that position left is a Name node built by
// namePrefix, never a group, since groupPrefix only fires in prefix
// position.
func callInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	if left.Kind != ast.Name {
		return nil, errorf(tok, "only a name can be called as a function")
	}
	args, err := parseCallArgs(p)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction(left.Ident, args, token.Span{Start: left.Span.Start, End: closeTok.Span.End}), nil
}

func countPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	args, err := parseCallArgs(p)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction("count", args, token.Span{Start: tok.Span.Start, End: closeTok.Span.End}), nil
}

// parseCallArgs parses a call's argument list. "*" alone stands for a
// literal 1 -- COUNT(*) and count(*) both reach this helper, so the
// rewrite rewrite pass's later "is this an aggregate call" check sees the
// same shape regardless of spelling.
func parseCallArgs(p *Parser) ([]*ast.Node, error) {
	if p.token().Kind == token.RParen {
		return nil, nil
	}
	if p.token().Kind == token.Mul {
		star := p.advance()
		return []*ast.Node{ast.NewValue(value.Int(1), star.Span)}, nil
	}
	return p.delimitedExprs()
}

func unaryMinusPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	operand, err := p.expr(bpUnary)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction("negate", []*ast.Node{operand}, token.Span{Start: tok.Span.Start, End: operand.Span.End}), nil
}

// unaryPlusPrefix is a pass-through: unary "+" doesn't change the value.
func unaryPlusPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	return p.expr(bpUnary)
}

func betweenInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	lo, err := p.expr(rules[token.And].rbp)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.And); err != nil {
		return nil, err
	}
	hi, err := p.expr(rules[token.Between].rbp)
	if err != nil {
		return nil, err
	}
	return ast.NewBetween(left, lo, hi, token.Span{Start: left.Span.Start, End: hi.Span.End}), nil
}

func inInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	elems, err := p.delimitedExprs()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	args := append([]*ast.Node{left}, elems...)
	return ast.NewFunction("in", args, token.Span{Start: left.Span.Start, End: closeTok.Span.End}), nil
}

// postfixCheck builds a unary null-check function (ISNULL/NOTNULL) over
// the already-parsed left operand; it consumes no further tokens.
func postfixCheck(fn string) infixFn {
	return func(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
		return ast.NewFunction(fn, []*ast.Node{left}, token.Span{Start: left.Span.Start, End: tok.Span.End}), nil
	}
}

// isInfix parses the standard SQL "x IS [NOT] NULL" spelling of the same
// null checks postfixCheck implements directly.
func isInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	fn := "isnull"
	if p.skip(token.Not) {
		fn = "notnull"
	}
	nullTok, err := p.expect(token.Null)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction(fn, []*ast.Node{left}, token.Span{Start: left.Span.Start, End: nullTok.Span.End}), nil
}

// notPrefix parses unary "NOT expr".
func notPrefix(p *Parser, tok token.Item) (*ast.Node, error) {
	operand, err := p.expr(bpNot)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction("not", []*ast.Node{operand}, token.Span{Start: tok.Span.Start, End: operand.Span.End}), nil
}

// notInfix parses "left NOT IN (...)", "left NOT BETWEEN lo AND hi", and
// "left NOT LIKE pattern" (and the rest of the LIKE family), delegating to
// the positive-form handler and wrapping the result in a NOT call.
func notInfix(p *Parser, left *ast.Node, tok token.Item) (*ast.Node, error) {
	next := p.token()
	var positive infixFn
	switch next.Kind {
	case token.In:
		positive = inInfix
	case token.Between:
		positive = betweenInfix
	case token.Like, token.Ilike, token.Rlike, token.Rilike, token.LikeRegex, token.Contains, token.Icontains:
		r := rules[next.Kind]
		positive = r.infix
	default:
		return nil, errorf(next, "NOT must be followed by IN, BETWEEN, or a LIKE-family operator, got %s", next.Kind)
	}
	p.advance()
	result, err := positive(p, left, next)
	if err != nil {
		return nil, err
	}
	return ast.NewFunction("not", []*ast.Node{result}, token.Span{Start: left.Span.Start, End: result.Span.End}), nil
}
