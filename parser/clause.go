package parser

import (
	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/token"
)

// selectClause parses "SELECT *" or "SELECT expr [, expr ...]". tok is the
// already-consumed SELECT keyword.
func selectClause(p *Parser, tok token.Item) (*ast.Node, error) {
	if p.token().Kind == token.Mul {
		star := p.advance()
		return ast.NewSelectStar(token.Span{Start: tok.Span.Start, End: star.Span.End}), nil
	}
	exprs, err := p.delimitedExprs()
	if err != nil {
		return nil, err
	}
	return ast.NewSelect(exprs, spanOfList(tok, exprs)), nil
}

// fromClause parses "FROM expr", where expr typically evaluates to a
// directory path.
func fromClause(p *Parser, tok token.Item) (*ast.Node, error) {
	return p.expr(0)
}

// whereClause parses "WHERE expr".
func whereClause(p *Parser, tok token.Item) (*ast.Node, error) {
	return p.expr(0)
}

// groupClause parses "GROUP BY expr [, expr ...]".
func groupClause(p *Parser, tok token.Item) (*ast.Node, error) {
	if _, err := p.expect(token.By); err != nil {
		return nil, err
	}
	exprs, err := p.delimitedExprs()
	if err != nil {
		return nil, err
	}
	return ast.NewGroup(exprs, spanOfList(tok, exprs)), nil
}

// havingClause parses "HAVING expr".
func havingClause(p *Parser, tok token.Item) (*ast.Node, error) {
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return ast.NewHaving(cond, token.Span{Start: tok.Span.Start, End: cond.Span.End}), nil
}

// orderClause parses "ORDER BY expr [ASC|DESC] [, expr [ASC|DESC] ...]".
func orderClause(p *Parser, tok token.Item) (*ast.Node, error) {
	if _, err := p.expect(token.By); err != nil {
		return nil, err
	}
	var parts []*ast.Node
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		dir := ast.Asc
		end := e.Span.End
		switch {
		case p.skip(token.Asc):
			dir = ast.Asc
		case p.token().Kind == token.Desc:
			descTok := p.advance()
			dir = ast.Desc
			end = descTok.Span.End
		}
		parts = append(parts, ast.NewOrderByPart(e, dir, token.Span{Start: e.Span.Start, End: end}))
		if !p.skip(token.Comma) {
			break
		}
	}
	return ast.NewOrder(parts, spanOfList(tok, parts)), nil
}

// limitClause parses "LIMIT expr".
func limitClause(p *Parser, tok token.Item) (*ast.Node, error) {
	return p.expr(0)
}

// offsetClause parses "OFFSET expr".
func offsetClause(p *Parser, tok token.Item) (*ast.Node, error) {
	return p.expr(0)
}

func spanOfList(tok token.Item, nodes []*ast.Node) token.Span {
	if len(nodes) == 0 {
		return tok.Span
	}
	return token.Span{Start: tok.Span.Start, End: nodes[len(nodes)-1].Span.End}
}
