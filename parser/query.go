package parser

import (
	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/token"
)

// clauseOrder is the fixed sequence query.py's reference driver checks
// clauses in; each is optional, but when present must appear in this
// order.
var clauseOrder = []token.Kind{
	token.Select, token.From, token.Where, token.Group,
	token.Having, token.Order, token.Limit, token.Offset,
}

// ParseQuery parses a full query: an optional clause of each kind, each at
// most once, in clauseOrder, followed by end of input. The implicit SELECT
// (the from-type's default columns) and implicit FROM (when either is
// omitted) are filled in later by the
// rewrite pass, not here -- the parser only records what was written.
func (p *Parser) ParseQuery() (*ast.Node, error) {
	start := p.token()
	slots := make(map[token.Kind]*ast.Node, len(clauseOrder))
	for _, kind := range clauseOrder {
		if p.token().Kind != kind {
			continue
		}
		tok := p.advance()
		r, ok := rules[kind]
		if !ok || r.clause == nil {
			return nil, errorf(tok, "%s clause is not implemented", kind)
		}
		node, err := r.clause(p, tok)
		if err != nil {
			return nil, err
		}
		slots[kind] = node
	}
	if p.token().Kind != token.EndQuery {
		tok := p.token()
		if tokenUnimplemented(tok.Kind) {
			return nil, errorf(tok, "%s is a reserved keyword not supported by this grammar", tok.Kind)
		}
		return nil, errorf(tok, "unexpected trailing input starting at %s", tok.Kind)
	}
	end := p.token()
	parseLog.Debugf("parsed query with clauses: %v", clausePresence(slots))
	return ast.NewQuery(
		slots[token.Select], slots[token.From], slots[token.Where],
		slots[token.Group], slots[token.Having], slots[token.Order],
		slots[token.Limit], slots[token.Offset],
		token.Span{Start: start.Span.Start, End: end.Span.End},
	), nil
}

func clausePresence(slots map[token.Kind]*ast.Node) []string {
	var present []string
	for _, kind := range clauseOrder {
		if slots[kind] != nil {
			present = append(present, kind.String())
		}
	}
	return present
}
