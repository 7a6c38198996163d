// Package errs defines the typed error kinds this system's pipeline stages
// raise, per-kind rather than per-package, so a caller at the CLI boundary
// can render any of them the same way regardless of which stage produced
// it. Every kind wraps github.com/juju/errors for annotate/trace chaining
// rather than hand-rolled %w wrapping, the way a repo that already
// transitively depends on juju/errors (as the teacher does) would use it
// directly.
package errs

import (
	"fmt"

	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/token"
	"github.com/juju/errors"
)

// CantTokenize reports that no lexer rule matched at pos.
type CantTokenize struct {
	Pos     token.Pos
	Excerpt string
}

func (e *CantTokenize) Error() string {
	return fmt.Sprintf("cannot tokenize input at %s: %q", e.Pos, e.Excerpt)
}

// UnknownLiteralSuffix reports a number literal with an unrecognized unit
// suffix (e.g. `10xb`).
type UnknownLiteralSuffix struct {
	Suffix string
	Span   token.Span
	Known  []string
}

func (e *UnknownLiteralSuffix) Error() string {
	return fmt.Sprintf("unknown literal suffix %q at %s (known: %v)", e.Suffix, e.Span, e.Known)
}

// NotImplementedToken reports a reserved keyword this grammar recognizes
// but does not implement (e.g. DELETE).
type NotImplementedToken struct {
	Span token.Span
	Kind token.Kind
}

func (e *NotImplementedToken) Error() string {
	return fmt.Sprintf("%s is a reserved keyword not supported by this grammar, at %s", e.Kind, e.Span)
}

// UnexpectedToken reports a token at a syntactic join that expected a
// specific kind.
type UnexpectedToken struct {
	Expected token.Kind
	Span     token.Span
	Actual   token.Kind
}

func (e *UnexpectedToken) Error() string {
	return fmt.Sprintf("expected %s, got %s at %s", e.Expected, e.Actual, e.Span)
}

// UnexpectedEnd reports that the token stream was exhausted mid-expression.
type UnexpectedEnd struct {
	Span token.Span
}

func (e *UnexpectedEnd) Error() string {
	return fmt.Sprintf("unexpected end of input at %s", e.Span)
}

// ValueExpected reports a token in prefix position with no prefix handler.
type ValueExpected struct {
	Span token.Span
	Kind token.Kind
}

func (e *ValueExpected) Error() string {
	return fmt.Sprintf("expected a value, got %s at %s", e.Kind, e.Span)
}

// OperatorExpected reports a token in infix position with no binding power.
type OperatorExpected struct {
	Span token.Span
	Kind token.Kind
}

func (e *OperatorExpected) Error() string {
	return fmt.Sprintf("expected an operator, got %s at %s", e.Kind, e.Span)
}

// AggregateInWhere reports an aggregate function call found inside WHERE,
// which has no group to aggregate over.
type AggregateInWhere struct {
	Node *ast.Node
}

func (e *AggregateInWhere) Error() string {
	return fmt.Sprintf("aggregate function %q is not allowed in WHERE, at %s", e.Node.Func, e.Node.Span)
}

// IllegalGroupBy reports a select/order/having reference to a non-grouped
// column, a nested aggregate, or an aggregate inside GROUP BY.
type IllegalGroupBy struct {
	Node   *ast.Node
	Reason string
}

func (e *IllegalGroupBy) Error() string {
	return fmt.Sprintf("illegal GROUP BY: %s, at %s", e.Reason, e.Node.Span)
}

// UnknownColumn reports a column access against a row with no such
// attribute.
type UnknownColumn struct {
	Name string
	Span token.Span
}

func (e *UnknownColumn) Error() string {
	return fmt.Sprintf("unknown column %q at %s", e.Name, e.Span)
}

// UnsupportedPlatform reports a column/feature with no implementation on
// the running platform (e.g. birthtime on Linux).
type UnsupportedPlatform struct {
	Feature string
}

func (e *UnsupportedPlatform) Error() string {
	return fmt.Sprintf("%s is not supported on this platform", e.Feature)
}

// DirectoryDoesNotExist reports a nonexistent or non-directory walk root.
type DirectoryDoesNotExist struct {
	Path string
}

func (e *DirectoryDoesNotExist) Error() string {
	return fmt.Sprintf("directory does not exist: %s", e.Path)
}

// Trace annotates err with the caller's location, via juju/errors. The
// result is a juju wrapper, not err's concrete type; callers further up
// the stack recover the original kind with errors.Cause, as Render does.
func Trace(err error) error {
	return errors.Trace(err)
}

// Annotatef annotates err with a formatted message. As with Trace, the
// underlying kind stays reachable through errors.Cause rather than by a
// type assertion on the returned error.
func Annotatef(err error, format string, args ...interface{}) error {
	return errors.Annotatef(err, format, args...)
}

// Render produces the span-highlighted message the CLI prints for err. For
// kinds without rich span context it falls back to err.Error().
func Render(err error) string {
	cause := errors.Cause(err)
	switch e := cause.(type) {
	case *CantTokenize:
		return fmt.Sprintf("syntax error: %s\n  at %s", e.Excerpt, e.Pos)
	case *UnknownLiteralSuffix:
		return fmt.Sprintf("syntax error: unknown suffix %q\n  at %s", e.Suffix, e.Span)
	case *NotImplementedToken:
		return fmt.Sprintf("not implemented: %s\n  at %s", e.Kind, e.Span)
	case *UnexpectedToken:
		return fmt.Sprintf("syntax error: expected %s, got %s\n  at %s", e.Expected, e.Actual, e.Span)
	case *UnexpectedEnd:
		return fmt.Sprintf("syntax error: unexpected end of input\n  at %s", e.Span)
	case *ValueExpected:
		return fmt.Sprintf("syntax error: expected a value\n  at %s", e.Span)
	case *OperatorExpected:
		return fmt.Sprintf("syntax error: expected an operator\n  at %s", e.Span)
	case *AggregateInWhere:
		return fmt.Sprintf("semantic error: aggregate %q not allowed in WHERE\n  at %s", e.Node.Func, e.Node.Span)
	case *IllegalGroupBy:
		return fmt.Sprintf("semantic error: illegal GROUP BY (%s)\n  at %s", e.Reason, e.Node.Span)
	case *UnknownColumn:
		return fmt.Sprintf("semantic error: unknown column %q\n  at %s", e.Name, e.Span)
	case *UnsupportedPlatform:
		return fmt.Sprintf("runtime error: %s", e.Error())
	case *DirectoryDoesNotExist:
		return fmt.Sprintf("runtime error: %s", e.Error())
	default:
		return err.Error()
	}
}
