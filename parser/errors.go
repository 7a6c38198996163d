package parser

import (
	"fmt"

	"github.com/alexandershov/lsql/token"
	"github.com/juju/errors"
)

// Error is a parse-time failure anchored to a token span, rendered with
// the offending token's text.
type Error struct {
	Span token.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Msg)
}

func errorf(tok token.Item, format string, args ...interface{}) error {
	return errors.Trace(&Error{Span: tok.Span, Msg: fmt.Sprintf(format, args...)})
}
