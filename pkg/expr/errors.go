package expr

import (
	"errors"
	"fmt"
)

// ErrEmptyExpression is returned when the input holds no tokens at all.
var ErrEmptyExpression = errors.New("empty expression")

// LexError reports input containing characters outside the expression alphabet.
type LexError struct {
	Input string
	Err   error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid characters in expression: %s", e.Input)
}

func (e *LexError) Unwrap() error { return e.Err }

// ParseError reports a grammar violation. No partial AST accompanies it.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func errUnexpectedEnd() error { return &ParseError{Msg: "unexpected end of expression"} }

func errMissingParen() error { return &ParseError{Msg: "missing closing parenthesis"} }

func errUnexpectedToken(tok Token) error {
	return &ParseError{Msg: "unexpected token: " + tok.Text}
}

func errTooDeep(max int) error {
	return &ParseError{Msg: fmt.Sprintf("expression nesting exceeds maximum depth of %d", max)}
}

// NodeError reports a wire-encoded node that is neither a number nor an
// operation of the expected shape.
type NodeError struct {
	Reason string
}

func (e *NodeError) Error() string { return e.Reason }
