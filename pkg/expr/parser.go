package expr

import (
	"math"
	"strconv"
)

// DefaultMaxDepth bounds the operation nesting accepted by Parse.
const DefaultMaxDepth = 100

// Parser parses arithmetic expressions with the usual precedence:
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := NUMBER | '(' expression ')'
//
// All binary operators are left-associative. There are no unary operators.
type Parser struct {
	// MaxDepth limits both the AST depth and parenthesis nesting.
	// Zero means DefaultMaxDepth.
	MaxDepth int
}

// Parse parses input with DefaultMaxDepth.
func Parse(input string) (Node, error) {
	return Parser{}.Parse(input)
}

// Parse tokenizes and parses input into an AST.
func (p Parser) Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	limit := p.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	s := &state{tokens: tokens, limit: limit}

	n, err := s.expression()
	if err != nil {
		return nil, err
	}
	if tok, ok := s.peek(); ok {
		return nil, errUnexpectedToken(tok)
	}
	if Depth(n) > limit {
		return nil, errTooDeep(limit)
	}
	return n, nil
}

type state struct {
	tokens []Token
	pos    int
	parens int
	limit  int
}

func (s *state) peek() (Token, bool) {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos], true
	}
	return Token{}, false
}

func (s *state) peekSymbol(symbols ...string) (Operator, bool) {
	tok, ok := s.peek()
	if !ok || tok.Kind != SymbolToken {
		return "", false
	}
	for _, sym := range symbols {
		if tok.Text == sym {
			return Operator(sym), true
		}
	}
	return "", false
}

func (s *state) expression() (Node, error) {
	left, err := s.term()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := s.peekSymbol("+", "-")
		if !ok {
			return left, nil
		}
		s.pos++
		right, err := s.term()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: op, Left: left, Right: right}
	}
}

func (s *state) term() (Node, error) {
	left, err := s.factor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := s.peekSymbol("*", "/")
		if !ok {
			return left, nil
		}
		s.pos++
		right, err := s.factor()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: op, Left: left, Right: right}
	}
}

func (s *state) factor() (Node, error) {
	tok, ok := s.peek()
	if !ok {
		return nil, errUnexpectedEnd()
	}

	if tok.Kind == SymbolToken && tok.Text == "(" {
		s.pos++
		s.parens++
		if s.parens > s.limit {
			return nil, errTooDeep(s.limit)
		}
		n, err := s.expression()
		if err != nil {
			return nil, err
		}
		if closing, ok := s.peek(); !ok || closing.Text != ")" {
			return nil, errMissingParen()
		}
		s.pos++
		s.parens--
		return n, nil
	}

	if tok.Kind == NumberToken {
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil || math.IsInf(v, 0) {
			return nil, errUnexpectedToken(tok)
		}
		s.pos++
		return &Number{Value: v}, nil
	}

	return nil, errUnexpectedToken(tok)
}
