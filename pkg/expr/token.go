package expr

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a token.
type Kind int

const (
	NumberToken Kind = iota
	SymbolToken
)

func (k Kind) String() string {
	switch k {
	case NumberToken:
		return "number"
	case SymbolToken:
		return "symbol"
	default:
		return "unknown"
	}
}

// Token is a lexical unit of an expression. Numbers are kept as raw text;
// the parser converts them.
type Token struct {
	Kind Kind
	Text string
	// Pos is the byte offset of the token in the original input.
	Pos int
}

func (t Token) String() string { return t.Text }

var lexRules = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+\.?\d*`},
	{Name: "Symbol", Pattern: `[-+*/()]`},
	{Name: "Whitespace", Pattern: `[\s\v\p{Z}\x{85}]+`},
})

var (
	numberType     = lexRules.Symbols()["Number"]
	symbolType     = lexRules.Symbols()["Symbol"]
	whitespaceType = lexRules.Symbols()["Whitespace"]
)

// Tokenize splits input into number and symbol tokens. Whitespace separates
// tokens and is otherwise ignored.
func Tokenize(input string) ([]Token, error) {
	stripped := strings.Join(strings.Fields(input), "")

	lex, err := lexRules.LexString("", input)
	if err != nil {
		return nil, &LexError{Input: stripped, Err: err}
	}

	var tokens []Token
	var text strings.Builder
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, &LexError{Input: stripped, Err: err}
		}
		if t.EOF() {
			break
		}
		switch t.Type {
		case whitespaceType:
			continue
		case numberType:
			tokens = append(tokens, Token{Kind: NumberToken, Text: t.Value, Pos: t.Pos.Offset})
		case symbolType:
			tokens = append(tokens, Token{Kind: SymbolToken, Text: t.Value, Pos: t.Pos.Offset})
		default:
			return nil, &LexError{Input: stripped}
		}
		text.WriteString(t.Value)
	}

	if text.String() != stripped {
		return nil, &LexError{Input: stripped}
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}
	return tokens, nil
}
