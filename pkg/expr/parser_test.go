package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *Number { return &Number{Value: v} }

func op(o Operator, l, r Node) *Operation { return &Operation{Operator: o, Left: l, Right: r} }

func TestParse(t *testing.T) {
	cases := []struct {
		src  string
		want Node
	}{
		{"42", num(42)},
		{"3.0", num(3)},
		{"2.5", num(2.5)},
		{"(7)", num(7)},
		{"2 + 3 * 4", op(Add, num(2), op(Multiply, num(3), num(4)))},
		{"(2 + 3) * 4", op(Multiply, op(Add, num(2), num(3)), num(4))},
		{"1 - 2 - 3", op(Subtract, op(Subtract, num(1), num(2)), num(3))},
		{"8 / 4 / 2", op(Divide, op(Divide, num(8), num(4)), num(2))},
		{"1 - (2 - 3)", op(Subtract, num(1), op(Subtract, num(2), num(3)))},
		{"2 * 3 + 4 / 5", op(Add, op(Multiply, num(2), num(3)), op(Divide, num(4), num(5)))},
		{"((1))+((2))", op(Add, num(1), num(2))},
	}
	for _, c := range cases {
		got, err := Parse(c.src)
		if err != nil {
			t.Errorf("parsing %q: %v", c.src, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("parsing %q: mismatch (-want +got):\n%s", c.src, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		{"2 +", "unexpected end of expression"},
		{"(1 + 2", "missing closing parenthesis"},
		{"(1 2)", "missing closing parenthesis"},
		{"2 3", "unexpected token: 3"},
		{"1 + 2)", "unexpected token: )"},
		{"* 2", "unexpected token: *"},
		{"2 + * 3", "unexpected token: *"},
		{"()", "unexpected token: )"},
		{"-1", "unexpected token: -"},
	}
	for _, c := range cases {
		n, err := Parse(c.src)
		assert.Nil(t, n, "parsing %q", c.src)
		var perr *ParseError
		if assert.ErrorAs(t, err, &perr, "parsing %q", c.src) {
			assert.Equal(t, c.msg, perr.Error(), "parsing %q", c.src)
		}
	}
}

func TestParsePassesLexErrorsThrough(t *testing.T) {
	_, err := Parse("2 & 3")
	var lexErr *LexError
	assert.ErrorAs(t, err, &lexErr)

	_, err = Parse("  ")
	assert.True(t, errors.Is(err, ErrEmptyExpression))
}

func TestParseIsDeterministic(t *testing.T) {
	const src = "(1 + 2.5) * 3 - 4 / (5 - 6)"
	first, err := Parse(src)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Parse(src)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(first, again))
	}
}

func TestParseDepthLimit(t *testing.T) {
	p := Parser{MaxDepth: 3}

	_, err := p.Parse("1 + 2 + 3")
	require.NoError(t, err)

	_, err = p.Parse("1 + 2 + 3 + 4 + 5")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "expression nesting exceeds maximum depth of 3", perr.Msg)

	_, err = p.Parse("((((1))))")
	require.ErrorAs(t, err, &perr)

	deep := strings.Repeat("(", DefaultMaxDepth+1) + "1" + strings.Repeat(")", DefaultMaxDepth+1)
	_, err = Parse(deep)
	require.ErrorAs(t, err, &perr)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(num(1)))
	assert.Equal(t, 1, Depth(op(Add, num(1), num(2))))
	assert.Equal(t, 3, Depth(op(Add, num(1), op(Multiply, num(2), op(Divide, num(3), num(4))))))
}

func TestString(t *testing.T) {
	n, err := Parse("2 + 3 * 4.5")
	require.NoError(t, err)
	assert.Equal(t, "(2 + (3 * 4.5))", n.String())
}
