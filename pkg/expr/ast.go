package expr

import "strconv"

// Operator is one of the four arithmetic operator symbols.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "*"
	Divide   Operator = "/"
)

// Operators lists every supported operator.
var Operators = []Operator{Add, Subtract, Multiply, Divide}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

// Node is an AST node: either *Number or *Operation. Trees are never
// mutated after construction.
type Node interface {
	node()
	String() string
}

// Number is a literal leaf. Integral literals such as "3.0" hold the exact
// integer value and are encoded without a fractional part.
type Number struct {
	Value float64
}

// Operation applies Operator to the values of Left and Right.
type Operation struct {
	Operator Operator
	Left     Node
	Right    Node
}

func (*Number) node()    {}
func (*Operation) node() {}

func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (o *Operation) String() string {
	return "(" + o.Left.String() + " " + string(o.Operator) + " " + o.Right.String() + ")"
}

// Depth returns the number of operations on the longest root-to-leaf path.
func Depth(n Node) int {
	op, ok := n.(*Operation)
	if !ok {
		return 0
	}
	return 1 + max(Depth(op.Left), Depth(op.Right))
}
