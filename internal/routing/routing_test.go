package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

func validRoutes() map[expr.Operator]string {
	return map[expr.Operator]string{
		expr.Add:      "http://addition-service:8082",
		expr.Subtract: "http://subtraction-service:8083",
		expr.Multiply: "http://multiplication-service:8084/",
		expr.Divide:   "https://division-service:8086",
	}
}

func TestLookup(t *testing.T) {
	table, err := New(validRoutes())
	require.NoError(t, err)

	addr, err := table.Lookup(expr.Add)
	require.NoError(t, err)
	assert.Equal(t, "http://addition-service:8082", addr)

	addr, err = table.Lookup(expr.Multiply)
	require.NoError(t, err)
	assert.Equal(t, "http://multiplication-service:8084", addr, "trailing slash is trimmed")
}

func TestLookupUnknownOperator(t *testing.T) {
	table, err := New(validRoutes())
	require.NoError(t, err)

	_, err = table.Lookup("%")
	var unknown *UnknownOperatorError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, expr.Operator("%"), unknown.Operator)
	assert.Equal(t, "unknown operator: %", err.Error())
}

func TestNewRejectsIncompleteTables(t *testing.T) {
	routes := validRoutes()
	delete(routes, expr.Divide)
	delete(routes, expr.Add)
	_, err := New(routes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no address for operators + /")
}

func TestNewRejectsBadEntries(t *testing.T) {
	cases := map[string]func(map[expr.Operator]string){
		"extra operator": func(r map[expr.Operator]string) { r["%"] = "http://modulo:1" },
		"empty address":  func(r map[expr.Operator]string) { r[expr.Add] = "" },
		"relative":       func(r map[expr.Operator]string) { r[expr.Add] = "addition-service:8082" },
		"bad scheme":     func(r map[expr.Operator]string) { r[expr.Add] = "ftp://addition-service" },
	}
	for name, mutate := range cases {
		routes := validRoutes()
		mutate(routes)
		_, err := New(routes)
		assert.Error(t, err, name)
	}
}
