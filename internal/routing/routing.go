// Package routing maps operators to the services that evaluate them.
package routing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

// UnknownOperatorError is returned for an operator with no route.
type UnknownOperatorError struct {
	Operator expr.Operator
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator: %s", e.Operator)
}

// Table is the static operator to base URL mapping. It is built once at
// startup and only read afterwards.
type Table struct {
	routes map[expr.Operator]string
}

// New validates routes and returns a Table. Every supported operator must be
// present exactly once with an absolute http(s) URL, and nothing else may be.
func New(routes map[expr.Operator]string) (*Table, error) {
	t := &Table{routes: make(map[expr.Operator]string, len(expr.Operators))}
	for op, addr := range routes {
		if !op.Valid() {
			return nil, fmt.Errorf("routing: unsupported operator %q", op)
		}
		u, err := url.Parse(addr)
		if err != nil {
			return nil, fmt.Errorf("routing: operator %s: %w", op, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("routing: operator %s: address %q is not an absolute http(s) URL", op, addr)
		}
		t.routes[op] = strings.TrimRight(addr, "/")
	}

	var missing []string
	for _, op := range expr.Operators {
		if _, ok := t.routes[op]; !ok {
			missing = append(missing, string(op))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("routing: no address for operators %s", strings.Join(missing, " "))
	}
	return t, nil
}

// Lookup returns the base URL of the service owning op.
func (t *Table) Lookup(op expr.Operator) (string, error) {
	addr, ok := t.routes[op]
	if !ok {
		return "", &UnknownOperatorError{Operator: op}
	}
	return addr, nil
}
