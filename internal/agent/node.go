package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/metrics"
	"github.com/tinmancoding/calculator-as-a-service/internal/routing"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

type NodeConfig struct {
	Operator expr.Operator
	Service  string
	Hostname string
	// MaxDepth bounds the nesting of accepted operations; zero disables the check.
	MaxDepth int
}

// Node evaluates operations of the single operator it owns. It keeps no
// state between requests.
type Node struct {
	cfg      NodeConfig
	resolver *Resolver
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewNode(cfg NodeConfig, resolver *Resolver, m *metrics.Metrics) (*Node, error) {
	if !cfg.Operator.Valid() {
		return nil, &routing.UnknownOperatorError{Operator: cfg.Operator}
	}
	if cfg.Service == "" {
		cfg.Service = serviceNames[cfg.Operator] + "-service"
	}
	return &Node{cfg: cfg, resolver: resolver, metrics: m, now: time.Now}, nil
}

// Execute evaluates op: the left operand is resolved completely before the
// right one, then the operator is applied and this node's entry is appended
// after both operands' logs.
func (n *Node) Execute(ctx context.Context, op *expr.Operation) (float64, []eventlog.Entry, error) {
	start := n.now()

	result, log, err := n.execute(ctx, op, start)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	n.metrics.ObserveEvaluation(string(n.cfg.Operator), outcome)
	return result, log, err
}

func (n *Node) execute(ctx context.Context, op *expr.Operation, start time.Time) (float64, []eventlog.Entry, error) {
	if !op.Operator.Valid() {
		return 0, nil, &routing.UnknownOperatorError{Operator: op.Operator}
	}
	if op.Operator != n.cfg.Operator {
		return 0, nil, &WrongOperatorError{
			Service: serviceNames[n.cfg.Operator],
			Want:    n.cfg.Operator,
			Got:     op.Operator,
		}
	}
	if n.cfg.MaxDepth > 0 && expr.Depth(op) > n.cfg.MaxDepth {
		return 0, nil, &InvalidOperandError{
			Reason: fmt.Sprintf("operation nesting exceeds maximum depth of %d", n.cfg.MaxDepth),
		}
	}

	left, err := n.resolver.Resolve(ctx, op.Left)
	if err != nil {
		return 0, nil, err
	}
	right, err := n.resolver.Resolve(ctx, op.Right)
	if err != nil {
		return 0, nil, err
	}

	result, err := apply(n.cfg.Operator, left.Value, right.Value)
	if err != nil {
		return 0, nil, err
	}

	end := n.now()
	own := eventlog.Entry{
		Timestamp: eventlog.Timestamp(end),
		Hostname:  n.cfg.Hostname,
		Service:   n.cfg.Service,
		Operation: string(n.cfg.Operator),
		Operands:  &eventlog.Operands{Left: left.Value, Right: right.Value},
		Result:    result,
		Delegations: &eventlog.Delegations{
			Left:  left.Delegation,
			Right: right.Delegation,
		},
		Duration: end.Sub(start).Milliseconds(),
	}

	zerolog.Ctx(ctx).Debug().
		Str(logging.OPERATOR, string(n.cfg.Operator)).
		Float64("left", left.Value).
		Float64("right", right.Value).
		Float64("result", result).
		Msg("evaluated")

	return result, eventlog.Chain(left.EventLog, right.EventLog, own), nil
}
