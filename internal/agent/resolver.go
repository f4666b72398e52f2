// Package agent implements the operator services: each one evaluates the
// operations of a single operator and delegates nested operations to the
// services that own them.
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
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

// Result is the resolved value of one operand.
type Result struct {
	Value float64
	// Delegation is nil for literal operands.
	Delegation *eventlog.Delegation
	// EventLog is the full log returned by the delegated call.
	EventLog []eventlog.Entry
}

type executeRequest struct {
	Operation *expr.Operation `json:"operation"`
}

type executeResponse struct {
	Result   float64          `json:"result"`
	EventLog []eventlog.Entry `json:"eventLog"`
	Error    string           `json:"error,omitempty"`
}

// Resolver turns operands into values, calling the owning service for every
// operation operand.
type Resolver struct {
	routes  *routing.Table
	client  *transport.Client
	metrics *metrics.Metrics
}

// NewResolver returns a resolver whose delegated calls time out after timeout.
func NewResolver(routes *routing.Table, timeout time.Duration, m *metrics.Metrics) *Resolver {
	return &Resolver{
		routes:  routes,
		client:  transport.NewClient(timeout),
		metrics: m,
	}
}

// Resolve returns the value of n. Numbers resolve locally; operations are
// sent to the service routed for their operator and block until it answers.
func (r *Resolver) Resolve(ctx context.Context, n expr.Node) (Result, error) {
	switch n := n.(type) {
	case *expr.Number:
		return Result{Value: n.Value}, nil
	case *expr.Operation:
		return r.delegate(ctx, n)
	default:
		return Result{}, &InvalidOperandError{Reason: fmt.Sprintf("invalid operand format: %T", n)}
	}
}

func (r *Resolver) delegate(ctx context.Context, op *expr.Operation) (Result, error) {
	addr, err := r.routes.Lookup(op.Operator)
	if err != nil {
		return Result{}, err
	}

	log := zerolog.Ctx(ctx).With().
		Str(logging.OPERATOR, string(op.Operator)).
		Str(logging.TARGET, addr).
		Logger()

	start := time.Now()
	fail := func(f *DelegationFailure) (Result, error) {
		f.Operator = op.Operator
		f.Address = addr
		r.metrics.ObserveDelegation(string(op.Operator), metrics.OutcomeFailure, time.Since(start))
		log.Warn().Err(f).Msg("delegation failed")
		return Result{}, f
	}

	status, body, err := r.client.PostJSON(ctx, addr+"/execute", executeRequest{Operation: op})
	if err != nil {
		return fail(&DelegationFailure{Status: status, Err: err})
	}

	var resp executeResponse
	decodeErr := transport.Unmarshal(body, &resp)
	if status < 200 || status > 299 {
		f := &DelegationFailure{Status: status}
		if decodeErr == nil {
			f.Remote = resp.Error
		}
		return fail(f)
	}
	if decodeErr != nil {
		return fail(&DelegationFailure{Status: status, Err: fmt.Errorf("decode response: %w", decodeErr)})
	}

	elapsed := time.Since(start)
	r.metrics.ObserveDelegation(string(op.Operator), metrics.OutcomeOK, elapsed)
	log.Debug().
		Float64("result", resp.Result).
		Int("entries", len(resp.EventLog)).
		Dur(logging.DURATION, elapsed).
		Msg("delegated")

	return Result{
		Value:      resp.Result,
		Delegation: eventlog.Provenance(string(op.Operator), resp.Result, resp.EventLog),
		EventLog:   resp.EventLog,
	}, nil
}
