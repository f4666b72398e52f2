// Package orchestrator is the gateway: it sends expressions to the parser
// service, evaluates the resulting AST through the operator services and
// keeps a short history of calculations.
package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tinmancoding/calculator-as-a-service/internal/agent"
	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

// Parser turns expression text into an AST.
type Parser interface {
	Parse(ctx context.Context, expression string) (expr.Node, []eventlog.Entry, error)
}

// Resolver evaluates an AST node.
type Resolver interface {
	Resolve(ctx context.Context, n expr.Node) (agent.Result, error)
}

type Orchestrator struct {
	parser   Parser
	resolver Resolver
	history  *History
	now      func() time.Time
}

func New(parser Parser, resolver Resolver, history *History) *Orchestrator {
	return &Orchestrator{
		parser:   parser,
		resolver: resolver,
		history:  history,
		now:      time.Now,
	}
}

// Routes registers the calculation endpoints.
func (o *Orchestrator) Routes(r chi.Router) {
	r.Post("/calculate", o.HandleCalculate)
	r.Get("/calculations", o.HandleGetCalculations)
	r.Get("/calculations/{id}", o.HandleGetCalculation)
}

// Calculate parses and evaluates expression. The returned calculation is
// recorded in the history whether or not it succeeded; on failure it is
// returned together with the error.
func (o *Orchestrator) Calculate(ctx context.Context, expression string) (Calculation, error) {
	c := Calculation{
		ID:         uuid.NewString(),
		Expression: expression,
		CreatedAt:  o.now().UTC(),
	}
	log := zerolog.Ctx(ctx).With().Str(logging.CALC, c.ID).Logger()

	result, eventLog, err := o.calculate(ctx, expression)
	c.EventLog = eventLog
	c.Metadata = metadataFor(eventLog)
	if err != nil {
		c.Status = StatusFailed
		_, c.Error = statusFor(err)
		log.Info().Err(err).Str(logging.EXPR, expression).Msg("calculation failed")
	} else {
		c.Status = StatusCompleted
		c.Result = &result
		log.Info().
			Str(logging.EXPR, expression).
			Float64("result", result).
			Int("services", c.Metadata.TotalServices).
			Msg("calculation completed")
	}
	if o.history != nil {
		o.history.Add(c)
	}
	return c, err
}

func (o *Orchestrator) calculate(ctx context.Context, expression string) (float64, []eventlog.Entry, error) {
	ast, parseLog, err := o.parser.Parse(ctx, expression)
	if err != nil {
		var rejected *ParseRejectedError
		if errors.As(err, &rejected) {
			return 0, rejected.EventLog, err
		}
		return 0, nil, err
	}

	res, err := o.resolver.Resolve(ctx, ast)
	if err != nil {
		return 0, parseLog, err
	}

	all := make([]eventlog.Entry, 0, len(parseLog)+len(res.EventLog))
	all = append(all, parseLog...)
	all = append(all, res.EventLog...)
	return res.Value, all, nil
}

func (o *Orchestrator) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Expression == "" {
		transport.WriteError(w, http.StatusBadRequest, "Missing 'expression' field in request")
		return
	}

	c, err := o.Calculate(r.Context(), req.Expression)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			hlog.FromRequest(r).Error().Err(err).Str(logging.CALC, c.ID).Msg("calculate failed")
		}
		transport.WriteJSON(w, status, errorResponse{ID: c.ID, Error: c.Error, EventLog: c.EventLog})
		return
	}

	transport.WriteJSON(w, http.StatusOK, CalculateResponse{
		ID:         c.ID,
		Result:     *c.Result,
		Expression: c.Expression,
		EventLog:   c.EventLog,
		Metadata:   c.Metadata,
	})
}

func (o *Orchestrator) HandleGetCalculations(w http.ResponseWriter, r *http.Request) {
	list := []Calculation{}
	if o.history != nil {
		list = o.history.List()
	}
	transport.WriteJSON(w, http.StatusOK, map[string][]Calculation{"calculations": list})
}

func (o *Orchestrator) HandleGetCalculation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if o.history != nil {
		if c, ok := o.history.Get(id); ok {
			transport.WriteJSON(w, http.StatusOK, map[string]Calculation{"calculation": c})
			return
		}
	}
	transport.WriteError(w, http.StatusNotFound, "Calculation not found")
}

// statusFor returns the HTTP status for a failed calculation and the message
// safe to show to clients.
func statusFor(err error) (int, string) {
	var rejected *ParseRejectedError
	if errors.As(err, &rejected) {
		return http.StatusBadRequest, rejected.Message
	}
	return agent.StatusFor(err), agent.PublicMessage(err)
}
