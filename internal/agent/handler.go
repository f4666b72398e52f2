package agent

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/hlog"

	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/routing"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

type executeBody struct {
	Operation jsoniter.RawMessage `json:"operation"`
}

// Routes registers POST /execute.
func (n *Node) Routes(r chi.Router) {
	r.Post("/execute", n.HandleExecute)
}

func (n *Node) HandleExecute(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	var req executeBody
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}
	raw := bytes.TrimSpace(req.Operation)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		transport.WriteError(w, http.StatusBadRequest, "Missing 'operation' field")
		return
	}
	op, err := expr.Decoder{MaxDepth: n.cfg.MaxDepth}.DecodeOperation(raw)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, eventLog, err := n.Execute(r.Context(), op)
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str(logging.OPERATOR, string(n.cfg.Operator)).Msg("execute failed")
		} else {
			log.Info().Err(err).Int(logging.STATUS, status).Msg("execute rejected")
		}
		transport.WriteError(w, status, PublicMessage(err))
		return
	}

	transport.WriteJSON(w, http.StatusOK, executeResponse{Result: result, EventLog: eventLog})
}

// StatusFor maps evaluation errors to HTTP status codes. Contract and domain
// errors are the caller's fault, and so is an operation a peer rejected with a
// 4xx. Other delegation failures are a bad gateway; anything else is internal.
func StatusFor(err error) int {
	var (
		failure *DelegationFailure
		unknown *routing.UnknownOperatorError
		wrong   *WrongOperatorError
		invalid *InvalidOperandError
		shape   *expr.NodeError
	)
	switch {
	case errors.As(err, &failure):
		if failure.Rejected() {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &unknown), errors.As(err, &wrong), errors.As(err, &invalid), errors.As(err, &shape),
		errors.Is(err, ErrDivisionByZero), errors.Is(err, ErrNonFiniteResult):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the error text returned to clients. A peer's rejection is
// relayed verbatim so that nested services do not stack prefixes, and internal
// errors are hidden.
func PublicMessage(err error) string {
	var failure *DelegationFailure
	switch {
	case errors.As(err, &failure) && failure.Rejected():
		return failure.Remote
	case StatusFor(err) == http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
