// Package parser serves POST /parse: it turns expression text into the AST
// consumed by the gateway, together with a one-entry event log.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/hlog"

	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

const (
	operationParse = "parse"
	resultOK       = "AST generated"
)

// Request is the body of POST /parse.
type Request struct {
	Expression string `json:"expression"`
}

// Response is returned by POST /parse. AST is nil on failure.
type Response struct {
	AST      expr.Node        `json:"ast,omitempty"`
	EventLog []eventlog.Entry `json:"eventLog"`
	Error    string           `json:"error,omitempty"`
}

type Config struct {
	Service  string
	Hostname string
	// MaxLength bounds the expression length in bytes; zero means unlimited.
	MaxLength int
	MaxDepth  int
}

type Service struct {
	cfg    Config
	parser expr.Parser
	now    func() time.Time
}

func New(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		parser: expr.Parser{MaxDepth: cfg.MaxDepth},
		now:    time.Now,
	}
}

// Routes registers POST /parse.
func (s *Service) Routes(r chi.Router) {
	r.Post("/parse", s.HandleParse)
}

// requestError is a rejected request, reported as 400.
type requestError string

func (e requestError) Error() string { return string(e) }

func (s *Service) HandleParse(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	start := s.now()
	input := ""

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		log.Error().
			Interface("panic", rec).
			Bytes("stack", debug.Stack()).
			Str(logging.EXPR, input).
			Msg("parse panicked")
		transport.WriteJSON(w, http.StatusInternalServerError, Response{
			Error:    "internal server error",
			EventLog: []eventlog.Entry{s.entry(start, input, "Internal error")},
		})
	}()

	input, ast, err := s.parse(r)
	if err != nil {
		var reqErr requestError
		if !errors.As(err, &reqErr) {
			log.Info().Err(err).Str(logging.EXPR, input).Msg("parse failed")
		}
		transport.WriteJSON(w, http.StatusBadRequest, Response{
			Error:    err.Error(),
			EventLog: []eventlog.Entry{s.entry(start, input, "Parse error: "+err.Error())},
		})
		return
	}

	log.Debug().Str(logging.EXPR, input).Int("depth", expr.Depth(ast)).Msg("parsed")
	transport.WriteJSON(w, http.StatusOK, Response{
		AST:      ast,
		EventLog: []eventlog.Entry{s.entry(start, input, resultOK)},
	})
}

func (s *Service) parse(r *http.Request) (string, expr.Node, error) {
	var body struct {
		Expression jsoniter.RawMessage `json:"expression"`
	}
	if err := transport.DecodeJSON(r, &body); err != nil {
		if errors.Is(err, transport.ErrEmptyBody) {
			return "", nil, requestError("Request body is required")
		}
		return "", nil, requestError("Invalid JSON request")
	}

	raw := bytes.TrimSpace(body.Expression)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, requestError("Missing 'expression' field in request")
	}
	var input string
	if err := transport.Unmarshal(raw, &input); err != nil {
		return "", nil, requestError("'expression' must be a string")
	}
	if input == "" {
		return "", nil, requestError("Missing 'expression' field in request")
	}
	if s.cfg.MaxLength > 0 && len(input) > s.cfg.MaxLength {
		return input, nil, requestError(fmt.Sprintf("expression exceeds maximum length of %d", s.cfg.MaxLength))
	}

	ast, err := s.parser.Parse(input)
	return input, ast, err
}

func (s *Service) entry(start time.Time, input, result string) eventlog.Entry {
	end := s.now()
	return eventlog.Entry{
		Timestamp: eventlog.Timestamp(end),
		Hostname:  s.cfg.Hostname,
		Service:   s.cfg.Service,
		Operation: operationParse,
		Input:     input,
		Result:    result,
		Duration:  end.Sub(start).Milliseconds(),
	}
}
