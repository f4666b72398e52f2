package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tinmancoding/calculator-as-a-service/internal/agent"
	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

// ParseRejectedError is returned when the parser service refuses an
// expression. It carries the parser's message and event log.
type ParseRejectedError struct {
	Message  string
	EventLog []eventlog.Entry
}

func (e *ParseRejectedError) Error() string { return e.Message }

type parseResponse struct {
	AST      jsoniter.RawMessage `json:"ast"`
	EventLog []eventlog.Entry    `json:"eventLog"`
	Error    string              `json:"error"`
}

// ParserClient calls the parser service.
type ParserClient struct {
	url     string
	client  *transport.Client
	decoder expr.Decoder
}

// NewParserClient returns a client for the parser service at baseURL. ASTs
// nested deeper than maxDepth are refused; zero means the default limit.
func NewParserClient(baseURL string, timeout time.Duration, maxDepth int) *ParserClient {
	return &ParserClient{
		url:     strings.TrimRight(baseURL, "/") + "/parse",
		client:  transport.NewClient(timeout),
		decoder: expr.Decoder{MaxDepth: maxDepth},
	}
}

// Parse returns the AST of expression and the parser's event log. A 4xx
// answer yields *ParseRejectedError; no answer, any other status or an
// unreadable body yields *agent.DelegationFailure.
func (p *ParserClient) Parse(ctx context.Context, expression string) (expr.Node, []eventlog.Entry, error) {
	status, body, err := p.client.PostJSON(ctx, p.url, CalculateRequest{Expression: expression})
	if err != nil {
		return nil, nil, &agent.DelegationFailure{Address: p.url, Status: status, Err: err}
	}

	var resp parseResponse
	decodeErr := transport.Unmarshal(body, &resp)
	switch {
	case status >= 400 && status < 500 && decodeErr == nil && resp.Error != "":
		return nil, nil, &ParseRejectedError{Message: resp.Error, EventLog: resp.EventLog}
	case status != http.StatusOK:
		f := &agent.DelegationFailure{Address: p.url, Status: status}
		if decodeErr == nil {
			f.Remote = resp.Error
		}
		return nil, nil, f
	case decodeErr != nil:
		return nil, nil, &agent.DelegationFailure{Address: p.url, Status: status, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}

	ast, err := p.decoder.DecodeNode(resp.AST)
	if err != nil {
		return nil, nil, &agent.DelegationFailure{Address: p.url, Status: status, Err: fmt.Errorf("decode ast: %w", err)}
	}
	return ast, resp.EventLog, nil
}
