package parser

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
)

type wireResponse struct {
	AST      jsoniter.RawMessage `json:"ast"`
	EventLog []eventlog.Entry    `json:"eventLog"`
	Error    string              `json:"error"`
}

func newTestService() *Service {
	s := New(Config{Service: "parser-service", Hostname: "parser-pod", MaxLength: 20, MaxDepth: 5})
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return base }
	return s
}

func post(t *testing.T, s *Service, body string) (int, wireResponse) {
	t.Helper()
	r := chi.NewRouter()
	s.Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(body)))

	var out wireResponse
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestParseSuccess(t *testing.T) {
	code, out := post(t, newTestService(), `{"expression":"2 + 3 * 4"}`)
	require.Equal(t, http.StatusOK, code, out.Error)
	assert.JSONEq(t, `{
		"type": "operation", "operator": "+",
		"left": {"type": "number", "value": 2},
		"right": {"type": "operation", "operator": "*",
			"left": {"type": "number", "value": 3},
			"right": {"type": "number", "value": 4}}
	}`, string(out.AST))

	require.Len(t, out.EventLog, 1)
	assert.Equal(t, eventlog.Entry{
		Timestamp: "2024-01-02T03:04:05.000Z",
		Hostname:  "parser-pod",
		Service:   "parser-service",
		Operation: "parse",
		Input:     "2 + 3 * 4",
		Result:    "AST generated",
	}, out.EventLog[0])
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		input string
	}{
		{"empty body", ``, "Request body is required", ""},
		{"invalid json", `{"expression":`, "Invalid JSON request", ""},
		{"missing expression", `{}`, "Missing 'expression' field in request", ""},
		{"empty expression", `{"expression":""}`, "Missing 'expression' field in request", ""},
		{"non-string expression", `{"expression":42}`, "'expression' must be a string", ""},
		{"too long", `{"expression":"1+1+1+1+1+1+1+1+1+1+1"}`, "expression exceeds maximum length of 20", "1+1+1+1+1+1+1+1+1+1+1"},
		{"lex error", `{"expression":"2 & 3"}`, "invalid characters in expression: 2&3", "2 & 3"},
		{"unexpected end", `{"expression":"2 +"}`, "unexpected end of expression", "2 +"},
		{"missing paren", `{"expression":"(1 + 2"}`, "missing closing parenthesis", "(1 + 2"},
		{"trailing token", `{"expression":"2 3"}`, "unexpected token: 3", "2 3"},
		{"too deep", `{"expression":"((((((1))))))"}`, "expression nesting exceeds maximum depth of 5", "((((((1))))))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := post(t, newTestService(), tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, out.Error)
			assert.Empty(t, out.AST)
			require.Len(t, out.EventLog, 1)
			assert.Equal(t, "parse", out.EventLog[0].Operation)
			assert.Equal(t, tt.input, out.EventLog[0].Input)
			assert.Equal(t, "Parse error: "+tt.want, out.EventLog[0].Result)
		})
	}
}

func TestParseDurationIsMeasured(t *testing.T) {
	s := newTestService()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 7 * time.Millisecond)
	}
	code, out := post(t, s, `{"expression":"1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(7), out.EventLog[0].Duration)
	assert.JSONEq(t, `{"type":"number","value":1}`, string(out.AST))
}

func TestParsePanicIsInternalError(t *testing.T) {
	s := newTestService()
	calls := 0
	s.now = func() time.Time {
		calls++
		if calls == 2 {
			panic("clock broke")
		}
		return time.Unix(0, 0)
	}
	code, out := post(t, s, `{"expression":"1 + 1"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", out.Error)
	require.Len(t, out.EventLog, 1)
	assert.Equal(t, "Internal error", out.EventLog[0].Result)
	assert.Equal(t, "1 + 1", out.EventLog[0].Input)
}
