package orchestrator

import (
	"time"

	"github.com/tinmancoding/calculator-as-a-service/internal/eventlog"
)

// Calculation statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Calculation is one /calculate request as kept in the history.
type Calculation struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Expression string           `json:"expression"`
	Result     *float64         `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	EventLog   []eventlog.Entry `json:"eventLog"`
	Metadata   Metadata         `json:"metadata"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Metadata summarizes an event log.
type Metadata struct {
	TotalServices int   `json:"totalServices"`
	TotalDuration int64 `json:"totalDuration"`
}

func metadataFor(log []eventlog.Entry) Metadata {
	return Metadata{
		TotalServices: eventlog.Services(log),
		TotalDuration: eventlog.TotalDuration(log),
	}
}

type CalculateRequest struct {
	Expression string `json:"expression"`
}

type CalculateResponse struct {
	ID         string           `json:"id"`
	Result     float64          `json:"result"`
	Expression string           `json:"expression"`
	EventLog   []eventlog.Entry `json:"eventLog"`
	Metadata   Metadata         `json:"metadata"`
}

type errorResponse struct {
	ID       string           `json:"id,omitempty"`
	Error    string           `json:"error"`
	EventLog []eventlog.Entry `json:"eventLog,omitempty"`
}
