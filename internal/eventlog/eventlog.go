// Package eventlog models the execution trace that services return alongside
// their results.
package eventlog

import "time"

// TimestampLayout renders UTC timestamps with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Fallbacks used when a delegated call returned an empty event log.
const (
	UnknownService  = "unknown-service"
	UnknownHostname = "unknown-hostname"
)

// Timestamp formats t the way every entry records it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Delegation identifies the remote instance that produced an operand value.
type Delegation struct {
	Service   string  `json:"service"`
	Hostname  string  `json:"hostname"`
	Operation string  `json:"operation"`
	Result    float64 `json:"result"`
}

type Operands struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Delegations holds per-operand provenance; nil means the operand was a literal.
type Delegations struct {
	Left  *Delegation `json:"left"`
	Right *Delegation `json:"right"`
}

// Entry is one step of a trace. Evaluation steps carry Operands and
// Delegations and a numeric Result; parser steps carry Input and a textual
// Result. Entries are never modified once created.
type Entry struct {
	Timestamp   string       `json:"timestamp"`
	Hostname    string       `json:"hostname"`
	Service     string       `json:"service"`
	Operation   string       `json:"operation"`
	Input       string       `json:"input,omitempty"`
	Operands    *Operands    `json:"operands,omitempty"`
	Result      any          `json:"result"`
	Delegations *Delegations `json:"delegations,omitempty"`
	Duration    int64        `json:"duration"`
}

// Provenance builds the delegation record for a value obtained from a remote
// call, using the last entry of that call's log as the source of service and
// hostname.
func Provenance(operator string, result float64, log []Entry) *Delegation {
	d := &Delegation{
		Service:   UnknownService,
		Hostname:  UnknownHostname,
		Operation: operator,
		Result:    result,
	}
	if len(log) > 0 {
		last := log[len(log)-1]
		if last.Service != "" {
			d.Service = last.Service
		}
		if last.Hostname != "" {
			d.Hostname = last.Hostname
		}
	}
	return d
}

// Chain returns left ++ right ++ [own] in a fresh slice. This order keeps every
// entry of a left subtree ahead of the right subtree, and both ahead of the
// node that combined them.
func Chain(left, right []Entry, own Entry) []Entry {
	out := make([]Entry, 0, len(left)+len(right)+1)
	out = append(out, left...)
	out = append(out, right...)
	return append(out, own)
}

// Services counts the distinct service names in log.
func Services(log []Entry) int {
	seen := make(map[string]struct{}, len(log))
	for _, e := range log {
		seen[e.Service] = struct{}{}
	}
	return len(seen)
}

// TotalDuration sums the durations of every entry in log.
func TotalDuration(log []Entry) int64 {
	var total int64
	for _, e := range log {
		total += e.Duration
	}
	return total
}
