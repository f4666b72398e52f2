package agent

import (
	"errors"
	"fmt"

	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNonFiniteResult = errors.New("result is not a finite number")
)

// WrongOperatorError is returned when a node receives an operation it does
// not own.
type WrongOperatorError struct {
	Service string
	Want    expr.Operator
	Got     expr.Operator
}

func (e *WrongOperatorError) Error() string {
	return fmt.Sprintf("this service only handles %s (%s), got: %s", e.Service, e.Want, e.Got)
}

// InvalidOperandError is returned for operands of an unsupported shape.
type InvalidOperandError struct {
	Reason string
	Err    error
}

func (e *InvalidOperandError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *InvalidOperandError) Unwrap() error { return e.Err }

// DelegationFailure is returned when a routed service could not be reached,
// timed out, answered with a non-2xx status or sent an unreadable response.
type DelegationFailure struct {
	Operator expr.Operator
	Address  string
	// Status is zero when no response was received.
	Status int
	// Remote is the error message reported by the peer, if any.
	Remote string
	Err    error
}

func (e *DelegationFailure) Error() string {
	switch {
	case e.Remote != "":
		return fmt.Sprintf("service delegation failed: %s returned %d: %s", e.Address, e.Status, e.Remote)
	case e.Status != 0 && e.Err == nil:
		return fmt.Sprintf("service delegation failed: %s returned status %d", e.Address, e.Status)
	default:
		return fmt.Sprintf("service delegation failed: %s: %v", e.Address, e.Err)
	}
}

func (e *DelegationFailure) Unwrap() error { return e.Err }

// Rejected reports whether the peer answered with a 4xx and an error
// message, meaning it refused the operation rather than failed to run it.
func (e *DelegationFailure) Rejected() bool {
	return e.Status >= 400 && e.Status < 500 && e.Remote != ""
}
