package tools

import (
	"errors"
	"fmt"
)

var ErrUnknownTool = errors.New("unknown tool")

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFault:
		return "fault"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of a tool call that passed validation. Exactly one
// of Value and Fault is set, selected by Outcome.
type Result struct {
	Tool    string
	Outcome Outcome
	Value   any
	Fault   *FaultError
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func success(tool string, value any) Result {
	return Result{Tool: tool, Outcome: OutcomeSuccess, Value: value}
}

func fault(tool string, err error) Result {
	return Result{Tool: tool, Outcome: OutcomeFault, Fault: &FaultError{Tool: tool, Err: err}}
}

// FaultError reports a failure inside a tool handler after its input was
// accepted.
type FaultError struct {
	Tool string
	Err  error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
