package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchedule is returned when an event targets a time before the clock.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrEmptyQueue is the cause of a Pop on an empty EventQueue.
	ErrEmptyQueue = errors.New("pop on empty event queue")
	// ErrClockRegression means an event was dispatched earlier than the clock.
	ErrClockRegression = errors.New("clock regression")
	// ErrAlreadyRun is returned by Run and Seed once a simulator has left Idle.
	ErrAlreadyRun = errors.New("simulator already run")
)

// ContractViolation reports a defect in event-execution logic. It is never
// recovered from: the run that hits one is aborted.
type ContractViolation struct {
	Op  string
	Err error
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: %v", e.Op, e.Err)
}

func (e *ContractViolation) Unwrap() error {
	return e.Err
}

// IsContractViolation reports whether err carries a ContractViolation.
func IsContractViolation(err error) bool {
	var cv *ContractViolation
	return errors.As(err, &cv)
}
