package multiply

import (
	"errors"
	"fmt"

	"github.com/samcharles93/chunkmul/internal/schedule"
)

var (
	// ErrInvalidArgument matches shape and option errors reported before
	// any worker starts.
	ErrInvalidArgument = schedule.ErrInvalidArgument

	// ErrExecutionFailure matches a worker that did not run to completion.
	// The contents of C are undefined when it is returned.
	ErrExecutionFailure = errors.New("execution_failure")
)

type workerError struct {
	worker int
	row    int
	cause  any
}

func (e workerError) Error() string {
	if e.row >= 0 {
		return fmt.Sprintf("multiply: worker %d failed at row %d: %v", e.worker, e.row, e.cause)
	}
	return fmt.Sprintf("multiply: worker %d failed: %v", e.worker, e.cause)
}

func (e workerError) Unwrap() []error {
	errs := []error{ErrExecutionFailure}
	if err, ok := e.cause.(error); ok {
		errs = append(errs, err)
	}
	return errs
}

// FailedWorker returns the id of the worker behind an execution failure.
func FailedWorker(err error) (int, bool) {
	var we workerError
	if errors.As(err, &we) {
		return we.worker, true
	}
	return 0, false
}
