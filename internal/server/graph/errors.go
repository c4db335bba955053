package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// maxDiagnostic caps how much driver error text travels upward. Query text
// is assembled from registered fragments only, so the diagnostic can never
// leak user input, but driver messages can still be arbitrarily long.
const maxDiagnostic = 200

// UnavailableError reports that the graph store could not be reached. It is
// fatal at startup: the server refuses to come up rather than serve empty
// results from a store that is not there.
type UnavailableError struct {
	URI string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("graph store unavailable at %s: %v", e.URI, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// QueryError reports a statement that the store rejected or failed to
// execute. It carries the plan ID and a truncated diagnostic.
type QueryError struct {
	Plan string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %s", e.Plan, truncate(e.Err.Error()))
}

func (e *QueryError) Unwrap() error { return e.Err }

// TimeoutError reports a statement that exceeded its deadline. It unwraps
// to context.DeadlineExceeded so callers can test with errors.Is.
type TimeoutError struct {
	Plan    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query %s timed out after %s", e.Plan, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// classify wraps a store failure as a TimeoutError or QueryError for the
// given plan. Not-found is never an error anywhere in this package; it is
// expressed structurally as a nil node.
func classify(plan string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Plan: plan, Timeout: timeout}
	}
	return &QueryError{Plan: plan, Err: err}
}

func truncate(s string) string {
	if len(s) <= maxDiagnostic {
		return s
	}
	return s[:maxDiagnostic] + "..."
}
