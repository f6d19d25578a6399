package cmd

import "fmt"

// ExitError carries a specific process exit code up to main without
// triggering cobra's error printing. Commands that have already
// reported their outcome return one instead of a plain error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
