package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrAutomationIncomplete means the worker finished without any output.
	ErrAutomationIncomplete = errors.New("automation finished without producing a result")
	// ErrAutomationOutputInvalid means output was produced but is not a valid profile.
	ErrAutomationOutputInvalid = errors.New("automation output is not a valid company profile")
)

// OutputInvalidError carries the raw worker output for diagnosis.
type OutputInvalidError struct {
	Raw string
	Err error
}

func (e *OutputInvalidError) Error() string {
	return fmt.Sprintf("failed to parse automation output: %v\nraw output: %s", e.Err, e.Raw)
}

func (e *OutputInvalidError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrAutomationOutputInvalid.
func (e *OutputInvalidError) Is(target error) bool {
	return target == ErrAutomationOutputInvalid
}

// WorkerError is returned when the worker answers with an error status or payload.
type WorkerError struct {
	StatusCode int
	Message    string
}

func (e *WorkerError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("automation worker error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("automation worker error: %s", e.Message)
}
