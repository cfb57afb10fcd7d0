package agent

import (
	"context"
	"encoding/json"
)

// Task is one bounded automation request.
type Task struct {
	Text         string          `json:"task"`
	OutputSchema json.RawMessage `json:"output_schema"`
	MaxSteps     int             `json:"max_steps"`
}

// RunResult is what the worker reports when a run ends. FinalResult is empty
// when the agent stopped without producing output.
type RunResult struct {
	FinalResult string `json:"final_result"`
	Steps       int    `json:"steps"`
	Done        bool   `json:"is_done"`
}

// Runner executes automation tasks. Implementations make exactly one attempt.
type Runner interface {
	Run(ctx context.Context, task Task) (RunResult, error)
}
