package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/sift-profiler/internal/config"
	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/llm"
)

// Invoker turns a company name into a validated profile with one automation run.
type Invoker struct {
	runner Runner
	logger *zap.Logger
}

// NewInvoker constructs an Invoker.
func NewInvoker(runner Runner, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{runner: runner, logger: logger.Named("agent")}
}

// Invoke runs the automation once with the given step budget, clamped to the
// supported range. It never retries.
func (i *Invoker) Invoke(ctx context.Context, companyName string, stepBudget int) (*entity.CompanyProfile, error) {
	task := Task{
		Text:         CompileTask(companyName),
		OutputSchema: OutputSchema(),
		MaxSteps:     clampBudget(stepBudget),
	}

	start := time.Now()
	i.logger.Info("automation run started", zap.String("company", companyName), zap.Int("max_steps", task.MaxSteps))

	result, err := i.runner.Run(ctx, task)
	if err != nil {
		i.logger.Warn("automation run failed", zap.String("company", companyName), zap.Error(err))
		return nil, fmt.Errorf("run automation: %w", err)
	}
	i.logger.Info("automation run finished",
		zap.String("company", companyName),
		zap.Int("steps", result.Steps),
		zap.Bool("done", result.Done),
		zap.Duration("elapsed", time.Since(start)),
	)

	return ParseProfile(result.FinalResult)
}

// ParseProfile decodes and validates raw automation output.
func ParseProfile(raw string) (*entity.CompanyProfile, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrAutomationIncomplete
	}

	doc, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, &OutputInvalidError{Raw: raw, Err: err}
	}

	var profile entity.CompanyProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, &OutputInvalidError{Raw: raw, Err: err}
	}
	if err := profile.Validate(); err != nil {
		return nil, &OutputInvalidError{Raw: raw, Err: err}
	}
	return &profile, nil
}

func clampBudget(budget int) int {
	if budget < config.MinStepBudget {
		return config.MinStepBudget
	}
	if budget > config.MaxStepBudget {
		return config.MaxStepBudget
	}
	return budget
}
