package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Invoker executes a sequence of steps on a frame
type Invoker struct {
	steps []Step
}

// NewInvoker creates a new step invoker
func NewInvoker(steps ...Step) *Invoker {
	return &Invoker{
		steps: steps,
	}
}

// Execute applies all steps in order. The first failing step aborts the run.
func (i *Invoker) Execute(ctx context.Context, frame *Frame) error {
	start := time.Now()

	slog.Info("starting photo processing pipeline",
		"key", frame.Key,
		"step_count", len(i.steps))

	for idx, step := range i.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before step %s: %w", step.Name(), err)
		}
		stepStart := time.Now()

		if err := step.Apply(ctx, frame); err != nil {
			slog.Error("step execution failed",
				"index", idx,
				"step_name", step.Name(),
				"key", frame.Key,
				"error", err)
			return fmt.Errorf("step %s (index %d) failed: %w", step.Name(), idx, err)
		}

		slog.Info("step completed",
			"index", idx,
			"step_name", step.Name(),
			"duration_ms", time.Since(stepStart).Milliseconds())
	}

	slog.Info("photo processing pipeline completed",
		"key", frame.Key,
		"total_duration_ms", time.Since(start).Milliseconds(),
		"step_count", len(i.steps))
	return nil
}
